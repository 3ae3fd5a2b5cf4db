package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora/quote-engine/catalog"
	"github.com/aurora/quote-engine/rating"
)

// =============================================================================
// SOURCE SEMANTICS
// =============================================================================

func TestLookupMissesReturnNilNotError(t *testing.T) {
	// GIVEN an empty catalog
	c := catalog.New()
	ctx := context.Background()

	// WHEN every keyed lookup runs against ids that do not exist
	p, err := c.Province(ctx, "nowhere")
	require.NoError(t, err)
	assert.Nil(t, p)

	m, err := c.Model(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, m)

	u, err := c.Usage(ctx, "racing")
	require.NoError(t, err)
	assert.Nil(t, u)

	h, err := c.HistoryBand(ctx, "history_unknown")
	require.NoError(t, err)
	assert.Nil(t, h)

	// THEN interval lookups with no bands loaded also miss quietly
	ab, err := c.AgeBand(ctx, 40)
	require.NoError(t, err)
	assert.Nil(t, ab)

	eb, err := c.ExperienceBand(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, eb)
}

func TestCoverageLookupDeduplicatesAndSkipsUnknowns(t *testing.T) {
	// GIVEN a catalog with a single coverage definition
	c := catalog.New()
	c.CoverageDefs["liability"] = rating.CoverageDefinition{ID: "liability", Name: "Liability"}

	// WHEN the same id is requested twice alongside an unknown id
	defs, err := c.Coverages(context.Background(), []rating.CoverageID{"liability", "liability", "phantom"})

	// THEN the known coverage appears exactly once
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, rating.CoverageID("liability"), defs[0].ID)
}

func TestEndorsementAndDiscountLookupsSkipUnknownIDs(t *testing.T) {
	c := catalog.Default()
	ctx := context.Background()

	ends, err := c.Endorsements(ctx, []rating.EndorsementID{"rental_vehicle", "jetpack"})
	require.NoError(t, err)
	require.Len(t, ends, 1)
	assert.Equal(t, rating.EndorsementID("rental_vehicle"), ends[0].ID)

	discs, err := c.Discounts(ctx, []rating.DiscountID{"multi_policy", "loyal_ghost"})
	require.NoError(t, err)
	require.Len(t, discs, 1)
	assert.Equal(t, rating.DiscountID("multi_policy"), discs[0].ID)
}

func TestBandLookupsCoverSeededRanges(t *testing.T) {
	c := catalog.Default()
	ctx := context.Background()

	// GIVEN the shipped age bands
	// WHEN boundary and interior ages are resolved
	for _, tc := range []struct {
		age    int
		bandID string
	}{
		{16, "age_young"},
		{24, "age_young"},
		{25, "age_adult"},
		{54, "age_mature"},
		{70, "age_elder"},
	} {
		b, err := c.AgeBand(ctx, tc.age)
		require.NoError(t, err)
		require.NotNil(t, b, "age %d should fall in a band", tc.age)
		assert.Equal(t, tc.bandID, b.ID, "age %d", tc.age)
	}

	// THEN ages outside every interval miss
	b, err := c.AgeBand(ctx, 15)
	require.NoError(t, err)
	assert.Nil(t, b)
}

// =============================================================================
// LISTINGS
// =============================================================================

func TestListingsAreSortedAndComplete(t *testing.T) {
	c := catalog.Default()

	provinces := c.ListProvinces()
	require.Len(t, provinces, len(c.Provinces))
	for i := 1; i < len(provinces); i++ {
		assert.Less(t, provinces[i-1].ID, provinces[i].ID)
	}

	makes := c.ListMakes()
	require.Len(t, makes, len(c.Makes))
	for i := 1; i < len(makes); i++ {
		assert.Less(t, makes[i-1].ID, makes[i].ID)
	}

	usages := c.ListUsages()
	require.Len(t, usages, len(c.Usages))

	ends := c.ListEndorsements()
	require.Len(t, ends, len(c.EndorsementRows))

	discs := c.ListDiscounts()
	require.Len(t, discs, len(c.DiscountRows))
}

func TestModelsByMakeFiltersAndSorts(t *testing.T) {
	c := catalog.Default()

	// WHEN listing the Toyota models
	models := c.ModelsByMake(10)

	// THEN only that make's models come back, ordered by id
	require.NotEmpty(t, models)
	for i, m := range models {
		assert.Equal(t, rating.MakeID(10), m.MakeID)
		if i > 0 {
			assert.Less(t, models[i-1].ID, m.ID)
		}
	}

	assert.Empty(t, c.ModelsByMake(777))
}

func TestCoveragesForProvinceSplitsMandatoryAndOptional(t *testing.T) {
	c := catalog.Default()

	mandatory, optional := c.CoveragesForProvince("ON")
	require.Len(t, mandatory, 4)
	require.Len(t, optional, 2)
	for _, def := range mandatory {
		assert.True(t, def.Mandatory, "coverage %s", def.ID)
	}
	for _, def := range optional {
		assert.False(t, def.Mandatory, "coverage %s", def.ID)
	}

	mandatory, optional = c.CoveragesForProvince("YT")
	assert.Empty(t, mandatory)
	assert.Empty(t, optional)
}

// =============================================================================
// DEFAULT DATASET INTEGRITY
// =============================================================================

func TestDefaultCatalogIsInternallyConsistent(t *testing.T) {
	c := catalog.Default()

	// Every coverage a province references must exist.
	for _, p := range c.Provinces {
		for _, id := range append(append([]rating.CoverageID{}, p.MandatoryCoverages...), p.OptionalCoverages...) {
			_, ok := c.CoverageDefs[id]
			assert.True(t, ok, "province %s references missing coverage %s", p.ID, id)
		}
	}

	// Every model must belong to a seeded make.
	for _, m := range c.Models {
		_, ok := c.Makes[m.MakeID]
		assert.True(t, ok, "model %d references missing make %d", m.ID, m.MakeID)
	}

	// Mandatory coverages must carry a default so absent selections can be
	// substituted instead of rejected.
	for _, def := range c.CoverageDefs {
		if !def.Mandatory {
			continue
		}
		switch def.Kind {
		case rating.OptionAmount:
			assert.NotNil(t, def.DefaultAmount, "coverage %s", def.ID)
		case rating.OptionLevel:
			assert.NotNil(t, def.DefaultLevel, "coverage %s", def.ID)
		}
	}

	// All four history categories must be present.
	for _, id := range []rating.HistoryBandID{
		rating.HistoryClean,
		rating.HistoryMinorInfraction,
		rating.HistoryAtFaultAccident,
		rating.HistoryMultipleInfractions,
	} {
		_, ok := c.HistoryBands[id]
		assert.True(t, ok, "history band %s missing", id)
	}
}

func TestDefaultCatalogPricesAnOntarioQuote(t *testing.T) {
	// GIVEN the shipped catalog wired straight into the engine
	eng := rating.Engine{Source: catalog.Default()}

	breakdown, err := eng.Calculate(context.Background(), rating.QuoteInput{
		Driver: rating.DriverProfile{
			Province:     "ON",
			DateOfBirth:  time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
			LicenseYears: 22,
		},
		Vehicle: rating.VehicleProfile{
			Model:      1001,
			Year:       2022,
			PrimaryUse: "commute",
			Parking:    rating.ParkingGarage,
		},
		Now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})

	// THEN all mandatory coverages are priced without corrections beyond
	// default substitution, and totals are coherent
	require.NoError(t, err)
	require.Len(t, breakdown.CoveragePremiums, 4)
	assert.Positive(t, breakdown.AnnualPremium.Float())
	want := breakdown.BasePremium.Sub(breakdown.DiscountAmount).Add(breakdown.Taxes).Add(breakdown.Fees)
	assert.InDelta(t, want.Float(), breakdown.AnnualPremium.Float(), 0.011)
}
