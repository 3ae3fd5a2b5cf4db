package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora/quote-engine/factory"
	"github.com/aurora/quote-engine/rating"
)

// =============================================================================
// COVERAGE PARSING
// =============================================================================

func TestParseCoverage_DeductibleKind(t *testing.T) {
	// GIVEN a coverage whose options discriminate on deductible
	data := []byte(`{
		"id": "collision",
		"name": "Collision",
		"is_mandatory": false,
		"options": [
			{"deductible": 500, "premium_factor": 1.2},
			{"deductible": 1000, "premium_factor": 1.0}
		]
	}`)

	// WHEN it is parsed
	def, err := factory.NewCatalogFactory().ParseCoverage(data)

	// THEN the discriminator is resolved once, at load time
	require.NoError(t, err)
	assert.Equal(t, rating.CoverageID("collision"), def.ID)
	assert.Equal(t, rating.OptionDeductible, def.Kind)
	assert.False(t, def.Mandatory)
	require.Len(t, def.Options, 2)
	require.NotNil(t, def.Options[0].Deductible)
	assert.Equal(t, int64(500), *def.Options[0].Deductible)
	assert.Equal(t, "1.2", def.Options[0].PremiumFactor.String())
}

func TestParseCoverage_LevelKindWithDefault(t *testing.T) {
	data := []byte(`{
		"id": "accident_benefits",
		"name": "Accident Benefits",
		"is_mandatory": true,
		"default_level": "standard",
		"options": [
			{"level": "standard", "premium_factor": 1.0},
			{"level": "enhanced", "premium_factor": 1.3}
		]
	}`)

	def, err := factory.NewCatalogFactory().ParseCoverage(data)

	require.NoError(t, err)
	assert.Equal(t, rating.OptionLevel, def.Kind)
	assert.True(t, def.Mandatory)
	require.NotNil(t, def.DefaultLevel)
	assert.Equal(t, "standard", *def.DefaultLevel)
}

func TestParseCoverage_RejectsMixedDiscriminators(t *testing.T) {
	// GIVEN options that switch dimension mid-list
	data := []byte(`{
		"id": "broken",
		"options": [
			{"amount": 200000, "premium_factor": 1.0},
			{"deductible": 500, "premium_factor": 1.2}
		]
	}`)

	// WHEN it is parsed
	_, err := factory.NewCatalogFactory().ParseCoverage(data)

	// THEN the invariant violation is reported at load time
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mixed option discriminators")
}

func TestParseCoverage_RejectsAmbiguousOption(t *testing.T) {
	data := []byte(`{
		"id": "broken",
		"options": [{"amount": 200000, "level": "standard", "premium_factor": 1.0}]
	}`)

	_, err := factory.NewCatalogFactory().ParseCoverage(data)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple discriminators")
}

func TestParseCoverage_RejectsEmptyOption(t *testing.T) {
	data := []byte(`{
		"id": "broken",
		"options": [{"premium_factor": 1.0}]
	}`)

	_, err := factory.NewCatalogFactory().ParseCoverage(data)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no discriminator")
}

func TestParseCoverage_NoOptionsDefaultsToAmountKind(t *testing.T) {
	def, err := factory.NewCatalogFactory().ParseCoverage([]byte(`{"id": "flat", "name": "Flat Product"}`))

	require.NoError(t, err)
	assert.Equal(t, rating.OptionAmount, def.Kind)
	assert.Empty(t, def.Options)
}

func TestParseCoverage_RequiresID(t *testing.T) {
	_, err := factory.NewCatalogFactory().ParseCoverage([]byte(`{"name": "Anonymous"}`))
	require.Error(t, err)
}

// =============================================================================
// FULL CATALOG PARSING
// =============================================================================

const catalogDoc = `{
	"provinces": [
		{
			"id": "ON",
			"name": "Ontario",
			"min_liability_amount": 200000,
			"insurance_system": "no-fault",
			"mandatory_coverages": ["liability"],
			"optional_coverages": ["collision"]
		}
	],
	"makes": [
		{
			"id": 10,
			"name": "Toyota",
			"models": [
				{"id": 1001, "name": "Corolla", "insurance_group": "compact", "safety_rating": 8.5, "years": [2022, 2023], "types": ["sedan"]}
			]
		}
	],
	"vehicle_usages": [
		{"id": "pleasure", "name": "Pleasure", "premium_factor": 1.0, "annual_km_range": "0-8000"}
	],
	"driver_age_groups": [
		{"id": "age_mature", "min": 35, "max": 54, "premium_factor": 1.0}
	],
	"driving_experience": [
		{"id": "exp_veteran", "min": 10, "max": 80, "premium_factor": 1.0}
	],
	"driving_history": [
		{"id": "history_clean", "premium_factor": 1.0}
	],
	"coverages": [
		{
			"id": "liability",
			"name": "Third-Party Liability",
			"is_mandatory": true,
			"default_amount": 1000000,
			"options": [{"amount": 1000000, "premium_factor": 1.3}]
		},
		{
			"id": "collision",
			"name": "Collision",
			"options": [{"deductible": 500, "premium_factor": 1.2}]
		}
	],
	"endorsements": [
		{"id": "rental_vehicle", "name": "Rental Vehicle Coverage", "premium_factor": 0.05}
	],
	"discounts": [
		{"id": "multi_policy", "name": "Multi-Policy", "discount_factor": 0.1}
	]
}`

func TestParseCatalog_FullDocument(t *testing.T) {
	// WHEN a complete catalog document is parsed
	c, err := factory.NewCatalogFactory().ParseCatalog([]byte(catalogDoc))
	require.NoError(t, err)

	// THEN provinces carry typed coverage lists
	prov := c.Provinces["ON"]
	assert.Equal(t, "Ontario", prov.Name)
	assert.Equal(t, []rating.CoverageID{"liability"}, prov.MandatoryCoverages)
	assert.Equal(t, []rating.CoverageID{"collision"}, prov.OptionalCoverages)

	// AND models are flattened under their make
	model := c.Models[1001]
	assert.Equal(t, rating.MakeID(10), model.MakeID)
	assert.Equal(t, rating.GroupCompact, model.InsuranceGroup)
	assert.Equal(t, "8.5", model.SafetyRating.String())

	// AND bands, usages, products all land in their tables
	require.Len(t, c.AgeBands, 1)
	assert.Equal(t, 35, c.AgeBands[0].Min)
	require.Len(t, c.ExperienceBands, 1)
	require.Contains(t, c.HistoryBands, rating.HistoryClean)
	require.Contains(t, c.Usages, rating.UsageID("pleasure"))
	require.Contains(t, c.EndorsementRows, rating.EndorsementID("rental_vehicle"))
	require.Contains(t, c.DiscountRows, rating.DiscountID("multi_policy"))

	// AND each coverage's discriminator was resolved
	assert.Equal(t, rating.OptionAmount, c.CoverageDefs["liability"].Kind)
	assert.Equal(t, rating.OptionDeductible, c.CoverageDefs["collision"].Kind)
}

func TestParseCatalog_RejectsBadCoverage(t *testing.T) {
	doc := `{"coverages": [{"id": "broken", "options": [{"premium_factor": 1.0}]}]}`

	_, err := factory.NewCatalogFactory().ParseCatalog([]byte(doc))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestParseCatalog_RejectsProvinceWithoutID(t *testing.T) {
	doc := `{"provinces": [{"name": "Nowhere", "mandatory_coverages": []}]}`

	_, err := factory.NewCatalogFactory().ParseCatalog([]byte(doc))

	require.Error(t, err)
}

func TestParseCatalog_RejectsMalformedJSON(t *testing.T) {
	_, err := factory.NewCatalogFactory().ParseCatalog([]byte(`{"provinces": [`))
	require.Error(t, err)
}
