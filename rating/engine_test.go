package rating_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora/quote-engine/catalog"
	"github.com/aurora/quote-engine/rating"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// testNow is the fixed clock for every calculation in this file.
var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func i64(v int64) *int64 { return &v }

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// testCatalog builds a small controlled catalog:
//   - driver bands that resolve to known factors
//   - one compact model whose combined vehicle factor is 0.72
//     (group 1.0 x age-9 0.8 x usage 1.0 x safety 1.0 x garage 0.9)
//   - liability (mandatory, amount kind) and collision (optional,
//     deductible kind)
func testCatalog() *catalog.Catalog {
	c := catalog.New()

	c.Provinces[rating.ProvinceID("on")] = rating.Province{
		ID:                 "on",
		Name:               "Ontario",
		MinLiabilityAmount: 200000,
		MandatoryCoverages: []rating.CoverageID{"liability"},
		OptionalCoverages:  []rating.CoverageID{"collision"},
	}

	c.Makes[rating.MakeID(10)] = rating.Make{ID: 10, Name: "Toyota"}
	c.Models[rating.ModelID(1001)] = rating.Model{
		ID:             1001,
		MakeID:         10,
		Name:           "Corolla",
		InsuranceGroup: rating.GroupCompact,
		SafetyRating:   dec("1"), // safety factor 1.1 - 1/10 = 1.0
	}

	c.Usages[rating.UsageID("pleasure")] = rating.Usage{
		ID: "pleasure", Name: "Pleasure", Factor: dec("1.0"),
	}

	c.AgeBands = []rating.Band{
		{ID: "age_16_24", Min: 16, Max: 24, Factor: dec("1.8")},
		{ID: "age_25_34", Min: 25, Max: 34, Factor: dec("1.2")},
		{ID: "age_35_54", Min: 35, Max: 54, Factor: dec("1.0")},
	}
	c.ExperienceBands = []rating.Band{
		{ID: "exp_0_2", Min: 0, Max: 2, Factor: dec("1.5")},
		{ID: "exp_10_plus", Min: 10, Max: 80, Factor: dec("1.0")},
	}
	c.HistoryBands[rating.HistoryClean] = rating.Band{ID: "history_clean", Factor: dec("1.0")}
	c.HistoryBands[rating.HistoryAtFaultAccident] = rating.Band{ID: "history_at_fault_accident", Factor: dec("1.5")}

	c.CoverageDefs[rating.CoverageID("liability")] = rating.CoverageDefinition{
		ID:        "liability",
		Name:      "Third Party Liability",
		Mandatory: true,
		Kind:      rating.OptionAmount,
		Options: []rating.CoverageOption{
			{Amount: i64(200000), PremiumFactor: dec("1.0")},
			{Amount: i64(1000000), PremiumFactor: dec("1.25")},
		},
		DefaultAmount: i64(1000000),
	}
	c.CoverageDefs[rating.CoverageID("collision")] = rating.CoverageDefinition{
		ID:   "collision",
		Name: "Collision",
		Kind: rating.OptionDeductible,
		Options: []rating.CoverageOption{
			{Deductible: i64(500), PremiumFactor: dec("1.2")},
			{Deductible: i64(1000), PremiumFactor: dec("1.0")},
		},
	}

	c.EndorsementRows[rating.EndorsementID("end_a")] = rating.Endorsement{ID: "end_a", Name: "A", Factor: dec("0.10")}
	c.EndorsementRows[rating.EndorsementID("end_b")] = rating.Endorsement{ID: "end_b", Name: "B", Factor: dec("0.05")}

	c.DiscountRows[rating.DiscountID("multi_policy")] = rating.Discount{ID: "multi_policy", Name: "Multi Policy", Factor: dec("0.10")}
	c.DiscountRows[rating.DiscountID("good_student")] = rating.Discount{ID: "good_student", Name: "Good Student", Factor: dec("0.05")}
	c.DiscountRows[rating.DiscountID("huge_a")] = rating.Discount{ID: "huge_a", Name: "Huge A", Factor: dec("0.9")}
	c.DiscountRows[rating.DiscountID("huge_b")] = rating.Discount{ID: "huge_b", Name: "Huge B", Factor: dec("0.9")}

	return c
}

func newTestEngine() *rating.Engine {
	return &rating.Engine{Source: testCatalog()}
}

// baseInput is a driver/vehicle pair whose factors are all exactly known:
// driver product 1.0, vehicle product 0.72, so the factored base is 576.
func baseInput() rating.QuoteInput {
	return rating.QuoteInput{
		Driver: rating.DriverProfile{
			Province:     "on",
			DateOfBirth:  time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC), // 35 at testNow
			LicenseYears: 10,
		},
		Vehicle: rating.VehicleProfile{
			Model:      1001,
			Year:       2016, // vehicle age 9 -> 0.8
			PrimaryUse: "pleasure",
			Parking:    rating.ParkingGarage,
		},
		Now: testNow,
	}
}

func withLiability(input rating.QuoteInput, amount int64) rating.QuoteInput {
	input.Selections.MandatoryCoverages = map[rating.CoverageID]rating.CoverageSelection{
		"liability": {Selected: true, Amount: i64(amount)},
	}
	return input
}

// =============================================================================
// BASELINE COMPOSITION
// =============================================================================

func TestCalculate_Baseline(t *testing.T) {
	// GIVEN: known driver (product 1.0) and vehicle (product 0.72), the
	//        mandatory liability at the 200k option (factor 1.0)
	// WHEN:  calculating
	// THEN:  base = 800*0.72 + 80 = 656, taxed at 13% plus $35 fees

	engine := newTestEngine()
	b, err := engine.Calculate(context.Background(), withLiability(baseInput(), 200000))
	require.NoError(t, err)

	assert.Equal(t, 656.0, b.BasePremium.Float())
	assert.Equal(t, 0.0, b.DiscountAmount.Float())
	assert.Equal(t, 85.28, b.Taxes.Float())
	assert.Equal(t, 35.0, b.Fees.Float())
	assert.Equal(t, 776.28, b.AnnualPremium.Float())
	assert.Equal(t, 64.69, b.MonthlyPremium.Float())

	require.Contains(t, b.CoveragePremiums, rating.CoverageID("liability"))
	assert.Equal(t, 80.0, b.CoveragePremiums["liability"].Float())
	assert.Empty(t, b.Corrections)
}

func TestCalculate_MandatoryCoveragePricedEvenWhenUnselected(t *testing.T) {
	// GIVEN: no coverage selections at all
	// WHEN:  calculating for a province with a mandatory liability coverage
	// THEN:  liability still prices, using the configured default amount
	//        (1M -> factor 1.25 -> 100), with a zero-amount correction

	engine := newTestEngine()
	b, err := engine.Calculate(context.Background(), baseInput())
	require.NoError(t, err)

	require.Contains(t, b.CoveragePremiums, rating.CoverageID("liability"))
	assert.Equal(t, 100.0, b.CoveragePremiums["liability"].Float())

	corrected := b.CorrectedSelections.MandatoryCoverages["liability"]
	assert.True(t, corrected.Selected)
	require.NotNil(t, corrected.Amount)
	assert.Equal(t, int64(1000000), *corrected.Amount)

	kinds := correctionKinds(b.Corrections)
	assert.Contains(t, kinds, rating.CorrectionZeroAmount)
}

func TestCalculate_OptionalCoverageOnlyWhenSelected(t *testing.T) {
	// GIVEN: collision present in the province's optional list but not selected
	// WHEN:  calculating
	// THEN:  no collision premium appears

	engine := newTestEngine()
	b, err := engine.Calculate(context.Background(), withLiability(baseInput(), 200000))
	require.NoError(t, err)

	assert.NotContains(t, b.CoveragePremiums, rating.CoverageID("collision"))

	// Now select it at the $1000 deductible (factor 1.0).
	input := withLiability(baseInput(), 200000)
	input.Selections.OptionalCoverages = map[rating.CoverageID]rating.CoverageSelection{
		"collision": {Selected: true, Deductible: i64(1000)},
	}
	b, err = engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	require.Contains(t, b.CoveragePremiums, rating.CoverageID("collision"))
	assert.Equal(t, 80.0, b.CoveragePremiums["collision"].Float())
	assert.Equal(t, 736.0, b.BasePremium.Float())
}

// =============================================================================
// ENDORSEMENTS
// =============================================================================

func TestCalculate_EndorsementsCompoundSequentially(t *testing.T) {
	// GIVEN: two endorsements (10% then 5%, ascending id order)
	// WHEN:  calculating on a 656 pre-endorsement premium
	// THEN:  end_a prices off 656 (65.60), end_b off 721.60 (36.08);
	//        the second is larger than the simultaneous 32.80

	engine := newTestEngine()
	input := withLiability(baseInput(), 200000)
	input.Selections.Endorsements = map[rating.EndorsementID]bool{
		"end_a": true,
		"end_b": true,
	}

	b, err := engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 65.60, b.EndorsementPremiums["end_a"].Float())
	assert.Equal(t, 36.08, b.EndorsementPremiums["end_b"].Float())
	assert.Equal(t, 757.68, b.BasePremium.Float())
}

// =============================================================================
// DISCOUNTS
// =============================================================================

func TestCalculate_DiscountsDoNotCompound(t *testing.T) {
	// GIVEN: 10% and 5% discounts
	// WHEN:  calculating on a 656 pre-discount premium
	// THEN:  both discounts apply to the same 656 base (65.60 + 32.80)

	engine := newTestEngine()
	input := withLiability(baseInput(), 200000)
	input.Selections.Discounts = map[rating.DiscountID]bool{
		"multi_policy": true,
		"good_student": true,
	}

	b, err := engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 65.60, b.DiscountAmounts["multi_policy"].Float())
	assert.Equal(t, 32.80, b.DiscountAmounts["good_student"].Float())
	assert.Equal(t, 98.40, b.DiscountAmount.Float())

	// subtotal 557.60, taxes 72.488, fees 35
	assert.Equal(t, 72.49, b.Taxes.Float())
	assert.Equal(t, 665.09, b.AnnualPremium.Float())
	assert.Equal(t, 55.42, b.MonthlyPremium.Float())
}

func TestCalculate_DiscountTotalEqualsSumOfParts(t *testing.T) {
	// GIVEN: any unclamped discount stack
	// WHEN:  calculating
	// THEN:  DiscountAmount equals the sum of the per-discount amounts

	engine := newTestEngine()
	input := withLiability(baseInput(), 200000)
	input.Selections.Discounts = map[rating.DiscountID]bool{
		"multi_policy": true,
		"good_student": true,
	}

	b, err := engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	sum := rating.NewMoneyFromInt(0)
	for _, amt := range b.DiscountAmounts {
		sum = sum.Add(amt)
	}
	assert.True(t, b.DiscountAmount.Equal(sum.Round2()))
}

func TestCalculate_DiscountStackClampedAtPremium(t *testing.T) {
	// GIVEN: two 90% discounts (180% total)
	// WHEN:  calculating
	// THEN:  the total discount clamps to the pre-discount premium, the
	//        subtotal is zero, and only the flat fee survives

	engine := newTestEngine()
	input := withLiability(baseInput(), 200000)
	input.Selections.Discounts = map[rating.DiscountID]bool{
		"huge_a": true,
		"huge_b": true,
	}

	b, err := engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 656.0, b.DiscountAmount.Float())
	assert.Equal(t, 0.0, b.Taxes.Float())
	assert.Equal(t, 35.0, b.AnnualPremium.Float())
	assert.Equal(t, 2.92, b.MonthlyPremium.Float())

	kinds := correctionKinds(b.Corrections)
	assert.Contains(t, kinds, rating.CorrectionDiscountClamp)
}

// =============================================================================
// COVERAGE OPTION CORRECTIONS
// =============================================================================

func TestCalculate_OptionFallbackRecorded(t *testing.T) {
	// GIVEN: collision selected at a deductible that matches no option
	// WHEN:  calculating
	// THEN:  the first option is priced (500 -> 1.2 -> 96), the corrected
	//        selection carries the substituted deductible, and a fallback
	//        correction is recorded

	engine := newTestEngine()
	input := withLiability(baseInput(), 200000)
	input.Selections.OptionalCoverages = map[rating.CoverageID]rating.CoverageSelection{
		"collision": {Selected: true, Deductible: i64(750)},
	}

	b, err := engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 96.0, b.CoveragePremiums["collision"].Float())

	corrected := b.CorrectedSelections.OptionalCoverages["collision"]
	require.NotNil(t, corrected.Deductible)
	assert.Equal(t, int64(500), *corrected.Deductible)

	kinds := correctionKinds(b.Corrections)
	assert.Contains(t, kinds, rating.CorrectionOptionFallback)
}

func TestCalculate_InputSelectionsNeverMutated(t *testing.T) {
	// GIVEN: a selection that will be corrected (no-match deductible)
	// WHEN:  calculating
	// THEN:  the caller's selection still holds the original value

	engine := newTestEngine()
	input := withLiability(baseInput(), 200000)
	original := i64(750)
	input.Selections.OptionalCoverages = map[rating.CoverageID]rating.CoverageSelection{
		"collision": {Selected: true, Deductible: original},
	}

	_, err := engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, int64(750), *input.Selections.OptionalCoverages["collision"].Deductible)
	assert.Equal(t, int64(750), *original)
}

// =============================================================================
// DEGRADATION AND PRECONDITIONS
// =============================================================================

func TestCalculate_UnknownTablesDegradeToNeutral(t *testing.T) {
	// GIVEN: province, model, and usage ids that resolve to nothing
	// WHEN:  calculating
	// THEN:  the calculation succeeds with neutral factors and corrections,
	//        pricing only what could be resolved

	engine := newTestEngine()
	input := baseInput()
	input.Driver.Province = "zz"
	input.Vehicle.Model = 9999
	input.Vehicle.PrimaryUse = "unknown"

	b, err := engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	// group/safety/usage neutral; vehicle age 0.8 and garage 0.9 still apply
	assert.Equal(t, 576.0, b.BasePremium.Float())
	assert.Empty(t, b.CoveragePremiums)
	assert.NotEmpty(t, b.Corrections)

	kinds := correctionKinds(b.Corrections)
	assert.Contains(t, kinds, rating.CorrectionTableDefault)
}

func TestCalculate_MissingRequiredInputsReject(t *testing.T) {
	engine := newTestEngine()

	cases := []struct {
		name   string
		mutate func(*rating.QuoteInput)
	}{
		{"missing province", func(in *rating.QuoteInput) { in.Driver.Province = "" }},
		{"missing model", func(in *rating.QuoteInput) { in.Vehicle.Model = 0 }},
		{"missing usage", func(in *rating.QuoteInput) { in.Vehicle.PrimaryUse = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := baseInput()
			tc.mutate(&input)

			_, err := engine.Calculate(context.Background(), input)
			require.Error(t, err)
			assert.True(t, rating.IsClientError(err))
		})
	}
}

func TestCalculate_NilSourceRejected(t *testing.T) {
	engine := &rating.Engine{}
	_, err := engine.Calculate(context.Background(), baseInput())
	assert.ErrorIs(t, err, rating.ErrSourceRequired)
}

// =============================================================================
// DETERMINISM AND STRUCTURAL PROPERTIES
// =============================================================================

func TestCalculate_Deterministic(t *testing.T) {
	// GIVEN: the same input with a pinned clock
	// WHEN:  calculating repeatedly
	// THEN:  every run produces the identical breakdown

	engine := newTestEngine()
	input := withLiability(baseInput(), 200000)
	input.Selections.OptionalCoverages = map[rating.CoverageID]rating.CoverageSelection{
		"collision": {Selected: true, Deductible: i64(500)},
	}
	input.Selections.Endorsements = map[rating.EndorsementID]bool{"end_a": true, "end_b": true}
	input.Selections.Discounts = map[rating.DiscountID]bool{"multi_policy": true}

	first, err := engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := engine.Calculate(context.Background(), input)
		require.NoError(t, err)
		assert.True(t, first.AnnualPremium.Equal(again.AnnualPremium))
		assert.True(t, first.MonthlyPremium.Equal(again.MonthlyPremium))
		assert.True(t, first.BasePremium.Equal(again.BasePremium))
	}
}

func TestCalculate_AnnualEqualsSubtotalPlusTaxesPlusFees(t *testing.T) {
	engine := newTestEngine()
	input := withLiability(baseInput(), 200000)
	input.Selections.Discounts = map[rating.DiscountID]bool{"multi_policy": true}

	b, err := engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	subtotal := b.BasePremium.Sub(b.DiscountAmount)
	recomposed := subtotal.Add(b.Taxes).Add(b.Fees)

	// Recomposing from rounded parts can differ from the full-precision
	// annual by at most a cent.
	diff := recomposed.Sub(b.AnnualPremium).Float()
	assert.InDelta(t, 0, diff, 0.011)
}

func TestCalculate_VehicleAgeMonotonicallyCheapens(t *testing.T) {
	// GIVEN: identical inputs except vehicle year
	// WHEN:  aging the vehicle from brand new to 12 years old
	// THEN:  the premium never increases

	engine := newTestEngine()
	prev := -1.0
	for age := 0; age <= 12; age++ {
		input := withLiability(baseInput(), 200000)
		input.Vehicle.Year = testNow.Year() - age

		b, err := engine.Calculate(context.Background(), input)
		require.NoError(t, err)

		if prev >= 0 {
			assert.LessOrEqual(t, b.AnnualPremium.Float(), prev,
				"premium increased when vehicle aged to %d", age)
		}
		prev = b.AnnualPremium.Float()
	}
}

func TestCalculate_SeededCatalogEndToEnd(t *testing.T) {
	// GIVEN: the full seeded catalog
	// WHEN:  quoting a representative profile
	// THEN:  a positive, internally consistent breakdown comes back with
	//        all four Ontario mandatory coverages priced

	engine := &rating.Engine{Source: catalog.Default()}
	input := rating.QuoteInput{
		Driver: rating.DriverProfile{
			Province:     "ON",
			DateOfBirth:  time.Date(1988, time.March, 10, 0, 0, 0, 0, time.UTC),
			LicenseYears: 12,
		},
		Vehicle: rating.VehicleProfile{
			Model:      1001,
			Year:       2020,
			PrimaryUse: "commute",
			Parking:    rating.ParkingDriveway,
		},
		Now: testNow,
	}

	b, err := engine.Calculate(context.Background(), input)
	require.NoError(t, err)

	assert.Len(t, b.CoveragePremiums, 4)
	assert.True(t, b.AnnualPremium.Float() > 0)
	assert.True(t, b.MonthlyPremium.Float() > 0)
	assert.InDelta(t, b.AnnualPremium.Float()/12, b.MonthlyPremium.Float(), 0.005)
}

func correctionKinds(cs []rating.Correction) []rating.CorrectionKind {
	kinds := make([]rating.CorrectionKind, len(cs))
	for i, c := range cs {
		kinds[i] = c.Kind
	}
	return kinds
}
