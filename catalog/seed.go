/*
seed.go - Default reference dataset

PURPOSE:
  The shipped rating data: Canadian provinces with their coverage
  requirements, a starter vehicle catalog, driver rating bands, and the
  coverage/endorsement/discount products. Production deployments load
  the same shapes from JSON via the factory package or from SQLite; this
  dataset backs tests and first-run seeding.

CONVENTIONS:
  - Mandatory coverage ids follow the jurisdiction's product names
  - Factors are declared as strings to keep decimal values exact
  - Option lists are ordered: the FIRST option is the fallback used when
    a client selection matches nothing, so it should be the sane default

SEE ALSO:
  - catalog.go: The container these constructors fill
  - store/sqlite: Seeds its reference tables from this catalog
*/
package catalog

import (
	"github.com/aurora/quote-engine/rating"
)

func i64(v int64) *int64   { return &v }
func str(s string) *string { return &s }

// Default returns the shipped rating catalog.
func Default() *Catalog {
	c := New()
	seedProvinces(c)
	seedVehicles(c)
	seedUsages(c)
	seedDriverBands(c)
	seedCoverages(c)
	seedEndorsements(c)
	seedDiscounts(c)
	return c
}

func seedProvinces(c *Catalog) {
	for _, p := range []rating.Province{
		{
			ID:                 "ON",
			Name:               "Ontario",
			MinLiabilityAmount: 200000,
			InsuranceSystem:    "no-fault",
			MandatoryCoverages: []rating.CoverageID{
				"liability",
				"accident_benefits",
				"direct_compensation_property_damage",
				"uninsured_automobile",
			},
			OptionalCoverages: []rating.CoverageID{"collision", "comprehensive"},
		},
		{
			ID:                 "BC",
			Name:               "British Columbia",
			MinLiabilityAmount: 200000,
			InsuranceSystem:    "no-fault",
			MandatoryCoverages: []rating.CoverageID{
				"liability",
				"accident_benefits",
				"uninsured_automobile",
			},
			OptionalCoverages: []rating.CoverageID{"collision", "comprehensive"},
		},
		{
			ID:                 "AB",
			Name:               "Alberta",
			MinLiabilityAmount: 200000,
			InsuranceSystem:    "tort",
			MandatoryCoverages: []rating.CoverageID{
				"liability",
				"accident_benefits",
			},
			OptionalCoverages: []rating.CoverageID{"collision", "comprehensive"},
		},
	} {
		c.Provinces[p.ID] = p
	}
}

func seedVehicles(c *Catalog) {
	years := []int{2018, 2019, 2020, 2021, 2022, 2023, 2024, 2025}
	makes := []rating.Make{
		{ID: 10, Name: "Toyota"},
		{ID: 20, Name: "Honda"},
		{ID: 30, Name: "Ford"},
		{ID: 40, Name: "BMW"},
	}
	for _, m := range makes {
		c.Makes[m.ID] = m
	}
	for _, m := range []rating.Model{
		{ID: 1001, MakeID: 10, Name: "Corolla", InsuranceGroup: rating.GroupCompact, SafetyRating: rating.MustParseDecimal("8.5"), Years: years, BodyTypes: []string{"sedan", "hatchback"}},
		{ID: 1002, MakeID: 10, Name: "RAV4", InsuranceGroup: rating.GroupSUVSmall, SafetyRating: rating.MustParseDecimal("8.0"), Years: years, BodyTypes: []string{"suv"}},
		{ID: 2001, MakeID: 20, Name: "Civic", InsuranceGroup: rating.GroupCompact, SafetyRating: rating.MustParseDecimal("8.3"), Years: years, BodyTypes: []string{"sedan", "coupe"}},
		{ID: 2002, MakeID: 20, Name: "CR-V", InsuranceGroup: rating.GroupSUVSmall, SafetyRating: rating.MustParseDecimal("8.1"), Years: years, BodyTypes: []string{"suv"}},
		{ID: 3001, MakeID: 30, Name: "F-150", InsuranceGroup: rating.GroupTruck, SafetyRating: rating.MustParseDecimal("7.4"), Years: years, BodyTypes: []string{"pickup"}},
		{ID: 3002, MakeID: 30, Name: "Explorer", InsuranceGroup: rating.GroupSUVLarge, SafetyRating: rating.MustParseDecimal("7.6"), Years: years, BodyTypes: []string{"suv"}},
		{ID: 4001, MakeID: 40, Name: "3 Series", InsuranceGroup: rating.GroupLuxury, SafetyRating: rating.MustParseDecimal("7.8"), Years: years, BodyTypes: []string{"sedan"}},
		{ID: 4002, MakeID: 40, Name: "M4", InsuranceGroup: rating.GroupSports, SafetyRating: rating.MustParseDecimal("7.0"), Years: years, BodyTypes: []string{"coupe"}},
	} {
		c.Models[m.ID] = m
	}
}

func seedUsages(c *Catalog) {
	for _, u := range []rating.Usage{
		{ID: "pleasure", Name: "Pleasure", Factor: rating.MustParseDecimal("1.0"), AnnualKMRange: "0-8000"},
		{ID: "commute", Name: "Commute", Factor: rating.MustParseDecimal("1.2"), AnnualKMRange: "8000-16000"},
		{ID: "business", Name: "Business", Factor: rating.MustParseDecimal("1.35"), AnnualKMRange: "16000+"},
	} {
		c.Usages[u.ID] = u
	}
}

func seedDriverBands(c *Catalog) {
	c.AgeBands = []rating.Band{
		{ID: "age_young", Min: 16, Max: 24, Factor: rating.MustParseDecimal("1.8")},
		{ID: "age_adult", Min: 25, Max: 34, Factor: rating.MustParseDecimal("1.2")},
		{ID: "age_mature", Min: 35, Max: 54, Factor: rating.MustParseDecimal("1.0")},
		{ID: "age_senior", Min: 55, Max: 69, Factor: rating.MustParseDecimal("0.9")},
		{ID: "age_elder", Min: 70, Max: 120, Factor: rating.MustParseDecimal("1.3")},
	}
	c.ExperienceBands = []rating.Band{
		{ID: "exp_new", Min: 0, Max: 2, Factor: rating.MustParseDecimal("1.5")},
		{ID: "exp_developing", Min: 3, Max: 5, Factor: rating.MustParseDecimal("1.3")},
		{ID: "exp_established", Min: 6, Max: 9, Factor: rating.MustParseDecimal("1.1")},
		{ID: "exp_veteran", Min: 10, Max: 80, Factor: rating.MustParseDecimal("1.0")},
	}
	c.HistoryBands = map[rating.HistoryBandID]rating.Band{
		rating.HistoryClean:               {ID: string(rating.HistoryClean), Factor: rating.MustParseDecimal("1.0")},
		rating.HistoryMinorInfraction:     {ID: string(rating.HistoryMinorInfraction), Factor: rating.MustParseDecimal("1.2")},
		rating.HistoryAtFaultAccident:     {ID: string(rating.HistoryAtFaultAccident), Factor: rating.MustParseDecimal("1.5")},
		rating.HistoryMultipleInfractions: {ID: string(rating.HistoryMultipleInfractions), Factor: rating.MustParseDecimal("1.9")},
	}
}

func seedCoverages(c *Catalog) {
	for _, def := range []rating.CoverageDefinition{
		{
			ID:        "liability",
			Name:      "Third-Party Liability",
			Mandatory: true,
			Kind:      rating.OptionAmount,
			Options: []rating.CoverageOption{
				{Amount: i64(1000000), PremiumFactor: rating.MustParseDecimal("1.3")},
				{Amount: i64(200000), PremiumFactor: rating.MustParseDecimal("1.0")},
				{Amount: i64(500000), PremiumFactor: rating.MustParseDecimal("1.15")},
				{Amount: i64(2000000), PremiumFactor: rating.MustParseDecimal("1.5")},
			},
			DefaultAmount: i64(1000000),
		},
		{
			ID:        "accident_benefits",
			Name:      "Accident Benefits",
			Mandatory: true,
			Kind:      rating.OptionLevel,
			Options: []rating.CoverageOption{
				{Level: str("standard"), PremiumFactor: rating.MustParseDecimal("1.0")},
				{Level: str("enhanced"), PremiumFactor: rating.MustParseDecimal("1.3")},
				{Level: str("premium"), PremiumFactor: rating.MustParseDecimal("1.6")},
			},
			DefaultLevel: str("standard"),
		},
		{
			ID:        "direct_compensation_property_damage",
			Name:      "Direct Compensation Property Damage",
			Mandatory: true,
			Kind:      rating.OptionLevel,
			Options: []rating.CoverageOption{
				{Level: str("standard"), PremiumFactor: rating.MustParseDecimal("1.0")},
			},
			DefaultLevel: str("standard"),
		},
		{
			ID:        "uninsured_automobile",
			Name:      "Uninsured Automobile",
			Mandatory: true,
			Kind:      rating.OptionLevel,
			Options: []rating.CoverageOption{
				{Level: str("standard"), PremiumFactor: rating.MustParseDecimal("1.0")},
			},
			DefaultLevel: str("standard"),
		},
		{
			ID:   "collision",
			Name: "Collision",
			Kind: rating.OptionDeductible,
			Options: []rating.CoverageOption{
				{Deductible: i64(500), PremiumFactor: rating.MustParseDecimal("1.2")},
				{Deductible: i64(250), PremiumFactor: rating.MustParseDecimal("1.4")},
				{Deductible: i64(1000), PremiumFactor: rating.MustParseDecimal("1.0")},
			},
		},
		{
			ID:   "comprehensive",
			Name: "Comprehensive",
			Kind: rating.OptionDeductible,
			Options: []rating.CoverageOption{
				{Deductible: i64(500), PremiumFactor: rating.MustParseDecimal("1.1")},
				{Deductible: i64(250), PremiumFactor: rating.MustParseDecimal("1.3")},
				{Deductible: i64(1000), PremiumFactor: rating.MustParseDecimal("0.95")},
			},
		},
	} {
		c.CoverageDefs[def.ID] = def
	}
}

func seedEndorsements(c *Catalog) {
	for _, e := range []rating.Endorsement{
		{ID: "rental_vehicle", Name: "Rental Vehicle Coverage", Factor: rating.MustParseDecimal("0.05")},
		{ID: "depreciation_waiver", Name: "Waiver of Depreciation", Factor: rating.MustParseDecimal("0.08")},
		{ID: "accident_forgiveness", Name: "Accident Forgiveness", Factor: rating.MustParseDecimal("0.06")},
	} {
		c.EndorsementRows[e.ID] = e
	}
}

func seedDiscounts(c *Catalog) {
	for _, d := range []rating.Discount{
		{ID: "multi_policy", Name: "Multi-Policy", Factor: rating.MustParseDecimal("0.10")},
		{ID: "good_student", Name: "Good Student", Factor: rating.MustParseDecimal("0.05")},
		{ID: "retiree", Name: "Retiree", Factor: rating.MustParseDecimal("0.03")},
		{ID: "telematics", Name: "Telematics Program", Factor: rating.MustParseDecimal("0.08")},
	} {
		c.DiscountRows[d.ID] = d
	}
}
