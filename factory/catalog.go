/*
Package factory provides JSON to Go catalog conversion.

PURPOSE:
  Converts JSON rating-data definitions into typed catalog/rating structs.
  This enables product configuration without code changes - an insurance
  product team can define coverages in JSON, and the factory creates the
  proper Go values, resolving each coverage's option discriminator ONCE
  at load time so pricing never inspects record shapes.

WHY JSON?
  - Non-developers can modify products and rating bands
  - Easy integration with an admin UI
  - Version control for product definitions
  - Database storage of coverage configs

JSON SCHEMA (coverage):
  {
    "id": "collision",
    "name": "Collision",
    "is_mandatory": false,
    "default_amount": 50000,
    "options": [
      {"deductible": 500, "premium_factor": 1.2},
      {"deductible": 1000, "premium_factor": 1.0}
    ]
  }

VALIDATION:
  Within one coverage, every option must discriminate on the same single
  dimension (amount, deductible, or level). Mixed or empty-dimension
  options are rejected at parse time - the engine's matching logic relies
  on this invariant.

USAGE:
  f := factory.NewCatalogFactory()
  def, err := f.ParseCoverage(jsonBytes)
  cat, err := f.ParseCatalog(jsonBytes)

SEE ALSO:
  - rating/coverage.go: The tagged union these parse into
  - catalog/seed.go: The equivalent data declared in Go
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aurora/quote-engine/catalog"
	"github.com/aurora/quote-engine/rating"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// CatalogJSON is the JSON representation of a complete rating catalog.
type CatalogJSON struct {
	Provinces    []ProvinceJSON    `json:"provinces,omitempty"`
	Makes        []MakeJSON        `json:"makes,omitempty"`
	Usages       []UsageJSON       `json:"vehicle_usages,omitempty"`
	AgeGroups    []BandJSON        `json:"driver_age_groups,omitempty"`
	Experience   []BandJSON        `json:"driving_experience,omitempty"`
	History      []HistoryJSON     `json:"driving_history,omitempty"`
	Coverages    []CoverageJSON    `json:"coverages,omitempty"`
	Endorsements []EndorsementJSON `json:"endorsements,omitempty"`
	Discounts    []DiscountJSON    `json:"discounts,omitempty"`
}

type ProvinceJSON struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	MinLiabilityAmount int64    `json:"min_liability_amount"`
	InsuranceSystem    string   `json:"insurance_system,omitempty"`
	MandatoryCoverages []string `json:"mandatory_coverages"`
	OptionalCoverages  []string `json:"optional_coverages,omitempty"`
}

type MakeJSON struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Models []ModelJSON `json:"models"`
}

type ModelJSON struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	InsuranceGroup string   `json:"insurance_group"`
	SafetyRating   float64  `json:"safety_rating"`
	Years          []int    `json:"years,omitempty"`
	Types          []string `json:"types,omitempty"`
}

type UsageJSON struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	PremiumFactor float64 `json:"premium_factor"`
	AnnualKMRange string  `json:"annual_km_range,omitempty"`
}

type BandJSON struct {
	ID            string  `json:"id"`
	Min           int     `json:"min"`
	Max           int     `json:"max"`
	PremiumFactor float64 `json:"premium_factor"`
}

type HistoryJSON struct {
	ID            string  `json:"id"`
	PremiumFactor float64 `json:"premium_factor"`
}

type CoverageJSON struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	IsMandatory   bool         `json:"is_mandatory"`
	DefaultAmount *int64       `json:"default_amount,omitempty"`
	DefaultLevel  *string      `json:"default_level,omitempty"`
	Options       []OptionJSON `json:"options,omitempty"`
}

type OptionJSON struct {
	Amount        *int64  `json:"amount,omitempty"`
	Deductible    *int64  `json:"deductible,omitempty"`
	Level         *string `json:"level,omitempty"`
	PremiumFactor float64 `json:"premium_factor"`
}

type EndorsementJSON struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	PremiumFactor float64 `json:"premium_factor"`
}

type DiscountJSON struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	DiscountFactor float64 `json:"discount_factor"`
}

// =============================================================================
// CATALOG FACTORY
// =============================================================================

// CatalogFactory converts JSON rating data to typed structs.
type CatalogFactory struct{}

// NewCatalogFactory creates a new catalog factory.
func NewCatalogFactory() *CatalogFactory {
	return &CatalogFactory{}
}

// ParseCatalog converts a full catalog JSON document.
func (f *CatalogFactory) ParseCatalog(data []byte) (*catalog.Catalog, error) {
	var doc CatalogJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid catalog JSON: %w", err)
	}

	c := catalog.New()

	for _, p := range doc.Provinces {
		if p.ID == "" {
			return nil, fmt.Errorf("province missing id")
		}
		prov := rating.Province{
			ID:                 rating.ProvinceID(p.ID),
			Name:               p.Name,
			MinLiabilityAmount: p.MinLiabilityAmount,
			InsuranceSystem:    p.InsuranceSystem,
		}
		for _, cid := range p.MandatoryCoverages {
			prov.MandatoryCoverages = append(prov.MandatoryCoverages, rating.CoverageID(cid))
		}
		for _, cid := range p.OptionalCoverages {
			prov.OptionalCoverages = append(prov.OptionalCoverages, rating.CoverageID(cid))
		}
		c.Provinces[prov.ID] = prov
	}

	for _, m := range doc.Makes {
		mk := rating.Make{ID: rating.MakeID(m.ID), Name: m.Name}
		c.Makes[mk.ID] = mk
		for _, mdl := range m.Models {
			c.Models[rating.ModelID(mdl.ID)] = rating.Model{
				ID:             rating.ModelID(mdl.ID),
				MakeID:         mk.ID,
				Name:           mdl.Name,
				InsuranceGroup: rating.InsuranceGroup(mdl.InsuranceGroup),
				SafetyRating:   decimal.NewFromFloat(mdl.SafetyRating),
				Years:          mdl.Years,
				BodyTypes:      mdl.Types,
			}
		}
	}

	for _, u := range doc.Usages {
		c.Usages[rating.UsageID(u.ID)] = rating.Usage{
			ID:            rating.UsageID(u.ID),
			Name:          u.Name,
			Factor:        decimal.NewFromFloat(u.PremiumFactor),
			AnnualKMRange: u.AnnualKMRange,
		}
	}

	c.AgeBands = parseBands(doc.AgeGroups)
	c.ExperienceBands = parseBands(doc.Experience)
	for _, h := range doc.History {
		id := rating.HistoryBandID(h.ID)
		c.HistoryBands[id] = rating.Band{ID: h.ID, Factor: decimal.NewFromFloat(h.PremiumFactor)}
	}

	for _, cov := range doc.Coverages {
		def, err := f.convertCoverage(cov)
		if err != nil {
			return nil, err
		}
		c.CoverageDefs[def.ID] = *def
	}

	for _, e := range doc.Endorsements {
		c.EndorsementRows[rating.EndorsementID(e.ID)] = rating.Endorsement{
			ID:     rating.EndorsementID(e.ID),
			Name:   e.Name,
			Factor: decimal.NewFromFloat(e.PremiumFactor),
		}
	}
	for _, d := range doc.Discounts {
		c.DiscountRows[rating.DiscountID(d.ID)] = rating.Discount{
			ID:     rating.DiscountID(d.ID),
			Name:   d.Name,
			Factor: decimal.NewFromFloat(d.DiscountFactor),
		}
	}

	return c, nil
}

// ParseCoverage converts a single coverage JSON document.
func (f *CatalogFactory) ParseCoverage(data []byte) (*rating.CoverageDefinition, error) {
	var cov CoverageJSON
	if err := json.Unmarshal(data, &cov); err != nil {
		return nil, fmt.Errorf("invalid coverage JSON: %w", err)
	}
	return f.convertCoverage(cov)
}

func parseBands(in []BandJSON) []rating.Band {
	out := make([]rating.Band, 0, len(in))
	for _, b := range in {
		out = append(out, rating.Band{
			ID:     b.ID,
			Min:    b.Min,
			Max:    b.Max,
			Factor: decimal.NewFromFloat(b.PremiumFactor),
		})
	}
	return out
}

// =============================================================================
// DISCRIMINATOR RESOLUTION
// =============================================================================

// convertCoverage resolves the option discriminator and enforces the
// one-dimension-per-coverage invariant.
func (f *CatalogFactory) convertCoverage(cov CoverageJSON) (*rating.CoverageDefinition, error) {
	if cov.ID == "" {
		return nil, fmt.Errorf("coverage missing id")
	}

	def := &rating.CoverageDefinition{
		ID:            rating.CoverageID(cov.ID),
		Name:          cov.Name,
		Mandatory:     cov.IsMandatory,
		DefaultAmount: cov.DefaultAmount,
		DefaultLevel:  cov.DefaultLevel,
	}

	for i, opt := range cov.Options {
		kind, err := optionKind(opt)
		if err != nil {
			return nil, fmt.Errorf("coverage %s option %d: %w", cov.ID, i, err)
		}
		if i == 0 {
			def.Kind = kind
		} else if kind != def.Kind {
			return nil, fmt.Errorf("coverage %s: mixed option discriminators (%s vs %s)", cov.ID, def.Kind, kind)
		}
		def.Options = append(def.Options, rating.CoverageOption{
			Amount:        opt.Amount,
			Deductible:    opt.Deductible,
			Level:         opt.Level,
			PremiumFactor: decimal.NewFromFloat(opt.PremiumFactor),
		})
	}

	// A coverage with no options prices at the base factor; amount-kind is
	// the conventional discriminator for such flat products.
	if len(cov.Options) == 0 {
		def.Kind = rating.OptionAmount
	}

	return def, nil
}

func optionKind(opt OptionJSON) (rating.OptionKind, error) {
	set := 0
	var kind rating.OptionKind
	if opt.Amount != nil {
		set++
		kind = rating.OptionAmount
	}
	if opt.Deductible != nil {
		set++
		kind = rating.OptionDeductible
	}
	if opt.Level != nil {
		set++
		kind = rating.OptionLevel
	}
	switch set {
	case 0:
		return "", fmt.Errorf("option defines no discriminator")
	case 1:
		return kind, nil
	default:
		return "", fmt.Errorf("option defines multiple discriminators")
	}
}
