/*
Package catalog provides the insurance reference data domain.

PURPOSE:
  Holds the externally-owned rating data the engine reads: provinces with
  their mandatory/optional coverage lists, vehicle makes and models,
  usage categories, driver rating bands, coverage definitions,
  endorsements, and discounts. A Catalog is an in-memory rating.Source;
  the sqlite store persists the same data and serves the same interface.

IMMUTABILITY:
  A Catalog is read-only after construction, so it needs no locks and is
  safe for concurrent engine calculations.

USAGE:
  cat := catalog.Default()
  engine := rating.Engine{Source: cat}

SEE ALSO:
  - seed.go: The default dataset
  - rating/source.go: The interface this implements
  - store/sqlite/: Persistent equivalent
*/
package catalog

import (
	"context"
	"sort"

	"github.com/aurora/quote-engine/rating"
)

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is an in-memory rating data set.
type Catalog struct {
	Provinces       map[rating.ProvinceID]rating.Province
	Makes           map[rating.MakeID]rating.Make
	Models          map[rating.ModelID]rating.Model
	Usages          map[rating.UsageID]rating.Usage
	AgeBands        []rating.Band
	ExperienceBands []rating.Band
	HistoryBands    map[rating.HistoryBandID]rating.Band
	CoverageDefs    map[rating.CoverageID]rating.CoverageDefinition
	EndorsementRows map[rating.EndorsementID]rating.Endorsement
	DiscountRows    map[rating.DiscountID]rating.Discount
}

// Compile-time check that Catalog implements rating.Source.
var _ rating.Source = (*Catalog)(nil)

// New returns an empty catalog with all maps initialized.
func New() *Catalog {
	return &Catalog{
		Provinces:       map[rating.ProvinceID]rating.Province{},
		Makes:           map[rating.MakeID]rating.Make{},
		Models:          map[rating.ModelID]rating.Model{},
		Usages:          map[rating.UsageID]rating.Usage{},
		HistoryBands:    map[rating.HistoryBandID]rating.Band{},
		CoverageDefs:    map[rating.CoverageID]rating.CoverageDefinition{},
		EndorsementRows: map[rating.EndorsementID]rating.Endorsement{},
		DiscountRows:    map[rating.DiscountID]rating.Discount{},
	}
}

// =============================================================================
// RATING.SOURCE IMPLEMENTATION
// =============================================================================

func (c *Catalog) Province(_ context.Context, id rating.ProvinceID) (*rating.Province, error) {
	if p, ok := c.Provinces[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (c *Catalog) Model(_ context.Context, id rating.ModelID) (*rating.Model, error) {
	if m, ok := c.Models[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (c *Catalog) Usage(_ context.Context, id rating.UsageID) (*rating.Usage, error) {
	if u, ok := c.Usages[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (c *Catalog) AgeBand(_ context.Context, age int) (*rating.Band, error) {
	return rating.FindBand(c.AgeBands, age), nil
}

func (c *Catalog) ExperienceBand(_ context.Context, years int) (*rating.Band, error) {
	return rating.FindBand(c.ExperienceBands, years), nil
}

func (c *Catalog) HistoryBand(_ context.Context, id rating.HistoryBandID) (*rating.Band, error) {
	if b, ok := c.HistoryBands[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (c *Catalog) Coverages(_ context.Context, ids []rating.CoverageID) ([]rating.CoverageDefinition, error) {
	var out []rating.CoverageDefinition
	seen := map[rating.CoverageID]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if def, ok := c.CoverageDefs[id]; ok {
			out = append(out, def)
		}
	}
	return out, nil
}

func (c *Catalog) Endorsements(_ context.Context, ids []rating.EndorsementID) ([]rating.Endorsement, error) {
	var out []rating.Endorsement
	for _, id := range ids {
		if e, ok := c.EndorsementRows[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *Catalog) Discounts(_ context.Context, ids []rating.DiscountID) ([]rating.Discount, error) {
	var out []rating.Discount
	for _, id := range ids {
		if d, ok := c.DiscountRows[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// =============================================================================
// LISTING HELPERS - Used by the reference-data API
// =============================================================================

func (c *Catalog) ListProvinces() []rating.Province {
	out := make([]rating.Province, 0, len(c.Provinces))
	for _, p := range c.Provinces {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) ListMakes() []rating.Make {
	out := make([]rating.Make, 0, len(c.Makes))
	for _, m := range c.Makes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) ModelsByMake(makeID rating.MakeID) []rating.Model {
	var out []rating.Model
	for _, m := range c.Models {
		if m.MakeID == makeID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) ListUsages() []rating.Usage {
	out := make([]rating.Usage, 0, len(c.Usages))
	for _, u := range c.Usages {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) ListEndorsements() []rating.Endorsement {
	out := make([]rating.Endorsement, 0, len(c.EndorsementRows))
	for _, e := range c.EndorsementRows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) ListDiscounts() []rating.Discount {
	out := make([]rating.Discount, 0, len(c.DiscountRows))
	for _, d := range c.DiscountRows {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CoveragesForProvince returns the mandatory and optional coverage
// definitions for a jurisdiction. Unknown provinces yield empty lists.
func (c *Catalog) CoveragesForProvince(id rating.ProvinceID) (mandatory, optional []rating.CoverageDefinition) {
	p, ok := c.Provinces[id]
	if !ok {
		return nil, nil
	}
	for _, cid := range p.MandatoryCoverages {
		if def, ok := c.CoverageDefs[cid]; ok {
			mandatory = append(mandatory, def)
		}
	}
	for _, cid := range p.OptionalCoverages {
		if def, ok := c.CoverageDefs[cid]; ok {
			optional = append(optional, def)
		}
	}
	return mandatory, optional
}
