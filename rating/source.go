/*
source.go - Rating-table read interface

PURPOSE:
  Defines the interface between the engine and whatever owns the rating
  data (SQLite in production, an in-memory catalog in tests). The engine
  only ever reads; every method is a lookup.

LOOKUP SHAPES:
  - By interval:    age and experience bands (closed [min, max] ranges)
  - By category id: driving-history bands
  - By key:         vehicle model, vehicle usage, province
  - By id set:      coverages, endorsements, discounts

MISS SEMANTICS:
  A lookup that finds nothing returns (nil, nil) — absence is not an
  error. The engine substitutes neutral factors or defaults and records
  a Correction. A non-nil error means the source itself failed (e.g.
  database down); the engine treats that the same way, because a fetch
  failure must never abort a calculation.

IMPLEMENTATIONS:
  - catalog.Catalog:  In-memory, seeded (tests, standalone demos)
  - sqlite.Store:     Production persistence

SEE ALSO:
  - engine.go: The only consumer
  - catalog/: Seeded reference data
*/
package rating

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REFERENCE ROWS
// =============================================================================

// Band is a closed-interval rating row: matches values in [Min, Max].
type Band struct {
	ID     string
	Min    int
	Max    int
	Factor decimal.Decimal
}

// Contains reports whether v falls inside the band.
func (b Band) Contains(v int) bool { return v >= b.Min && v <= b.Max }

// HistoryBandID identifies a driving-history category.
type HistoryBandID string

const (
	HistoryClean               HistoryBandID = "history_clean"
	HistoryMinorInfraction     HistoryBandID = "history_minor_infraction"
	HistoryAtFaultAccident     HistoryBandID = "history_at_fault_accident"
	HistoryMultipleInfractions HistoryBandID = "history_multiple_infractions"
)

// Province carries the jurisdiction's coverage requirements.
type Province struct {
	ID                 ProvinceID
	Name               string
	MinLiabilityAmount int64
	InsuranceSystem    string // e.g. "no-fault", "tort"
	MandatoryCoverages []CoverageID
	OptionalCoverages  []CoverageID
}

// Make is a vehicle manufacturer.
type Make struct {
	ID   MakeID
	Name string
}

// Model is a rated vehicle model.
type Model struct {
	ID             ModelID
	MakeID         MakeID
	Name           string
	InsuranceGroup InsuranceGroup
	SafetyRating   decimal.Decimal // 0-10 scale
	Years          []int
	BodyTypes      []string
}

// Usage is a primary-use category with its rating factor.
type Usage struct {
	ID            UsageID
	Name          string
	Factor        decimal.Decimal
	AnnualKMRange string
}

// Endorsement is a policy add-on priced as a factor of the running premium.
type Endorsement struct {
	ID     EndorsementID
	Name   string
	Factor decimal.Decimal
}

// Discount removes a fraction of the pre-discount premium.
type Discount struct {
	ID     DiscountID
	Name   string
	Factor decimal.Decimal
}

// =============================================================================
// SOURCE - Read-only rating data access
// =============================================================================

// Source provides all rating-table reads the engine needs. Implementations
// must be safe for concurrent use; the engine fetches independent tables in
// parallel.
type Source interface {
	// Province returns the jurisdiction row, or (nil, nil) if unknown.
	Province(ctx context.Context, id ProvinceID) (*Province, error)

	// Model returns the vehicle model row, or (nil, nil) if unknown.
	Model(ctx context.Context, id ModelID) (*Model, error)

	// Usage returns the primary-use row, or (nil, nil) if unknown.
	Usage(ctx context.Context, id UsageID) (*Usage, error)

	// AgeBand returns the driver age band containing age, or (nil, nil).
	AgeBand(ctx context.Context, age int) (*Band, error)

	// ExperienceBand returns the band containing licensed years, or (nil, nil).
	ExperienceBand(ctx context.Context, years int) (*Band, error)

	// HistoryBand returns the categorical history band, or (nil, nil).
	HistoryBand(ctx context.Context, id HistoryBandID) (*Band, error)

	// Coverages returns the definitions for the requested ids. Unknown ids
	// are silently omitted.
	Coverages(ctx context.Context, ids []CoverageID) ([]CoverageDefinition, error)

	// Endorsements returns the rows for the requested ids, omitting unknowns.
	Endorsements(ctx context.Context, ids []EndorsementID) ([]Endorsement, error)

	// Discounts returns the rows for the requested ids, omitting unknowns.
	Discounts(ctx context.Context, ids []DiscountID) ([]Discount, error)
}
