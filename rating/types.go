/*
Package rating provides the premium calculation engine.

PURPOSE:
  This package turns driver risk factors, vehicle attributes, coverage
  selections, endorsements, and discounts into a priced quote. The engine
  is a pure function of its inputs plus the rating tables: no state is
  retained between calculations, and the same input against the same
  table snapshot always produces the same breakdown.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A monetary quantity backed by decimal.Decimal
  - DriverProfile / VehicleProfile: Immutable rating inputs
  - SelectionSet: Coverage, endorsement, and discount choices
  - PremiumBreakdown: The priced output, rounded at the boundary only
  - Typed IDs: Prevent mixing coverage/endorsement/discount identifiers

DESIGN PRINCIPLES:
  1. Purity: Calculate never mutates its input; corrected selections are
     returned alongside the premium, not written back
  2. Precision: Uses decimal.Decimal internally, rounds to 2 places only
     when packaging the result
  3. Availability: Missing secondary data degrades to neutral factors or
     fallback options; only missing required inputs reject a calculation
  4. Type Safety: Strong typing for IDs and enumerated categories

USAGE:
  engine := rating.Engine{Source: src}
  breakdown, err := engine.Calculate(ctx, rating.QuoteInput{
      Driver:     driver,
      Vehicle:    vehicle,
      Selections: selections,
  })

SEE ALSO:
  - engine.go: The premium composer
  - coverage.go: Coverage option matching and pricing
  - source.go: Rating-table read interface
*/
package rating

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Monetary quantity with exact arithmetic
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money      { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int64) Money { return Money{Value: decimal.NewFromInt(value)} }

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (m Money) Add(b Money) Money            { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money            { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) Mul(f decimal.Decimal) Money  { return Money{Value: m.Value.Mul(f)} }
func (m Money) Div(f decimal.Decimal) Money  { return Money{Value: m.Value.Div(f)} }
func (m Money) IsZero() bool                 { return m.Value.IsZero() }
func (m Money) IsNegative() bool             { return m.Value.IsNegative() }
func (m Money) GreaterThan(b Money) bool     { return m.Value.GreaterThan(b.Value) }
func (m Money) Equal(b Money) bool           { return m.Value.Equal(b.Value) }

// Round2 rounds to 2 decimal places. Only the result formatter should call
// this; intermediate stages keep full precision.
func (m Money) Round2() Money  { return Money{Value: m.Value.Round(2)} }
func (m Money) Float() float64 { return m.Value.InexactFloat64() }

// NeutralFactor is the multiplicative identity used whenever a rating row
// cannot be resolved.
var NeutralFactor = decimal.NewFromInt(1)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProvinceID string
type CoverageID string
type EndorsementID string
type DiscountID string
type UsageID string
type MakeID int64
type ModelID int64

// =============================================================================
// DRIVER PROFILE
// =============================================================================

// DriverProfile carries the rating-relevant driver attributes. It is an
// immutable input; the engine never persists it.
type DriverProfile struct {
	Province         ProvinceID
	DateOfBirth      time.Time
	LicenseYears     int
	Accidents3Years  int
	Violations3Years int
	Claims3Years     int
}

// =============================================================================
// VEHICLE PROFILE
// =============================================================================

type ParkingLocation string

const (
	ParkingGarage   ParkingLocation = "garage"
	ParkingDriveway ParkingLocation = "driveway"
	ParkingStreet   ParkingLocation = "street"
	ParkingLot      ParkingLocation = "parking_lot"
)

// InsuranceGroup is the fixed enumerated set of vehicle rating groups.
type InsuranceGroup string

const (
	GroupCompact  InsuranceGroup = "compact"
	GroupMidsize  InsuranceGroup = "midsize"
	GroupLuxury   InsuranceGroup = "luxury"
	GroupSports   InsuranceGroup = "sports"
	GroupSUVSmall InsuranceGroup = "suv_small"
	GroupSUVLarge InsuranceGroup = "suv_large"
	GroupTruck    InsuranceGroup = "truck"
	GroupVan      InsuranceGroup = "van"
)

type VehicleProfile struct {
	Model         ModelID
	Year          int
	BodyType      string
	PrimaryUse    UsageID
	AnnualMileage int
	Parking       ParkingLocation
	AntiTheft     bool
	WinterTires   bool
}

// =============================================================================
// SELECTIONS - Caller's coverage, endorsement, and discount choices
// =============================================================================

// CoverageSelection records the caller's choice for one coverage. Exactly one
// of Amount/Deductible/Level is meaningful, determined by the coverage's
// option kind. Pointer fields distinguish "absent" from "zero".
type CoverageSelection struct {
	Selected   bool
	Amount     *int64
	Deductible *int64
	Level      *string
}

// SelectionSet bundles all selections for a quote. Map iteration order is
// never semantically significant; the engine sorts ids before any
// order-dependent stage.
type SelectionSet struct {
	MandatoryCoverages map[CoverageID]CoverageSelection
	OptionalCoverages  map[CoverageID]CoverageSelection
	Endorsements       map[EndorsementID]bool
	Discounts          map[DiscountID]bool
}

// normalized returns a copy with nil maps replaced by empty ones.
func (s SelectionSet) normalized() SelectionSet {
	out := s
	if out.MandatoryCoverages == nil {
		out.MandatoryCoverages = map[CoverageID]CoverageSelection{}
	}
	if out.OptionalCoverages == nil {
		out.OptionalCoverages = map[CoverageID]CoverageSelection{}
	}
	if out.Endorsements == nil {
		out.Endorsements = map[EndorsementID]bool{}
	}
	if out.Discounts == nil {
		out.Discounts = map[DiscountID]bool{}
	}
	return out
}

// =============================================================================
// QUOTE INPUT
// =============================================================================

// QuoteInput is everything the engine needs for one calculation.
type QuoteInput struct {
	Driver     DriverProfile
	Vehicle    VehicleProfile
	Selections SelectionSet

	// Now overrides the clock used for driver age and vehicle age.
	// Zero means time.Now(). Tests set this for determinism.
	Now time.Time
}

// =============================================================================
// PREMIUM BREAKDOWN - Calculation output
// =============================================================================

// PremiumBreakdown is the priced result. All Money fields are rounded to
// 2 decimal places; internal stages compute at full precision.
//
// BasePremium is the accumulated premium before discounts: starting base
// times driver and vehicle factors, plus coverage and endorsement premiums.
type PremiumBreakdown struct {
	BasePremium    Money
	DiscountAmount Money
	Fees           Money
	Taxes          Money
	AnnualPremium  Money
	MonthlyPremium Money

	CoveragePremiums    map[CoverageID]Money
	EndorsementPremiums map[EndorsementID]Money
	DiscountAmounts     map[DiscountID]Money

	// CorrectedSelections mirrors the input selections with any fallback or
	// default substitutions applied, so callers can persist data consistent
	// with what was actually priced. The input is never mutated.
	CorrectedSelections SelectionSet

	// Corrections lists every recoverable degradation the engine applied.
	Corrections []Correction
}

// =============================================================================
// CORRECTIONS - Recoverable degradations, surfaced rather than hidden
// =============================================================================

type CorrectionKind string

const (
	// CorrectionTableDefault: a rating row was missing or unavailable and a
	// neutral factor was used instead.
	CorrectionTableDefault CorrectionKind = "table_default"

	// CorrectionOptionFallback: a coverage selection matched no declared
	// option and the coverage's first option was used.
	CorrectionOptionFallback CorrectionKind = "option_fallback"

	// CorrectionZeroAmount: a mandatory coverage resolved to a zero or absent
	// amount and the coverage's configured default was substituted.
	CorrectionZeroAmount CorrectionKind = "zero_amount_default"

	// CorrectionDiscountClamp: summed discounts exceeded the pre-discount
	// premium and the total was clamped.
	CorrectionDiscountClamp CorrectionKind = "discount_clamp"
)

type Correction struct {
	Kind     CorrectionKind
	Coverage CoverageID // set for coverage-level corrections
	Detail   string
}
