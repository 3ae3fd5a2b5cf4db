/*
vehicle.go - Vehicle factor resolution

PURPOSE:
  Maps a vehicle's model attributes, age, usage, features, and parking
  situation to its multiplicative rating factors. Group, age, and parking
  resolve from the in-code tables (tables.go); usage comes from the
  Source; safety is a continuous linear adjustment, not a lookup.

SAFETY FACTOR:
  factor = 1.1 - (safety_rating / 10)
  A 0-rated vehicle rates 1.1; a 10-rated vehicle rates 0.1. Lower safety
  means a more expensive factor.

VEHICLE AGE:
  Calendar-year difference only (current year minus model year). Unlike
  driver age there is no month correction.

SEE ALSO:
  - tables.go: Group, age-curve, and parking tables
  - engine.go: Applies these factors after the driver factors
*/
package rating

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VEHICLE FACTORS
// =============================================================================

// VehicleFactors holds the resolved vehicle multipliers, in the order the
// composer applies them.
type VehicleFactors struct {
	Group      decimal.Decimal
	VehicleAge decimal.Decimal
	Usage      decimal.Decimal
	Safety     decimal.Decimal
	Features   decimal.Decimal
	Parking    decimal.Decimal
}

// Product returns the combined vehicle multiplier.
func (f VehicleFactors) Product() decimal.Decimal {
	return f.Group.
		Mul(f.VehicleAge).
		Mul(f.Usage).
		Mul(f.Safety).
		Mul(f.Features).
		Mul(f.Parking)
}

// =============================================================================
// RESOLUTION
// =============================================================================

var safetyBase = MustParseDecimal("1.1")
var ten = decimal.NewFromInt(10)

// SafetyFactor computes 1.1 - rating/10 for a 0-10 safety rating.
func SafetyFactor(rating decimal.Decimal) decimal.Decimal {
	return safetyBase.Sub(rating.Div(ten))
}

// FeatureFactor combines the anti-theft and winter-tire discounts. Both
// apply independently and multiplicatively.
func FeatureFactor(antiTheft, winterTires bool) decimal.Decimal {
	f := NeutralFactor
	if antiTheft {
		f = f.Mul(antiTheftFactor)
	}
	if winterTires {
		f = f.Mul(winterTiresFactor)
	}
	return f
}

// ResolveVehicleFactors computes all vehicle multipliers. model and usage
// may be nil (unresolvable lookups); the corresponding factors fall back
// to neutral. Safety uses the model's rating when present.
func ResolveVehicleFactors(v VehicleProfile, model *Model, usage *Usage, now time.Time) VehicleFactors {
	f := VehicleFactors{
		Group:      NeutralFactor,
		VehicleAge: VehicleAgeFactor(now.Year() - v.Year),
		Usage:      NeutralFactor,
		Safety:     NeutralFactor,
		Features:   FeatureFactor(v.AntiTheft, v.WinterTires),
		Parking:    ParkingFactor(v.Parking),
	}
	if model != nil {
		f.Group = GroupFactor(model.InsuranceGroup)
		f.Safety = SafetyFactor(model.SafetyRating)
	}
	if usage != nil {
		f.Usage = usage.Factor
	}
	return f
}
