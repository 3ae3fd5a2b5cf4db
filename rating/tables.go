/*
tables.go - In-code static rating tables

PURPOSE:
  Holds the rating tables that are part of the pricing model itself rather
  than jurisdiction-managed reference data: insurance-group factors, the
  stepped vehicle-age curve, and parking-location factors. Driver bands,
  usage categories, coverages, endorsements, and discounts live in the
  Source instead because provinces and products change without a deploy;
  these tables do not.

FALLBACKS:
  Every lookup here is total: unknown keys return the neutral factor 1.0.
  Out-of-range vehicle ages clamp to the curve's ends.

SEE ALSO:
  - vehicle.go: The only consumer
  - source.go: Externally-owned tables
*/
package rating

import "github.com/shopspring/decimal"

// =============================================================================
// INSURANCE GROUP FACTORS
// =============================================================================

var insuranceGroupFactors = map[InsuranceGroup]decimal.Decimal{
	GroupCompact:  MustParseDecimal("1.0"),
	GroupMidsize:  MustParseDecimal("1.1"),
	GroupLuxury:   MustParseDecimal("1.4"),
	GroupSports:   MustParseDecimal("1.6"),
	GroupSUVSmall: MustParseDecimal("1.2"),
	GroupSUVLarge: MustParseDecimal("1.3"),
	GroupTruck:    MustParseDecimal("1.25"),
	GroupVan:      MustParseDecimal("1.15"),
}

// GroupFactor returns the rating factor for an insurance group.
// Unknown groups are neutral.
func GroupFactor(group InsuranceGroup) decimal.Decimal {
	if f, ok := insuranceGroupFactors[group]; ok {
		return f
	}
	return NeutralFactor
}

// =============================================================================
// VEHICLE AGE CURVE
// =============================================================================

// vehicleAgeFactors is the stepped depreciation curve, indexed by vehicle
// age in years. Age 0 (newest) rates highest; the curve is monotonically
// non-increasing down to the floor.
var vehicleAgeFactors = []decimal.Decimal{
	MustParseDecimal("1.5"),  // age 0
	MustParseDecimal("1.4"),  // age 1
	MustParseDecimal("1.3"),  // age 2
	MustParseDecimal("1.2"),  // age 3
	MustParseDecimal("1.1"),  // age 4
	MustParseDecimal("1.0"),  // age 5
	MustParseDecimal("0.95"), // age 6
	MustParseDecimal("0.9"),  // age 7
	MustParseDecimal("0.85"), // age 8
	MustParseDecimal("0.8"),  // age 9
}

// vehicleAgeFloor applies to vehicles 10 or more years old.
var vehicleAgeFloor = MustParseDecimal("0.75")

// VehicleAgeFactor returns the factor for a vehicle age in whole years.
// Negative ages (model year ahead of the calendar) rate as new.
func VehicleAgeFactor(age int) decimal.Decimal {
	if age < 0 {
		age = 0
	}
	if age >= len(vehicleAgeFactors) {
		return vehicleAgeFloor
	}
	return vehicleAgeFactors[age]
}

// =============================================================================
// PARKING FACTORS
// =============================================================================

var parkingFactors = map[ParkingLocation]decimal.Decimal{
	ParkingGarage:   MustParseDecimal("0.9"),
	ParkingDriveway: MustParseDecimal("0.95"),
	ParkingStreet:   MustParseDecimal("1.1"),
	ParkingLot:      MustParseDecimal("1.05"),
}

// ParkingFactor returns the factor for a parking location. Unrecognized
// locations contribute no adjustment.
func ParkingFactor(loc ParkingLocation) decimal.Decimal {
	if f, ok := parkingFactors[loc]; ok {
		return f
	}
	return NeutralFactor
}

// =============================================================================
// FEATURE DISCOUNTS
// =============================================================================

var (
	antiTheftFactor   = MustParseDecimal("0.95")
	winterTiresFactor = MustParseDecimal("0.97")
)

// =============================================================================
// BAND LOOKUP
// =============================================================================

// FindBand returns the first band containing v, or nil when none matches.
// Rating tables are expected to hold non-overlapping intervals, so "first"
// is also "only".
func FindBand(bands []Band, v int) *Band {
	for i := range bands {
		if bands[i].Contains(v) {
			return &bands[i]
		}
	}
	return nil
}
