/*
driver.go - Driver factor resolution

PURPOSE:
  Maps a driver's age, licensed tenure, and infraction history to the
  three multiplicative driver factors. Age and experience resolve via
  interval bands from the Source; history resolves via a fixed priority
  over the categorical bands.

HISTORY PRIORITY (first match wins):
  accidents > 0 AND violations > 0  -> multiple infractions
  accidents > 0                     -> at-fault accident
  violations > 0                    -> minor infraction
  otherwise                         -> clean

  Claims count is carried on the profile but does not feed this factor.

FALLBACKS:
  A band that cannot be resolved contributes the neutral factor 1.0.
  Out-of-range ages never error; the result is always defined.

SEE ALSO:
  - engine.go: Fetches the bands and applies these factors
*/
package rating

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DRIVER FACTORS
// =============================================================================

// DriverFactors holds the three independent driver multipliers.
type DriverFactors struct {
	AgeGroup   decimal.Decimal
	Experience decimal.Decimal
	History    decimal.Decimal
}

// NeutralDriverFactors is the all-1.0 fallback.
func NeutralDriverFactors() DriverFactors {
	return DriverFactors{
		AgeGroup:   NeutralFactor,
		Experience: NeutralFactor,
		History:    NeutralFactor,
	}
}

// Product returns the combined driver multiplier.
func (f DriverFactors) Product() decimal.Decimal {
	return f.AgeGroup.Mul(f.Experience).Mul(f.History)
}

// =============================================================================
// AGE DERIVATION
// =============================================================================

// DriverAge computes whole years elapsed since dateOfBirth as of now,
// correcting for whether the birthday has occurred this year.
func DriverAge(dateOfBirth, now time.Time) int {
	age := now.Year() - dateOfBirth.Year()
	if now.Month() < dateOfBirth.Month() ||
		(now.Month() == dateOfBirth.Month() && now.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}

// =============================================================================
// HISTORY CLASSIFICATION
// =============================================================================

// HistoryBandFor classifies a driver's 3-year record into a history band id.
func HistoryBandFor(d DriverProfile) HistoryBandID {
	switch {
	case d.Accidents3Years > 0 && d.Violations3Years > 0:
		return HistoryMultipleInfractions
	case d.Accidents3Years > 0:
		return HistoryAtFaultAccident
	case d.Violations3Years > 0:
		return HistoryMinorInfraction
	default:
		return HistoryClean
	}
}

// factorOrNeutral extracts a band's factor, or 1.0 when the band is absent.
func factorOrNeutral(b *Band) decimal.Decimal {
	if b == nil {
		return NeutralFactor
	}
	return b.Factor
}
