/*
errors.go - Centralized error types for the rating engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify errors with errors.Is/As; the API layer maps them
  to HTTP status codes.

ERROR CATEGORIES:
  1. Precondition errors - Required input missing; calculation rejected
  2. Recoverable conditions - Table/option misses; recovered via fallbacks
     and reported as Corrections on the breakdown, never as errors

USAGE:
  if rating.IsClientError(err) {
      // 4xx: caller sent an incomplete quote request
  }

SEE ALSO:
  - engine.go: Raises precondition errors before any fetch
  - types.go: Correction records for recovered conditions
*/
package rating

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingInput is returned when a required top-level field is absent
	// (province, vehicle model, primary use). No partial result is returned.
	ErrMissingInput = errors.New("missing required input")

	// ErrTableUnavailable indicates a rating-table fetch failed. The engine
	// recovers from this internally; it surfaces only when a Source is so
	// broken that not even defaults can be constructed.
	ErrTableUnavailable = errors.New("rating table unavailable")

	// ErrSourceRequired is returned when the engine is constructed without
	// a rating-table source.
	ErrSourceRequired = errors.New("engine requires a rating source")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PreconditionError reports which required field was missing.
type PreconditionError struct {
	Field string // e.g. "driver.province", "vehicle.model"
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("missing required input: %s", e.Field)
}

func (e *PreconditionError) Unwrap() error { return ErrMissingInput }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingInput)
}
