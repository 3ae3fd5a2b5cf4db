/*
coverage.go - Coverage definitions and the coverage pricer

PURPOSE:
  Resolves a coverage definition plus the caller's selected option to a
  premium contribution. Every coverage starts from the fixed base
  coverage premium and multiplies by the matched option's factor.

OPTION KINDS:
  Each coverage discriminates its options on exactly one dimension:
  a flat amount, a deductible, or a tiered level. The kind is resolved
  once when the definition is loaded (factory package), so pricing never
  guesses at record shapes.

MATCHING (first match wins):
  1. Level-kind coverages match on level only
  2. Amount equality, when both sides define an amount
  3. Deductible equality, when both sides define a deductible
  4. Level equality, when both sides define a level (defensive, for
     mixed-discriminator data)

NEVER FAIL TO PRICE:
  A selection matching no option falls back to the coverage's first
  declared option; missing selection fields are back-filled from the
  option that priced it. This trades precision for availability when
  client data is stale relative to the rating table. Mandatory coverages
  with a zero or absent amount substitute the coverage's configured
  default before matching; a 0-amount mandatory liability coverage is
  never valid output.

PURITY:
  PriceCoverage never mutates the caller's selection. It returns the
  premium, a corrected copy, and the corrections it applied.

SEE ALSO:
  - engine.go: Iterates coverages and accumulates premiums
  - factory/: Resolves option kinds at load time
*/
package rating

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BaseCoveragePremium is the fixed starting premium for every coverage,
// before the option factor applies.
var BaseCoveragePremium = NewMoneyFromInt(80)

// =============================================================================
// COVERAGE DEFINITION - Tagged option union, resolved at load time
// =============================================================================

// OptionKind is the discriminating dimension of a coverage's options.
type OptionKind string

const (
	OptionAmount     OptionKind = "amount"
	OptionDeductible OptionKind = "deductible"
	OptionLevel      OptionKind = "level"
)

// CoverageOption is one priceable choice within a coverage. Only the field
// matching the definition's Kind is set.
type CoverageOption struct {
	Amount        *int64
	Deductible    *int64
	Level         *string
	PremiumFactor decimal.Decimal
}

// CoverageDefinition describes one coverage product.
//
// Invariant: all Options share the discriminator named by Kind. The factory
// enforces this when definitions are loaded.
type CoverageDefinition struct {
	ID        CoverageID
	Name      string
	Mandatory bool
	Kind      OptionKind
	Options   []CoverageOption

	// DefaultAmount / DefaultLevel back the zero-amount substitution policy
	// for mandatory coverages. Administratively defined per coverage.
	DefaultAmount *int64
	DefaultLevel  *string
}

// =============================================================================
// COVERAGE PRICER
// =============================================================================

// PriceCoverage prices one coverage. It returns the premium contribution,
// a corrected copy of the selection, and any corrections applied.
func PriceCoverage(def CoverageDefinition, sel CoverageSelection) (Money, CoverageSelection, []Correction) {
	corrected := cloneSelection(sel)
	var corrections []Correction

	// Mandatory coverages are always priced, whatever the caller said.
	if def.Mandatory {
		corrected.Selected = true
	}

	// Zero/absent mandatory defaults, substituted before matching.
	if def.Mandatory {
		switch def.Kind {
		case OptionAmount:
			if corrected.Amount == nil || *corrected.Amount == 0 {
				sub := def.DefaultAmount
				if sub == nil && len(def.Options) > 0 {
					sub = def.Options[0].Amount
				}
				if sub != nil && *sub != 0 {
					corrected.Amount = clonePtr(sub)
					corrections = append(corrections, Correction{
						Kind:     CorrectionZeroAmount,
						Coverage: def.ID,
						Detail:   fmt.Sprintf("substituted default amount %d", *sub),
					})
				}
			}
		case OptionLevel:
			if corrected.Level == nil || *corrected.Level == "" {
				sub := def.DefaultLevel
				if sub == nil && len(def.Options) > 0 {
					sub = def.Options[0].Level
				}
				if sub != nil {
					corrected.Level = clonePtr(sub)
					corrections = append(corrections, Correction{
						Kind:     CorrectionZeroAmount,
						Coverage: def.ID,
						Detail:   fmt.Sprintf("substituted default level %q", *sub),
					})
				}
			}
		}
	}

	premium := BaseCoveragePremium

	if len(def.Options) == 0 {
		// Coverage with no declared options prices at the base factor.
		return premium, corrected, corrections
	}

	if opt := matchOption(def, corrected); opt != nil {
		premium = premium.Mul(opt.PremiumFactor)
		backfill(&corrected, opt, false)
		return premium, corrected, corrections
	}

	// No match: first declared option, back-filling every field it defines
	// so the persisted selection is self-consistent.
	first := def.Options[0]
	premium = premium.Mul(first.PremiumFactor)
	backfill(&corrected, &first, true)
	corrections = append(corrections, Correction{
		Kind:     CorrectionOptionFallback,
		Coverage: def.ID,
		Detail:   "selection matched no declared option; priced first option",
	})
	return premium, corrected, corrections
}

// matchOption applies the matching priority. Returns nil when nothing matches.
func matchOption(def CoverageDefinition, sel CoverageSelection) *CoverageOption {
	for i := range def.Options {
		opt := &def.Options[i]

		if def.Kind == OptionLevel {
			if opt.Level != nil && sel.Level != nil && *opt.Level == *sel.Level {
				return opt
			}
			continue
		}

		if opt.Amount != nil && sel.Amount != nil && *opt.Amount == *sel.Amount {
			return opt
		}
		if opt.Deductible != nil && sel.Deductible != nil && *opt.Deductible == *sel.Deductible {
			return opt
		}
		if opt.Level != nil && sel.Level != nil && *opt.Level == *sel.Level {
			return opt
		}
	}
	return nil
}

// backfill copies option fields onto the selection. With overwrite false,
// only missing fields are filled (a matched option completes the
// selection); with overwrite true the option's values win (the fallback
// option replaces whatever stale values the caller sent).
func backfill(sel *CoverageSelection, opt *CoverageOption, overwrite bool) {
	if opt.Amount != nil && (overwrite || sel.Amount == nil) {
		sel.Amount = clonePtr(opt.Amount)
	}
	if opt.Deductible != nil && (overwrite || sel.Deductible == nil) {
		sel.Deductible = clonePtr(opt.Deductible)
	}
	if opt.Level != nil && (overwrite || sel.Level == nil) {
		sel.Level = clonePtr(opt.Level)
	}
}

// cloneSelection deep-copies a selection so pricing never aliases caller
// memory through the pointer fields.
func cloneSelection(sel CoverageSelection) CoverageSelection {
	return CoverageSelection{
		Selected:   sel.Selected,
		Amount:     clonePtr(sel.Amount),
		Deductible: clonePtr(sel.Deductible),
		Level:      clonePtr(sel.Level),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
