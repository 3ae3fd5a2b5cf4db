/*
engine.go - The premium composer

PURPOSE:
  Orchestrates a full premium calculation: validate preconditions, fetch
  the required rating rows, then run the fixed-order composition:

    1. Base premium (constant 800)
    2. x driver factors (age group, experience, history)
    3. x vehicle factors (group, age, usage, safety, features, parking)
    4. + mandatory coverage premiums (always priced)
    5. + optional coverage premiums (selected only)
    6. + endorsement premiums (sequential fold over the running total)
    7. - discounts (all against the same pre-discount total)
    8. taxes on the discounted subtotal, then flat fees
    9. monthly = annual / 12

FETCH STAGE:
  Driver bands, the vehicle model, the usage row, and the coverage /
  endorsement / discount sets have no interdependencies, so they are
  fetched concurrently. A failed or empty fetch never aborts the
  calculation: the affected factor degrades to neutral (or the coverage
  list to empty) and a Correction records what happened. Only missing
  required inputs reject.

ORDERING:
  Endorsements price off the running total including prior endorsements.
  The fold iterates in ascending endorsement id, which is documented as
  non-semantically-significant but keeps output reproducible regardless
  of map iteration order. Discounts deliberately do NOT compound: every
  discount applies to the same pre-discount total.

SEE ALSO:
  - coverage.go: Per-coverage pricing
  - driver.go / vehicle.go: Factor resolution
  - source.go: The fetch interface
*/
package rating

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// ENGINE CONSTANTS
// =============================================================================

var (
	// BasePremium is the starting premium before any factor applies.
	BasePremium = NewMoneyFromInt(800)

	// Fees is the flat administrative fee, added after taxes are computed.
	Fees = NewMoneyFromInt(35)

	// TaxRate applies to the post-discount subtotal. Fees are not taxed.
	TaxRate = MustParseDecimal("0.13")

	twelve = decimal.NewFromInt(12)
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes premium breakdowns. It holds no mutable state; a single
// Engine value is safe for concurrent use by any number of callers.
type Engine struct {
	Source Source
	Logger *zap.Logger
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// =============================================================================
// FETCH STAGE
// =============================================================================

// fetched collects the rating rows one calculation needs. Each slot records
// its own error; fetch failures are recoverable and resolved during
// composition, not propagated.
type fetched struct {
	province     *Province
	provinceErr  error
	model        *Model
	modelErr     error
	usage        *Usage
	usageErr     error
	ageBand      *Band
	ageErr       error
	expBand      *Band
	expErr       error
	histBand     *Band
	histErr      error
	coverages    []CoverageDefinition
	coveragesErr error
	endorsements []Endorsement
	endorseErr   error
	discounts    []Discount
	discountErr  error
}

func (e *Engine) fetch(ctx context.Context, input QuoteInput, sel SelectionSet, age int) *fetched {
	f := &fetched{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		f.province, f.provinceErr = e.Source.Province(ctx, input.Driver.Province)
		return nil
	})
	g.Go(func() error {
		f.model, f.modelErr = e.Source.Model(ctx, input.Vehicle.Model)
		return nil
	})
	g.Go(func() error {
		f.usage, f.usageErr = e.Source.Usage(ctx, input.Vehicle.PrimaryUse)
		return nil
	})
	g.Go(func() error {
		f.ageBand, f.ageErr = e.Source.AgeBand(ctx, age)
		return nil
	})
	g.Go(func() error {
		f.expBand, f.expErr = e.Source.ExperienceBand(ctx, input.Driver.LicenseYears)
		return nil
	})
	g.Go(func() error {
		f.histBand, f.histErr = e.Source.HistoryBand(ctx, HistoryBandFor(input.Driver))
		return nil
	})
	g.Go(func() error {
		// Coverage resolution needs the province's mandatory list, so this
		// branch performs its own province read rather than waiting on the
		// sibling fetch.
		prov, err := e.Source.Province(ctx, input.Driver.Province)
		if err != nil || prov == nil {
			f.coveragesErr = err
			return nil
		}
		ids := append([]CoverageID{}, prov.MandatoryCoverages...)
		for id, cs := range sel.OptionalCoverages {
			if cs.Selected {
				ids = append(ids, id)
			}
		}
		f.coverages, f.coveragesErr = e.Source.Coverages(ctx, ids)
		return nil
	})
	g.Go(func() error {
		ids := selectedIDs(sel.Endorsements)
		if len(ids) == 0 {
			return nil
		}
		f.endorsements, f.endorseErr = e.Source.Endorsements(ctx, ids)
		return nil
	})
	g.Go(func() error {
		ids := selectedIDs(sel.Discounts)
		if len(ids) == 0 {
			return nil
		}
		f.discounts, f.discountErr = e.Source.Discounts(ctx, ids)
		return nil
	})

	g.Wait() // goroutines only ever return nil
	return f
}

func selectedIDs[K ~string](m map[K]bool) []K {
	var ids []K
	for id, on := range m {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// =============================================================================
// CALCULATE
// =============================================================================

// Calculate prices a quote. It returns a PreconditionError when a required
// input is missing; every other degradation is recovered internally and
// reported via the breakdown's Corrections.
func (e *Engine) Calculate(ctx context.Context, input QuoteInput) (*PremiumBreakdown, error) {
	if e.Source == nil {
		return nil, ErrSourceRequired
	}
	if input.Driver.Province == "" {
		return nil, &PreconditionError{Field: "driver.province"}
	}
	if input.Vehicle.Model == 0 {
		return nil, &PreconditionError{Field: "vehicle.model"}
	}
	if input.Vehicle.PrimaryUse == "" {
		return nil, &PreconditionError{Field: "vehicle.primary_use"}
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	sel := input.Selections.normalized()
	age := DriverAge(input.Driver.DateOfBirth, now)

	f := e.fetch(ctx, input, sel, age)

	var corrections []Correction
	note := func(kind CorrectionKind, cov CoverageID, detail string) {
		corrections = append(corrections, Correction{Kind: kind, Coverage: cov, Detail: detail})
		e.logger().Warn("rating fallback", zap.String("kind", string(kind)), zap.String("detail", detail))
	}

	// Stage 1-2: base premium and driver factors.
	df := DriverFactors{
		AgeGroup:   factorOrNeutral(f.ageBand),
		Experience: factorOrNeutral(f.expBand),
		History:    factorOrNeutral(f.histBand),
	}
	if f.ageErr != nil || f.ageBand == nil {
		note(CorrectionTableDefault, "", "driver age band unresolved; neutral factor")
	}
	if f.expErr != nil || f.expBand == nil {
		note(CorrectionTableDefault, "", "driver experience band unresolved; neutral factor")
	}
	if f.histErr != nil || f.histBand == nil {
		note(CorrectionTableDefault, "", "driver history band unresolved; neutral factor")
	}

	// Stage 3: vehicle factors.
	if f.modelErr != nil || f.model == nil {
		note(CorrectionTableDefault, "", "vehicle model unresolved; group and safety neutral")
	}
	if f.usageErr != nil || f.usage == nil {
		note(CorrectionTableDefault, "", "vehicle usage unresolved; neutral factor")
	}
	vf := ResolveVehicleFactors(input.Vehicle, f.model, f.usage, now)

	premium := BasePremium.Mul(df.Product()).Mul(vf.Product())

	// Stage 4-5: coverage premiums. Mandatory coverages price regardless of
	// the caller's selected flag; optional coverages price only when selected.
	if f.coveragesErr != nil {
		note(CorrectionTableDefault, "", "coverage tables unavailable; priced without coverages")
	}
	if f.provinceErr != nil || f.province == nil {
		note(CorrectionTableDefault, "", "province unresolved")
	}

	defs := append([]CoverageDefinition{}, f.coverages...)
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })

	coveragePremiums := map[CoverageID]Money{}
	correctedSel := SelectionSet{
		MandatoryCoverages: map[CoverageID]CoverageSelection{},
		OptionalCoverages:  map[CoverageID]CoverageSelection{},
		Endorsements:       map[EndorsementID]bool{},
		Discounts:          map[DiscountID]bool{},
	}
	for id, cs := range sel.OptionalCoverages {
		correctedSel.OptionalCoverages[id] = cloneSelection(cs)
	}
	for id, cs := range sel.MandatoryCoverages {
		correctedSel.MandatoryCoverages[id] = cloneSelection(cs)
	}
	for id, on := range sel.Endorsements {
		correctedSel.Endorsements[id] = on
	}
	for id, on := range sel.Discounts {
		correctedSel.Discounts[id] = on
	}

	totalCoverage := NewMoneyFromInt(0)
	for _, def := range defs {
		var cs CoverageSelection
		if def.Mandatory {
			cs = sel.MandatoryCoverages[def.ID]
		} else {
			cs = sel.OptionalCoverages[def.ID]
			if !cs.Selected {
				continue
			}
		}

		p, corrected, notes := PriceCoverage(def, cs)
		coveragePremiums[def.ID] = p
		totalCoverage = totalCoverage.Add(p)
		corrections = append(corrections, notes...)

		if def.Mandatory {
			correctedSel.MandatoryCoverages[def.ID] = corrected
		} else {
			correctedSel.OptionalCoverages[def.ID] = corrected
		}
	}
	premium = premium.Add(totalCoverage)

	// Stage 6: endorsements, folded sequentially over the running total.
	if f.endorseErr != nil {
		note(CorrectionTableDefault, "", "endorsement tables unavailable; priced without endorsements")
	}
	endorsements := append([]Endorsement{}, f.endorsements...)
	sort.Slice(endorsements, func(i, j int) bool { return endorsements[i].ID < endorsements[j].ID })

	endorsementPremiums := map[EndorsementID]Money{}
	for _, end := range endorsements {
		p := premium.Mul(end.Factor)
		endorsementPremiums[end.ID] = p
		premium = premium.Add(p)
	}

	// Stage 7: discounts, all against the same pre-discount total.
	if f.discountErr != nil {
		note(CorrectionTableDefault, "", "discount tables unavailable; priced without discounts")
	}
	preDiscount := premium
	discountAmounts := map[DiscountID]Money{}
	totalDiscount := NewMoneyFromInt(0)
	for _, d := range f.discounts {
		amt := preDiscount.Mul(d.Factor)
		discountAmounts[d.ID] = amt
		totalDiscount = totalDiscount.Add(amt)
	}
	if totalDiscount.GreaterThan(preDiscount) {
		// Policy decision: a discount stack can zero the premium but never
		// drive it negative.
		totalDiscount = preDiscount
		note(CorrectionDiscountClamp, "", "summed discounts exceeded premium; clamped to pre-discount total")
	}

	// Stages 8-10: taxes on the discounted subtotal, flat fees after,
	// monthly as pure division.
	subtotal := preDiscount.Sub(totalDiscount)
	taxes := subtotal.Mul(TaxRate)
	annual := subtotal.Add(taxes).Add(Fees)
	monthly := annual.Div(twelve)

	return formatBreakdown(breakdownValues{
		basePremium:         preDiscount,
		discountAmount:      totalDiscount,
		taxes:               taxes,
		annual:              annual,
		monthly:             monthly,
		coveragePremiums:    coveragePremiums,
		endorsementPremiums: endorsementPremiums,
		discountAmounts:     discountAmounts,
		correctedSelections: correctedSel,
		corrections:         corrections,
	}), nil
}

// =============================================================================
// RESULT FORMATTER
// =============================================================================

type breakdownValues struct {
	basePremium         Money
	discountAmount      Money
	taxes               Money
	annual              Money
	monthly             Money
	coveragePremiums    map[CoverageID]Money
	endorsementPremiums map[EndorsementID]Money
	discountAmounts     map[DiscountID]Money
	correctedSelections SelectionSet
	corrections         []Correction
}

// formatBreakdown rounds every monetary figure to 2 decimal places and
// packages the output contract. This is the only place rounding happens.
func formatBreakdown(v breakdownValues) *PremiumBreakdown {
	out := &PremiumBreakdown{
		BasePremium:         v.basePremium.Round2(),
		DiscountAmount:      v.discountAmount.Round2(),
		Fees:                Fees,
		Taxes:               v.taxes.Round2(),
		AnnualPremium:       v.annual.Round2(),
		MonthlyPremium:      v.monthly.Round2(),
		CoveragePremiums:    map[CoverageID]Money{},
		EndorsementPremiums: map[EndorsementID]Money{},
		DiscountAmounts:     map[DiscountID]Money{},
		CorrectedSelections: v.correctedSelections,
		Corrections:         v.corrections,
	}
	for id, p := range v.coveragePremiums {
		out.CoveragePremiums[id] = p.Round2()
	}
	for id, p := range v.endorsementPremiums {
		out.EndorsementPremiums[id] = p.Round2()
	}
	for id, p := range v.discountAmounts {
		out.DiscountAmounts[id] = p.Round2()
	}
	return out
}
