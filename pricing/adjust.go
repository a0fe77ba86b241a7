/*
adjust.go - Baked-into-rent concession aggregation

PURPOSE:
  Aggregates the baked-into-rent concessions already attached to a lease
  term into a single adjusted market rent plus the allowed min/max
  adjustment envelope for agent-editable (variable) concessions.

RULES:
  - Non-variable baked concessions sum directly into the market rent, each
    delta resolved against the base rent (not compounded); the result is
    rounded to the nearest integer currency unit.
  - Variable baked concessions are agent-adjustable between zero and their
    configured magnitude. They are NOT collapsed into a number; the
    envelope reports the adjusted rent with the most generous positive one
    fully applied (max) and the most generous negative one fully applied
    (min), and AllowBaseRentAdjustment signals the rent is editable.
  - A previously overwritten base rent on the quote wins over the freshly
    computed value; the envelope is still refreshed.

  This is pure aggregation: which concessions are active must already have
  been decided by the matcher.

SEE ALSO:
  - concession.go: the matching that precedes this
*/
package pricing

import "github.com/shopspring/decimal"

// LeaseTermAdjustment is the rent envelope reported per lease term.
type LeaseTermAdjustment struct {
	AdjustedMarketRent decimal.Decimal

	// Set only when the quote carries a manual base-rent overwrite.
	OverwrittenBaseRent *decimal.Decimal
	OriginalBaseRent    *decimal.Decimal

	// Set only when variable baked concessions exist.
	AllowBaseRentAdjustment bool
	MinBakedFeesAdjustment  *decimal.Decimal
	MaxBakedFeesAdjustment  *decimal.Decimal
}

// CalculateLeaseTermAdjustments computes the adjusted market rent and the
// variable-concession envelope for one lease term. prior may be nil.
func CalculateLeaseTermAdjustments(term LeaseTerm, marketRent decimal.Decimal, prior *QuoteSelection) LeaseTermAdjustment {
	adjusted := marketRent
	var minDelta, maxDelta *decimal.Decimal

	for _, c := range term.Concessions {
		if !c.BakedIntoAppliedFee {
			continue
		}
		delta := c.Delta(marketRent)

		if !c.VariableAdjustment {
			adjusted = adjusted.Add(delta)
			continue
		}

		// Variable: track the most generous fully-applied extreme in
		// each direction.
		if delta.IsPositive() && (maxDelta == nil || delta.GreaterThan(*maxDelta)) {
			d := delta
			maxDelta = &d
		}
		if delta.IsNegative() && (minDelta == nil || delta.LessThan(*minDelta)) {
			d := delta
			minDelta = &d
		}
	}

	adjusted = adjusted.Round(0)

	out := LeaseTermAdjustment{AdjustedMarketRent: adjusted}

	if minDelta != nil || maxDelta != nil {
		out.AllowBaseRentAdjustment = true
		minRent := adjusted
		if minDelta != nil {
			minRent = adjusted.Add(*minDelta).Round(0)
		}
		maxRent := adjusted
		if maxDelta != nil {
			maxRent = adjusted.Add(*maxDelta).Round(0)
		}
		out.MinBakedFeesAdjustment = &minRent
		out.MaxBakedFeesAdjustment = &maxRent
	}

	if prior != nil {
		if ov, ok := prior.BaseRentOverrides[term.ID]; ok {
			original := ov.OriginalBaseRent
			overwritten := ov.OverwrittenBaseRent
			out.OriginalBaseRent = &original
			out.OverwrittenBaseRent = &overwritten
		}
	}

	return out
}
