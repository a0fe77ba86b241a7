package pricing_test

import (
	"testing"

	"github.com/warp/pricing-engine/pricing"
)

func bakedRelative(id, rel string, variable bool) pricing.Concession {
	return pricing.Concession{
		ID:                  pricing.ConcessionID(id),
		RelativeAdjustment:  decp(rel),
		VariableAdjustment:  variable,
		BakedIntoAppliedFee: true,
	}
}

func bakedAbsolute(id, abs string, variable bool) pricing.Concession {
	return pricing.Concession{
		ID:                  pricing.ConcessionID(id),
		AbsoluteAdjustment:  decp(abs),
		VariableAdjustment:  variable,
		BakedIntoAppliedFee: true,
	}
}

func termWith(concessions ...pricing.Concession) pricing.LeaseTerm {
	return pricing.LeaseTerm{ID: "term-12", TermLength: 12, Period: pricing.PeriodMonth, Concessions: concessions}
}

// =============================================================================
// NON-VARIABLE SUMMATION
// =============================================================================

func TestAdjustments_NonVariableSummation(t *testing.T) {
	// GIVEN: two baked non-variable concessions, -2.00% and -1.00%,
	//        against market rent 3000
	// THEN: adjustedMarketRent = round(3000 * 0.97) = 2910
	// This pins the exact summation rule for regression.

	term := termWith(
		bakedRelative("two", "-2.00", false),
		bakedRelative("one", "-1.00", false),
	)

	out := pricing.CalculateLeaseTermAdjustments(term, dec("3000"), nil)

	if !out.AdjustedMarketRent.Equal(dec("2910")) {
		t.Errorf("expected 2910, got %v", out.AdjustedMarketRent)
	}
	if out.AllowBaseRentAdjustment {
		t.Error("no variable concessions, rent must not be agent-editable")
	}
	if out.MinBakedFeesAdjustment != nil || out.MaxBakedFeesAdjustment != nil {
		t.Error("envelope must be absent without variable concessions")
	}
}

func TestAdjustments_DeltasResolveAgainstBaseNotCompounded(t *testing.T) {
	// Each relative delta resolves against the base market rent, not the
	// running total: 1000 - 10% - 10% = 800, not 810.
	term := termWith(
		bakedRelative("a", "-10", false),
		bakedRelative("b", "-10", false),
	)

	out := pricing.CalculateLeaseTermAdjustments(term, dec("1000"), nil)
	if !out.AdjustedMarketRent.Equal(dec("800")) {
		t.Errorf("expected 800, got %v", out.AdjustedMarketRent)
	}
}

func TestAdjustments_AbsoluteAndRelativeMix(t *testing.T) {
	term := termWith(
		bakedRelative("pct", "-5", false), // -150
		bakedAbsolute("flat", "-75", false),
	)

	out := pricing.CalculateLeaseTermAdjustments(term, dec("3000"), nil)
	if !out.AdjustedMarketRent.Equal(dec("2775")) {
		t.Errorf("expected 2775, got %v", out.AdjustedMarketRent)
	}
}

func TestAdjustments_RoundsToNearestUnit(t *testing.T) {
	// 999 * (1 - 3.33/100) = 965.7333... -> 966
	term := termWith(bakedRelative("odd", "-3.33", false))

	out := pricing.CalculateLeaseTermAdjustments(term, dec("999"), nil)
	if !out.AdjustedMarketRent.Equal(dec("966")) {
		t.Errorf("expected 966, got %v", out.AdjustedMarketRent)
	}
}

func TestAdjustments_NonBakedConcessionsIgnored(t *testing.T) {
	// The adjuster only aggregates baked-into-rent concessions; line-item
	// concessions do not touch the rent.
	lineItem := pricing.Concession{ID: "line", RelativeAdjustment: decp("-50")}
	term := termWith(lineItem)

	out := pricing.CalculateLeaseTermAdjustments(term, dec("3000"), nil)
	if !out.AdjustedMarketRent.Equal(dec("3000")) {
		t.Errorf("expected untouched rent, got %v", out.AdjustedMarketRent)
	}
}

// =============================================================================
// VARIABLE ENVELOPE
// =============================================================================

func TestAdjustments_VariableEnvelopeExtremes(t *testing.T) {
	// GIVEN: variable baked concessions -200, -100 (absolute) and +50
	// THEN: min = adjusted - 200, max = adjusted + 50, and the rent
	//       becomes agent-editable

	term := termWith(
		bakedAbsolute("gen", "-200", true),
		bakedAbsolute("small", "-100", true),
		bakedAbsolute("up", "50", true),
	)

	out := pricing.CalculateLeaseTermAdjustments(term, dec("3000"), nil)

	if !out.AllowBaseRentAdjustment {
		t.Fatal("variable baked concessions must mark the rent editable")
	}
	if out.MinBakedFeesAdjustment == nil || !out.MinBakedFeesAdjustment.Equal(dec("2800")) {
		t.Errorf("expected min 2800, got %v", out.MinBakedFeesAdjustment)
	}
	if out.MaxBakedFeesAdjustment == nil || !out.MaxBakedFeesAdjustment.Equal(dec("3050")) {
		t.Errorf("expected max 3050, got %v", out.MaxBakedFeesAdjustment)
	}
}

func TestAdjustments_EnvelopeMonotonicity(t *testing.T) {
	// Property: min <= adjusted <= max whenever variable baked
	// concessions exist.
	term := termWith(
		bakedRelative("fixed", "-1.5", false),
		bakedAbsolute("var-down", "-120", true),
		bakedRelative("var-up", "2", true),
	)

	out := pricing.CalculateLeaseTermAdjustments(term, dec("2450"), nil)

	if out.MinBakedFeesAdjustment == nil || out.MaxBakedFeesAdjustment == nil {
		t.Fatal("envelope expected")
	}
	if out.MinBakedFeesAdjustment.GreaterThan(out.AdjustedMarketRent) {
		t.Errorf("min %v above adjusted %v", out.MinBakedFeesAdjustment, out.AdjustedMarketRent)
	}
	if out.MaxBakedFeesAdjustment.LessThan(out.AdjustedMarketRent) {
		t.Errorf("max %v below adjusted %v", out.MaxBakedFeesAdjustment, out.AdjustedMarketRent)
	}
}

func TestAdjustments_OnlyDownwardVariable(t *testing.T) {
	// With only a negative variable concession the max extreme equals the
	// adjusted rent.
	term := termWith(bakedAbsolute("down", "-300", true))

	out := pricing.CalculateLeaseTermAdjustments(term, dec("2000"), nil)
	if out.MaxBakedFeesAdjustment == nil || !out.MaxBakedFeesAdjustment.Equal(dec("2000")) {
		t.Errorf("expected max to stay at adjusted rent, got %v", out.MaxBakedFeesAdjustment)
	}
	if out.MinBakedFeesAdjustment == nil || !out.MinBakedFeesAdjustment.Equal(dec("1700")) {
		t.Errorf("expected min 1700, got %v", out.MinBakedFeesAdjustment)
	}
}

// =============================================================================
// MANUAL OVERWRITE PRECEDENCE
// =============================================================================

func TestAdjustments_PriorOverwriteWins(t *testing.T) {
	// GIVEN: a quote already carrying an overwritten base rent for the term
	// WHEN: recomputing adjustments
	// THEN: the overwrite is reported alongside a refreshed envelope

	term := termWith(
		bakedRelative("fixed", "-2", false),
		bakedAbsolute("var", "-100", true),
	)
	prior := &pricing.QuoteSelection{
		BaseRentOverrides: map[pricing.LeaseTermID]pricing.BaseRentOverride{
			"term-12": {OriginalBaseRent: dec("2940"), OverwrittenBaseRent: dec("2900")},
		},
	}

	out := pricing.CalculateLeaseTermAdjustments(term, dec("3000"), prior)

	if out.OverwrittenBaseRent == nil || !out.OverwrittenBaseRent.Equal(dec("2900")) {
		t.Errorf("expected overwritten 2900, got %v", out.OverwrittenBaseRent)
	}
	if out.OriginalBaseRent == nil || !out.OriginalBaseRent.Equal(dec("2940")) {
		t.Errorf("expected original 2940, got %v", out.OriginalBaseRent)
	}
	// Bounds are still refreshed from the current concession set.
	if out.MinBakedFeesAdjustment == nil || !out.MinBakedFeesAdjustment.Equal(dec("2840")) {
		t.Errorf("expected refreshed min 2840, got %v", out.MinBakedFeesAdjustment)
	}
}
