package pricing

// =============================================================================
// PERIOD ITERATOR - One independent resolution run per billing period
// =============================================================================

// PeriodFees is one period's resolved fee list. Results for different
// periods are independent and order-insensitive between periods; within a
// period the resolver's ordering is preserved.
type PeriodFees struct {
	Period ServicePeriod
	Fees   []ResolvedFee
}

// ResolveAllPeriods runs the resolver once per billing period over the
// same snapshot slice and merges quote-level amount overrides. All four
// runs are pure computations over read-only input; a configuration error
// in any period aborts the whole call.
func ResolveAllPeriods(in ResolveInput, selection *QuoteSelection) ([]PeriodFees, error) {
	out := make([]PeriodFees, 0, len(QuotePeriods))
	for _, period := range QuotePeriods {
		run := in
		run.Period = period
		fees, err := ResolveFees(run)
		if err != nil {
			return nil, err
		}
		ApplyAmountOverrides(fees, selection)
		out = append(out, PeriodFees{Period: period, Fees: fees})
	}
	return out, nil
}

// ApplyAmountOverrides replaces each fee's Amount with the quote's manual
// override where one exists. Price keeps the computed baseline so the
// quote can be audited and recomputed.
func ApplyAmountOverrides(fees []ResolvedFee, selection *QuoteSelection) {
	if selection == nil || len(selection.FeeAmountOverrides) == 0 {
		return
	}
	for i := range fees {
		if amount, ok := selection.FeeAmountOverrides[fees[i].ID()]; ok {
			fees[i].Amount = amount
			fees[i].Selected = true
		}
	}
}
