package pricing

import "github.com/shopspring/decimal"

// =============================================================================
// PRICE CALCULATOR - Relative/absolute adjustment with floor/ceiling clamp
// =============================================================================

var oneHundred = decimal.NewFromInt(100)

// ComputePrice resolves a fee's monetary amount from its adjustment.
//
// A relative price is a percentage of the parent amount: the sign encodes
// increase vs decrease, so amount = parent * (1 + relative/100). An
// absolute price is parent-independent and used as-is when no relative
// price is set.
//
// When PriceFloorCeiling is set, the relatively-computed amount is clamped
// into a band anchored on the fee's absolute price and scaled by the
// relative magnitude:
//
//	floor   = absolute * (1 - |relative|/100)
//	ceiling = absolute * (1 + |relative|/100)
//
// The absolute field bounding a relative computation is intentional: it
// makes a percentage-based fee behave like "at least/at most X absolute".
// Both bounds are inclusive.
//
// A relative fee with a nil parentAmount is a caller contract violation
// and returns a RelativePriceError rather than a garbage amount.
func ComputePrice(fee Fee, parentAmount *decimal.Decimal) (decimal.Decimal, error) {
	if fee.RelativePrice == nil {
		if fee.AbsolutePrice != nil {
			return *fee.AbsolutePrice, nil
		}
		return decimal.Zero, nil
	}

	if parentAmount == nil {
		return decimal.Zero, &RelativePriceError{FeeID: fee.ID, DisplayName: fee.DisplayName}
	}

	amount := parentAmount.Mul(decimal.NewFromInt(1).Add(fee.RelativePrice.Div(oneHundred)))

	if fee.PriceFloorCeiling && fee.AbsolutePrice != nil {
		floor, ceiling := floorCeilingBounds(fee)
		if amount.LessThan(floor) {
			amount = floor
		}
		if amount.GreaterThan(ceiling) {
			amount = ceiling
		}
	}

	return amount, nil
}

// floorCeilingBounds derives the inclusive clamp band for a
// floor/ceiling-priced fee. Requires RelativePrice and AbsolutePrice set.
func floorCeilingBounds(fee Fee) (floor, ceiling decimal.Decimal) {
	magnitude := fee.RelativePrice.Abs().Div(oneHundred)
	anchor := *fee.AbsolutePrice
	floor = anchor.Mul(decimal.NewFromInt(1).Sub(magnitude))
	ceiling = anchor.Mul(decimal.NewFromInt(1).Add(magnitude))
	return floor, ceiling
}
