/*
errors.go - Centralized error types for the pricing engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  Callers should use errors.Is/errors.As; the structured types carry the
  offending fee so the agent UI can name it.

ERROR CATEGORIES:
  1. Configuration errors - a misconfigured fee graph (relative price with
     no pricing basis, deposit anchoring an inventory group, cycles). Fatal
     to the in-progress period resolution; never silently degraded.
  2. Upstream data errors - inconsistent snapshot references (an edge
     pointing at a fee that does not exist). No partial recovery.
  3. Soft omissions are NOT errors: a fee whose service period does not
     match the period being resolved, or whose inventory-group expansion
     yields zero groups, is dropped without error.

USAGE:
  fees, err := pricing.ResolveFees(in)
  if pricing.IsConfigurationError(err) {
      // surface to the agent with the fee name; fix config, don't retry
  }

SEE ALSO:
  - resolver.go: where these are raised
  - api/handlers.go: HTTP status mapping
*/
package pricing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRelativePriceUnresolvable is returned when a relative-priced fee
	// has no resolvable parent amount to price against.
	ErrRelativePriceUnresolvable = errors.New("relative price has no parent amount")

	// ErrDepositGroupPricing is returned when a deposit-type fee carries a
	// relative price while serving as an inventory group's anchor fee.
	// Pricing a deposit relative to its own group is unsupported.
	ErrDepositGroupPricing = errors.New("deposit fee cannot price relative to its inventory group")

	// ErrFeeCycle is returned when the fee-association graph reaches a fee
	// already on the current resolution branch.
	ErrFeeCycle = errors.New("fee association cycle detected")

	// ErrFeeNotFound is returned when an association edge references a fee
	// absent from the snapshot.
	ErrFeeNotFound = errors.New("fee not found")

	// ErrPropertyNotFound is returned by stores when no catalog exists for
	// the requested property.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrInvalidCriteria is returned when a concession's stored matching
	// criteria document fails validation at load time.
	ErrInvalidCriteria = errors.New("invalid concession matching criteria")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the offending fee
// =============================================================================

// RelativePriceError reports a relative-priced fee with no pricing basis.
type RelativePriceError struct {
	FeeID       FeeID
	DisplayName string
}

func (e *RelativePriceError) Error() string {
	return fmt.Sprintf("fee %q (%s) declares a relative price but no parent amount is available", e.DisplayName, e.FeeID)
}

func (e *RelativePriceError) Unwrap() error { return ErrRelativePriceUnresolvable }

// DepositGroupPricingError reports the rejected deposit/inventory-group
// combination.
type DepositGroupPricingError struct {
	FeeID       FeeID
	DisplayName string
}

func (e *DepositGroupPricingError) Error() string {
	return fmt.Sprintf("deposit fee %q (%s) carries a relative price while bound to an inventory group", e.DisplayName, e.FeeID)
}

func (e *DepositGroupPricingError) Unwrap() error { return ErrDepositGroupPricing }

// CycleError reports a fee-association cycle, with the branch that
// revisited the fee.
type CycleError struct {
	FeeID FeeID
	Path  []FeeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("fee %s reached twice on one resolution branch (path %v)", e.FeeID, e.Path)
}

func (e *CycleError) Unwrap() error { return ErrFeeCycle }

// UnknownFeeError reports an association edge pointing at a missing fee.
type UnknownFeeError struct {
	FeeID      FeeID
	PrimaryFee FeeID
}

func (e *UnknownFeeError) Error() string {
	return fmt.Sprintf("associated fee %s (child of %s) does not exist in the snapshot", e.FeeID, e.PrimaryFee)
}

func (e *UnknownFeeError) Unwrap() error { return ErrFeeNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigurationError reports whether the error is a fee-catalog
// misconfiguration that an admin must fix. These are never retried.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrRelativePriceUnresolvable) ||
		errors.Is(err, ErrDepositGroupPricing) ||
		errors.Is(err, ErrFeeCycle) ||
		errors.Is(err, ErrInvalidCriteria)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFeeNotFound) ||
		errors.Is(err, ErrPropertyNotFound)
}
