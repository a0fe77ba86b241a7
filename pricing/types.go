/*
Package pricing implements the fee and concession resolution engine.

PURPOSE:
  Given a read-only snapshot of a property's fee catalog (fees, fee
  associations, inventory groups, lease terms, amenity prices, concessions),
  the engine resolves the complete, deduplicated, correctly-priced list of
  chargeable items a leasing agent may offer for a billing period, and
  attaches the promotional concessions that apply to each one.

KEY CONCEPTS IN THIS FILE (types.go):
  - Fee: a chargeable-item template (application fee, pet deposit, parking)
  - AssociatedFee: a dependency edge making one fee a child of another
  - InventoryGroup: a grouping of rentable units sharing a base price and
    an optional parent fee binding
  - Concession: a promotional discount with date- and attribute-matching
    criteria, optionally baked into the displayed rent
  - ResolvedFee: the priced, deduplicated output unit of one resolution run

DESIGN PRINCIPLES:
  1. Precision: all monetary values are decimal.Decimal, never float64
  2. Type Safety: strong typing for ids prevents mixing fee/group/term ids
  3. Purity: the resolver performs no I/O; the snapshot is its only input
  4. Immutability: the input snapshot is read-only; every resolution run
     produces a fresh, independently-owned output list

SEE ALSO:
  - price.go: relative/absolute price computation with floor/ceiling clamp
  - resolver.go: the fee-graph frontier expansion
  - concession.go: concession matching
  - adjust.go: baked-into-rent adjustment envelope
  - snapshot.go: the store boundary supplying the input snapshot
*/
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PropertyID string
type FeeID string
type InventoryGroupID string
type InventoryID string
type LeaseTermID string
type LeaseNameID string
type LayoutID string
type BuildingID string
type AmenityID string
type ConcessionID string

// =============================================================================
// FEE - Chargeable-item template
// =============================================================================

// FeeType determines how a fee is expanded during resolution.
type FeeType string

const (
	FeeTypeApplication    FeeType = "application"
	FeeTypeHoldDeposit    FeeType = "holdDeposit"
	FeeTypeDeposit        FeeType = "deposit"
	FeeTypeService        FeeType = "service"
	FeeTypeInventoryGroup FeeType = "inventoryGroup"
	FeeTypeOther          FeeType = "other"
)

// ServicePeriod is the billing cadence of a fee.
type ServicePeriod string

const (
	PeriodMonth   ServicePeriod = "month"
	PeriodWeek    ServicePeriod = "week"
	PeriodDay     ServicePeriod = "day"
	PeriodHour    ServicePeriod = "hour"
	PeriodOneTime ServicePeriod = "oneTime"
	PeriodNone    ServicePeriod = ""
)

// QuotePeriods are the billing periods a quote is priced for, one
// independent resolution run each.
var QuotePeriods = []ServicePeriod{PeriodMonth, PeriodWeek, PeriodDay, PeriodHour}

// LeaseState restricts a fee to new leases, renewals, or both.
type LeaseState string

const (
	LeaseStateNew     LeaseState = "new"
	LeaseStateRenewal LeaseState = "renewal"
	LeaseStateAny     LeaseState = "" // applies to both
)

// Matches reports whether a fee restricted to state s is applicable in the
// requested context.
func (s LeaseState) Matches(requested LeaseState) bool {
	return s == LeaseStateAny || requested == LeaseStateAny || s == requested
}

// Fee is a chargeable-item template. Fees are created by catalog import or
// the admin UI and are read-only to the resolver.
type Fee struct {
	ID          FeeID
	Name        string
	DisplayName string
	Type        FeeType

	ServicePeriod ServicePeriod

	// Price adjustments. Relative is a percentage of the parent amount
	// (sign encodes increase/decrease); absolute is a flat amount
	// independent of any parent. At most one drives the computed price;
	// relative wins when both are set.
	RelativePrice *decimal.Decimal
	AbsolutePrice *decimal.Decimal

	RelativeDefaultPrice *decimal.Decimal
	AbsoluteDefaultPrice *decimal.Decimal

	// PriceFloorCeiling clamps a relatively-computed price into a band
	// anchored on the absolute price. See ComputePrice.
	PriceFloorCeiling bool

	// QuoteSectionName places the fee in a quote section. Fees without one
	// are not independently quotable and exist only to carry children.
	QuoteSectionName string

	MaxQuantityInQuote int

	LeaseState           LeaseState
	RenewalLetterDisplay bool
	ExternalChargeCode   string
}

// Quotable reports whether the fee is independently meaningful on a quote.
func (f Fee) Quotable() bool { return f.QuoteSectionName != "" }

// AppliesTo reports whether the fee's service period is billable in the
// given period. One-time and unset periods apply everywhere.
func (f Fee) AppliesTo(period ServicePeriod) bool {
	switch f.ServicePeriod {
	case PeriodOneTime, PeriodNone:
		return true
	default:
		return f.ServicePeriod == period
	}
}

// AssociatedFee is a directed dependency edge primary -> associated.
// The edge set forms a DAG by contract; the resolver fails with a
// configuration error if a cycle is reachable from a first-level fee.
type AssociatedFee struct {
	PrimaryFee    FeeID
	AssociatedFee FeeID

	// IsAdditional marks an upsell child as opposed to a core charge.
	// Additional fees sort after core fees in the resolved output.
	IsAdditional bool
}

// =============================================================================
// INVENTORY - Units, groups, amenity adjustments
// =============================================================================

// InventoryGroup binds a unit grouping to an optional parent fee and an
// optional lease name. It carries per-period base prices and anchors the
// per-unit amenity price deltas.
type InventoryGroup struct {
	ID          InventoryGroupID
	Name        string
	FeeID       FeeID       // parent fee, typically FeeTypeInventoryGroup; empty if unbound
	LeaseNameID LeaseNameID // empty means no lease-term compatibility check

	BasePriceMonthly decimal.Decimal
	BasePriceWeekly  decimal.Decimal
	BasePriceDaily   decimal.Decimal
	BasePriceHourly  decimal.Decimal
}

// BasePrice returns the group's base amount for the given billing period.
func (g InventoryGroup) BasePrice(period ServicePeriod) decimal.Decimal {
	switch period {
	case PeriodWeek:
		return g.BasePriceWeekly
	case PeriodDay:
		return g.BasePriceDaily
	case PeriodHour:
		return g.BasePriceHourly
	default:
		return g.BasePriceMonthly
	}
}

// Inventory is a rentable unit record.
type Inventory struct {
	ID      InventoryID
	GroupID InventoryGroupID

	// ParentInventory is set when this unit is itself a child of another
	// unit (e.g. a storage cage attached to an apartment) and must not be
	// independently priced.
	ParentInventory *InventoryID

	LayoutID   LayoutID
	BuildingID BuildingID

	MarketRent decimal.Decimal

	// PooledQuantity > 0 marks the unit as part of an inventory pool
	// (interchangeable units sold by count rather than identity).
	PooledQuantity int
}

// AmenityPrice is a per-inventory-group price delta contributed by an
// amenity. Relative is a percentage of the group's base price.
type AmenityPrice struct {
	GroupID   InventoryGroupID
	AmenityID AmenityID

	RelativePrice *decimal.Decimal
	AbsolutePrice *decimal.Decimal
}

// LeaseTerm is an offered lease length for a lease name, carrying the
// market rent the concession adjuster works from.
type LeaseTerm struct {
	ID          LeaseTermID
	TermLength  int
	Period      ServicePeriod
	LeaseNameID LeaseNameID

	AdjustedMarketRent decimal.Decimal

	// Concessions attached by the matcher; input terms carry none.
	Concessions []Concession
}

// SameRateTriple reports strict equality of the (termLength, period,
// adjustedMarketRent) triple used by the inventory-group superset check.
func (t LeaseTerm) SameRateTriple(o LeaseTerm) bool {
	return t.TermLength == o.TermLength &&
		t.Period == o.Period &&
		t.AdjustedMarketRent.Equal(o.AdjustedMarketRent)
}

// =============================================================================
// CONCESSION - Promotional discount
// =============================================================================

// Concession is a promotional discount attachable to a fee or baked
// directly into the displayed rent.
type Concession struct {
	ID          ConcessionID
	DisplayName string

	// Adjustment magnitudes; relative is a percentage of the market rent
	// (sign encodes direction), absolute a flat amount.
	RelativeAdjustment *decimal.Decimal
	AbsoluteAdjustment *decimal.Decimal

	// VariableAdjustment means the agent may apply any magnitude between
	// zero and the configured adjustment instead of the fixed value.
	VariableAdjustment bool

	Recurring             bool
	RecurringCount        int
	NonRecurringAppliedAt string

	// BakedIntoAppliedFee folds the discount into the displayed base rent
	// rather than showing it as its own line item.
	BakedIntoAppliedFee bool

	HideInSelfService      bool
	AdjustmentFloorCeiling bool

	// Validity window, inclusive on both bounds; nil means open-ended.
	StartDate *time.Time
	EndDate   *time.Time

	Criteria MatchingCriteria
}

// Delta resolves the concession's signed adjustment against a base amount.
func (c Concession) Delta(base decimal.Decimal) decimal.Decimal {
	if c.RelativeAdjustment != nil {
		return base.Mul(*c.RelativeAdjustment).Div(decimal.NewFromInt(100))
	}
	if c.AbsoluteAdjustment != nil {
		return *c.AbsoluteAdjustment
	}
	return decimal.Zero
}

// =============================================================================
// RESOLVED FEE - Output unit of one resolution run
// =============================================================================

// ResolvedFee is the priced output unit of a resolution run. It is owned
// exclusively by that run, never persisted, and consumed immediately by
// quote/lease assembly.
type ResolvedFee struct {
	Key        FeeKey
	OriginalID FeeID

	DisplayName          string
	QuoteSectionName     string
	ParentFeeDisplayName string

	ServicePeriod ServicePeriod

	// Price is the computed baseline; Amount is the quoted value. The two
	// only diverge when a quote-level manual override replaces Amount.
	Price  decimal.Decimal
	Amount decimal.Decimal

	Quantity           int
	MaxQuantityInQuote int

	Visible  bool
	Selected bool

	IsAdditional bool
	FirstFee     bool

	// ParentFeeAmount is the amount children with relative prices compute
	// against.
	ParentFeeAmount decimal.Decimal

	// Inventory-group expansion extras.
	InventoryGroupID InventoryGroupID
	HasInventoryPool bool
	MinRent          *decimal.Decimal
	MaxRent          *decimal.Decimal

	Children []FeeKey

	RenewalLetterDisplay bool
	ExternalChargeCode   string

	Concessions []Concession
}

// ID renders the externally visible id for this instance.
func (f ResolvedFee) ID() string { return f.Key.String() }

// =============================================================================
// QUOTE SELECTIONS - Prior agent choices merged post-resolution
// =============================================================================

// QuoteSelection carries the selections already made on a quote: manual fee
// amount overrides and, per lease term, a manually overwritten base rent.
type QuoteSelection struct {
	// FeeAmountOverrides maps a resolved fee id to its agent-entered
	// amount. Overrides replace Amount, never Price.
	FeeAmountOverrides map[string]decimal.Decimal

	BaseRentOverrides map[LeaseTermID]BaseRentOverride
}

// BaseRentOverride records a manually overwritten base rent together with
// the computed value it replaced.
type BaseRentOverride struct {
	OriginalBaseRent    decimal.Decimal
	OverwrittenBaseRent decimal.Decimal
}
