/*
Package quoting assembles priced quotes on top of the pricing engine.

PURPOSE:
  The engine here is the orchestration layer a leasing agent's quote goes
  through: fetch the property snapshot (the single I/O step), resolve the
  fee graph once per billing period, attach the matching concessions to
  lease terms and resolved fees, compute the per-term rent adjustment
  envelope, and merge the selections already made on the quote.

FLOW:
  SnapshotStore -> fee resolver (x4 periods) -> concession matcher ->
  concession price adjuster -> Quote

  Everything after the snapshot fetch is a pure computation; the four
  period runs share no mutable state.

SEE ALSO:
  - pricing/resolver.go: the fee-graph walk
  - pricing/adjust.go: the rent envelope
  - renewal: the renewal-offer surface reusing this engine
*/
package quoting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine prices quotes for a property. Safe for concurrent use; each call
// works on its own snapshot copy.
type Engine struct {
	store  pricing.SnapshotStore
	logger *zap.Logger

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

func NewEngine(store pricing.SnapshotStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the evaluation clock. Intended for tests and for
// quote re-pricing at the original creation instant.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	clone := *e
	clone.now = now
	return &clone
}

// =============================================================================
// REQUEST / RESULT
// =============================================================================

// Request describes the quote context to price.
type Request struct {
	PropertyID pricing.PropertyID
	LeaseState pricing.LeaseState

	// InventoryID is the unit the quote is for; optional for
	// property-wide fee previews.
	InventoryID *pricing.InventoryID

	// InventoryAmenities are the amenity ids of the quoted unit, used by
	// concession amenity criteria.
	InventoryAmenities []pricing.AmenityID

	// SelectedTermIDs are the lease terms already chosen on the quote.
	// Empty means all of the property's terms participate.
	SelectedTermIDs []pricing.LeaseTermID

	// Selection carries prior agent choices: fee amount overrides and
	// overwritten base rents.
	Selection *pricing.QuoteSelection
}

// Quote is one priced quote: a fee list per billing period plus the rent
// adjustment envelope per lease term.
type Quote struct {
	ID         uuid.UUID
	PropertyID pricing.PropertyID
	LeaseState pricing.LeaseState
	CreatedAt  time.Time

	Periods []pricing.PeriodFees

	// LeaseTerms are the selected terms with their matched concessions
	// attached.
	LeaseTerms []pricing.LeaseTerm

	TermAdjustments map[pricing.LeaseTermID]pricing.LeaseTermAdjustment
}

// =============================================================================
// PRICING
// =============================================================================

// PriceQuote resolves the full fee and concession picture for a quote.
// Configuration errors from the fee graph abort the call; see
// pricing.IsConfigurationError.
func (e *Engine) PriceQuote(ctx context.Context, req Request) (*Quote, error) {
	snap, err := e.store.SnapshotForProperty(ctx, req.PropertyID, req.LeaseState)
	if err != nil {
		return nil, err
	}

	now := e.now()
	inventory := findInventory(snap, req.InventoryID)
	terms := selectTerms(snap.LeaseTerms, req.SelectedTermIDs)

	// Concessions attach to lease terms before the adjuster runs; the
	// adjuster itself has no notion of "active".
	for i := range terms {
		terms[i].Concessions = pricing.FilterActiveConcessions(
			now, terms[i], snap.Concessions, req.InventoryAmenities, inventory)
	}

	in := snap.ResolveInputForPeriod(pricing.PeriodMonth, terms)
	periods, err := pricing.ResolveAllPeriods(in, req.Selection)
	if err != nil {
		e.logger.Warn("quote pricing failed",
			zap.String("property", string(req.PropertyID)),
			zap.Error(err))
		return nil, err
	}

	attachFeeConcessions(periods, now, terms, snap.Concessions, req.InventoryAmenities, inventory)

	adjustments := make(map[pricing.LeaseTermID]pricing.LeaseTermAdjustment, len(terms))
	for _, term := range terms {
		adjustments[term.ID] = pricing.CalculateLeaseTermAdjustments(term, term.AdjustedMarketRent, req.Selection)
	}

	quote := &Quote{
		ID:              uuid.New(),
		PropertyID:      req.PropertyID,
		LeaseState:      req.LeaseState,
		CreatedAt:       now,
		Periods:         periods,
		LeaseTerms:      terms,
		TermAdjustments: adjustments,
	}

	e.logger.Debug("quote priced",
		zap.String("quote", quote.ID.String()),
		zap.String("property", string(req.PropertyID)),
		zap.Int("lease_terms", len(terms)),
		zap.Int("monthly_fees", len(periods[0].Fees)))

	return quote, nil
}

// attachFeeConcessions attaches the matcher output to every resolved fee:
// the union, deduplicated by id, of the concessions matched across the
// quote's lease terms.
func attachFeeConcessions(periods []pricing.PeriodFees, now time.Time, terms []pricing.LeaseTerm, concessions []pricing.Concession, amenities []pricing.AmenityID, inventory *pricing.Inventory) {
	matched := make([]pricing.Concession, 0)
	seen := make(map[pricing.ConcessionID]bool)
	for _, term := range terms {
		for _, c := range pricing.FilterActiveConcessions(now, term, concessions, amenities, inventory) {
			if !seen[c.ID] {
				seen[c.ID] = true
				matched = append(matched, c)
			}
		}
	}
	if len(matched) == 0 {
		return
	}
	for p := range periods {
		for i := range periods[p].Fees {
			periods[p].Fees[i].Concessions = append([]pricing.Concession(nil), matched...)
		}
	}
}

func findInventory(snap *pricing.Snapshot, id *pricing.InventoryID) *pricing.Inventory {
	if id == nil {
		return nil
	}
	for i := range snap.Inventories {
		if snap.Inventories[i].ID == *id {
			return &snap.Inventories[i]
		}
	}
	return nil
}

// selectTerms returns the requested terms, or all terms when no selection
// was made. The result is a copy; attaching concessions never mutates the
// snapshot.
func selectTerms(all []pricing.LeaseTerm, ids []pricing.LeaseTermID) []pricing.LeaseTerm {
	if len(ids) == 0 {
		return append([]pricing.LeaseTerm(nil), all...)
	}
	want := make(map[pricing.LeaseTermID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []pricing.LeaseTerm
	for _, term := range all {
		if want[term.ID] {
			out = append(out, term)
		}
	}
	return out
}
