/*
snapshot.go - The fee graph store boundary

PURPOSE:
  Defines the single I/O boundary of the engine. A Snapshot is one upfront
  read of everything a property's pricing run consumes; after it is
  fetched, resolution is a pure computation that never blocks.

IMPLEMENTATIONS:
  - pricing/store/memory.go: in-memory (tests, demos)
  - store/sqlite/sqlite.go:  SQLite-backed catalog store

SEE ALSO:
  - resolver.go: consumes Snapshot slices via ResolveInput
  - quoting/engine.go: fetches the snapshot and drives resolution
*/
package pricing

import "context"

// Snapshot is a read-only copy of a property's pricing data. Lease-state
// filtering of fees and association edges happens at fetch time, so the
// resolver never re-checks it.
type Snapshot struct {
	PropertyID PropertyID
	LeaseState LeaseState

	Fees            []Fee
	AssociatedFees  []AssociatedFee
	InventoryGroups []InventoryGroup
	Inventories     []Inventory
	LeaseTerms      []LeaseTerm
	AmenityPrices   []AmenityPrice
	Concessions     []Concession
}

// SnapshotStore supplies property snapshots. It is the only collaborator
// the engine talks to; retries, if any, belong behind this interface.
type SnapshotStore interface {
	// SnapshotForProperty returns the property's pricing data filtered by
	// lease-state compatibility with the requested context. Returns
	// ErrPropertyNotFound when no catalog exists.
	SnapshotForProperty(ctx context.Context, propertyID PropertyID, state LeaseState) (*Snapshot, error)
}

// FirstLevelFees derives the resolution seed: quotable or carrier fees
// that no association edge points at. Fees reachable only as children
// enter the frontier through their parents.
func (s *Snapshot) FirstLevelFees() []Fee {
	isChild := make(map[FeeID]bool, len(s.AssociatedFees))
	for _, e := range s.AssociatedFees {
		isChild[e.AssociatedFee] = true
	}
	var out []Fee
	for _, f := range s.Fees {
		if !isChild[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

// ResolveInputForPeriod assembles a ResolveInput over this snapshot.
func (s *Snapshot) ResolveInputForPeriod(period ServicePeriod, selectedTerms []LeaseTerm) ResolveInput {
	return ResolveInput{
		FirstLevelFees:     s.FirstLevelFees(),
		Fees:               s.Fees,
		AssociatedFees:     s.AssociatedFees,
		InventoryGroups:    s.InventoryGroups,
		Inventories:        s.Inventories,
		AmenityPrices:      s.AmenityPrices,
		AllLeaseTerms:      s.LeaseTerms,
		SelectedLeaseTerms: selectedTerms,
		Period:             period,
	}
}
