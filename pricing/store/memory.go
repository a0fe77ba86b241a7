// Package store provides SnapshotStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	snapshots map[pricing.PropertyID]pricing.Snapshot
}

func NewMemory() *Memory {
	return &Memory{snapshots: make(map[pricing.PropertyID]pricing.Snapshot)}
}

// SetSnapshot installs the full catalog for a property, replacing any
// prior one.
func (m *Memory) SetSnapshot(snap pricing.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.PropertyID] = snap
}

// SnapshotForProperty returns a lease-state-filtered copy of the
// property's catalog. The caller owns the copy.
func (m *Memory) SnapshotForProperty(_ context.Context, propertyID pricing.PropertyID, state pricing.LeaseState) (*pricing.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snapshots[propertyID]
	if !ok {
		return nil, pricing.ErrPropertyNotFound
	}

	out := pricing.Snapshot{
		PropertyID:      propertyID,
		LeaseState:      state,
		InventoryGroups: append([]pricing.InventoryGroup(nil), snap.InventoryGroups...),
		Inventories:     append([]pricing.Inventory(nil), snap.Inventories...),
		LeaseTerms:      append([]pricing.LeaseTerm(nil), snap.LeaseTerms...),
		AmenityPrices:   append([]pricing.AmenityPrice(nil), snap.AmenityPrices...),
		Concessions:     append([]pricing.Concession(nil), snap.Concessions...),
	}

	kept := make(map[pricing.FeeID]bool, len(snap.Fees))
	for _, f := range snap.Fees {
		if f.LeaseState.Matches(state) {
			out.Fees = append(out.Fees, f)
			kept[f.ID] = true
		}
	}
	for _, e := range snap.AssociatedFees {
		if kept[e.PrimaryFee] && kept[e.AssociatedFee] {
			out.AssociatedFees = append(out.AssociatedFees, e)
		}
	}
	return &out, nil
}
