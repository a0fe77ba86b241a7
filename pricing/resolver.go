/*
resolver.go - Fee-graph frontier expansion

PURPOSE:
  Expands a set of first-level fees through the fee-association graph into
  a flat, deduplicated, ordered list of priced fee instances for one
  billing period. inventoryGroup fees fan out into one instance per
  matching inventory group; every other fee type prices against its
  nearest resolved ancestor.

ALGORITHM:
  1. Seed the frontier with the first-level fees.
  2. Until the frontier is empty: price every quotable frontier fee
     (inventory-group expansion or plain pricing), then schedule its
     association children as the next frontier. Fees without a quote
     section are not priced but still carry their children through.
  3. Instances live in an append-only arena indexed by FeeKey; parent ->
     child links live in a separate index updated by key at child-emission
     time, so no in-progress instance is searched and mutated mid-walk.
  4. Re-reaching the same key overwrites the instance (last write wins);
     price computation is deterministic given the same parent.
  5. Output ordering: core fees by display name, then additional fees by
     display name.

CYCLES:
  The association graph is acyclic by contract. Each branch carries its
  ancestor fee ids; revisiting one fails with a CycleError instead of
  looping forever on bad data.

FAILURE SEMANTICS:
  Configuration errors (relative price without a basis, deposit anchoring
  a group, cycles) abort the whole period resolution. Wrong-period fees
  and fully filtered-out group expansions are silent omissions.

SEE ALSO:
  - price.go: the per-fee amount computation
  - key.go: structured instance identity
  - period.go: one resolution run per billing period
*/
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESOLVE INPUT - One property snapshot slice plus the run parameters
// =============================================================================

// ResolveInput carries everything one resolution run reads. All slices are
// treated as read-only.
type ResolveInput struct {
	// FirstLevelFees seed the frontier. They must already be filtered for
	// lease-state compatibility with the requested context.
	FirstLevelFees []Fee

	// Fees is the full catalog, used to follow association edges.
	Fees []Fee

	AssociatedFees  []AssociatedFee
	InventoryGroups []InventoryGroup
	Inventories     []Inventory
	AmenityPrices   []AmenityPrice

	// AllLeaseTerms is the property's full term set; SelectedLeaseTerms
	// are the terms already chosen for the quote, used by the
	// inventory-group compatibility check.
	AllLeaseTerms      []LeaseTerm
	SelectedLeaseTerms []LeaseTerm

	Period ServicePeriod
}

// ResolveFees expands the first-level fees into the complete priced fee
// list for in.Period. See the file header for the algorithm.
func ResolveFees(in ResolveInput) ([]ResolvedFee, error) {
	r := newResolver(in)

	frontier := make([]frontierEntry, 0, len(in.FirstLevelFees))
	for _, fee := range in.FirstLevelFees {
		frontier = append(frontier, frontierEntry{
			fee:        fee,
			originalID: fee.ID,
			key:        PlainKey(fee.ID),
			firstFee:   true,
			path:       []FeeID{fee.ID},
		})
	}

	for len(frontier) > 0 {
		var next []frontierEntry
		for _, entry := range frontier {
			expansions, err := r.resolveEntry(entry)
			if err != nil {
				return nil, err
			}
			for _, exp := range expansions {
				children, err := r.scheduleChildren(entry, exp)
				if err != nil {
					return nil, err
				}
				next = append(next, children...)
			}
		}
		frontier = next
	}

	return r.finish(), nil
}

// =============================================================================
// RESOLVER STATE
// =============================================================================

// frontierEntry is one fee awaiting resolution, with the branch context it
// was reached through.
type frontierEntry struct {
	fee        Fee
	originalID FeeID
	key        FeeKey

	parent            *FeeKey
	parentDisplayName string

	isAdditional     bool
	firstFee         bool
	hasGroupAncestor bool

	// path holds the fee ids on this branch, self included, for cycle
	// detection.
	path []FeeID
}

// expansion is a resolved anchor children hang off. Carrier-only fees
// (no quote section) produce an expansion without an arena instance so
// their children still reach the nearest priced ancestor.
type expansion struct {
	key      FeeKey
	parent   *FeeKey
	instance bool // key points at an arena instance
}

type resolver struct {
	in ResolveInput

	feesByID         map[FeeID]Fee
	edgesByPrimary   map[FeeID][]AssociatedFee
	groupsByFee      map[FeeID][]InventoryGroup
	invsByGroup      map[InventoryGroupID][]Inventory
	amenitiesByGroup map[InventoryGroupID][]AmenityPrice
	termsByLeaseName map[LeaseNameID][]LeaseTerm

	// Append-only arena plus key index; child links are kept out of the
	// instances until finish() so the walk never mutates a discovered
	// instance in place.
	instances  []ResolvedFee
	index      map[FeeKey]int
	childIndex map[FeeKey][]FeeKey
}

func newResolver(in ResolveInput) *resolver {
	r := &resolver{
		in:               in,
		feesByID:         make(map[FeeID]Fee, len(in.Fees)),
		edgesByPrimary:   make(map[FeeID][]AssociatedFee),
		groupsByFee:      make(map[FeeID][]InventoryGroup),
		invsByGroup:      make(map[InventoryGroupID][]Inventory),
		amenitiesByGroup: make(map[InventoryGroupID][]AmenityPrice),
		termsByLeaseName: make(map[LeaseNameID][]LeaseTerm),
		index:            make(map[FeeKey]int),
		childIndex:       make(map[FeeKey][]FeeKey),
	}
	for _, f := range in.Fees {
		r.feesByID[f.ID] = f
	}
	for _, e := range in.AssociatedFees {
		r.edgesByPrimary[e.PrimaryFee] = append(r.edgesByPrimary[e.PrimaryFee], e)
	}
	for _, g := range in.InventoryGroups {
		if g.FeeID != "" {
			r.groupsByFee[g.FeeID] = append(r.groupsByFee[g.FeeID], g)
		}
	}
	for _, inv := range in.Inventories {
		r.invsByGroup[inv.GroupID] = append(r.invsByGroup[inv.GroupID], inv)
	}
	for _, a := range in.AmenityPrices {
		r.amenitiesByGroup[a.GroupID] = append(r.amenitiesByGroup[a.GroupID], a)
	}
	for _, t := range in.AllLeaseTerms {
		r.termsByLeaseName[t.LeaseNameID] = append(r.termsByLeaseName[t.LeaseNameID], t)
	}
	return r
}

// =============================================================================
// ENTRY RESOLUTION
// =============================================================================

func (r *resolver) resolveEntry(entry frontierEntry) ([]expansion, error) {
	if !entry.fee.Quotable() {
		// Carrier-only: no instance, children pass through to the
		// nearest priced ancestor.
		return []expansion{{key: entry.key, parent: entry.parent}}, nil
	}

	switch entry.fee.Type {
	case FeeTypeInventoryGroup:
		return r.expandInventoryGroup(entry)
	case FeeTypeApplication, FeeTypeHoldDeposit, FeeTypeDeposit, FeeTypeService, FeeTypeOther:
		return r.resolvePlain(entry)
	default:
		return r.resolvePlain(entry)
	}
}

// resolvePlain prices a non-inventoryGroup fee against its nearest
// resolved ancestor and emits one instance, or silently drops it when its
// service period does not apply.
func (r *resolver) resolvePlain(entry frontierEntry) ([]expansion, error) {
	if !entry.fee.AppliesTo(r.in.Period) {
		return nil, nil
	}

	fee := entry.fee

	var parentAmount *decimal.Decimal
	if entry.parent != nil {
		if i, ok := r.index[*entry.parent]; ok {
			amt := r.instances[i].Amount
			parentAmount = &amt
		}
	}

	if fee.RelativePrice != nil {
		if fee.Type == FeeTypeDeposit {
			// A deposit serving as a group anchor cannot price relative
			// to the group it anchors.
			if len(r.groupsByFee[fee.ID]) > 0 {
				return nil, &DepositGroupPricingError{FeeID: fee.ID, DisplayName: fee.DisplayName}
			}
			if entry.firstFee {
				// No parent amount exists by definition; the absolute
				// price is the only usable basis.
				return r.emitPlain(entry, fee.absoluteFallback(), decimal.Zero), nil
			}
			if !entry.hasGroupAncestor || parentAmount == nil {
				return nil, &RelativePriceError{FeeID: fee.ID, DisplayName: fee.DisplayName}
			}
		}
		if parentAmount == nil {
			return nil, &RelativePriceError{FeeID: fee.ID, DisplayName: fee.DisplayName}
		}
	}

	amount, err := ComputePrice(fee, parentAmount)
	if err != nil {
		return nil, err
	}

	basis := decimal.Zero
	if parentAmount != nil {
		basis = *parentAmount
	}
	return r.emitPlain(entry, amount, basis), nil
}

func (r *resolver) emitPlain(entry frontierEntry, amount, parentAmount decimal.Decimal) []expansion {
	fee := entry.fee
	inst := ResolvedFee{
		Key:                  entry.key,
		OriginalID:           entry.originalID,
		DisplayName:          fee.DisplayName,
		QuoteSectionName:     fee.QuoteSectionName,
		ParentFeeDisplayName: entry.parentDisplayName,
		ServicePeriod:        fee.ServicePeriod,
		Price:                amount,
		Amount:               amount,
		Quantity:             1,
		MaxQuantityInQuote:   fee.MaxQuantityInQuote,
		Visible:              true,
		IsAdditional:         entry.isAdditional,
		FirstFee:             entry.firstFee,
		ParentFeeAmount:      parentAmount,
		RenewalLetterDisplay: fee.RenewalLetterDisplay,
		ExternalChargeCode:   fee.ExternalChargeCode,
	}
	r.put(inst)
	if entry.parent != nil {
		r.addChild(*entry.parent, inst.Key)
	}
	return []expansion{{key: inst.Key, parent: entry.parent, instance: true}}
}

// absoluteFallback returns the fee's flat price basis when no parent
// amount can exist.
func (f Fee) absoluteFallback() decimal.Decimal {
	if f.AbsolutePrice != nil {
		return *f.AbsolutePrice
	}
	if f.AbsoluteDefaultPrice != nil {
		return *f.AbsoluteDefaultPrice
	}
	return decimal.Zero
}

// =============================================================================
// INVENTORY GROUP EXPANSION
// =============================================================================

// expandInventoryGroup fans an inventoryGroup fee out into one instance
// per surviving group. A fee whose groups are all filtered out contributes
// nothing quotable and is dropped without error.
func (r *resolver) expandInventoryGroup(entry frontierEntry) ([]expansion, error) {
	var out []expansion
	for _, group := range r.groupsByFee[entry.originalID] {
		if group.LeaseNameID != "" && !r.selectedTermsCompatible(group) {
			continue
		}

		invs := r.invsByGroup[group.ID]
		if len(invs) > 0 && allChildInventories(invs) {
			continue
		}

		base := group.BasePrice(r.in.Period)
		amount, err := ComputePrice(entry.fee, &base)
		if err != nil {
			return nil, err
		}
		amount = amount.Add(r.amenityDelta(group.ID, base))

		minRent, maxRent := rentBounds(invs)

		displayName := group.Name
		if displayName == "" {
			displayName = entry.fee.DisplayName
		}

		inst := ResolvedFee{
			Key:                  GroupKey(group.ID, entry.originalID),
			OriginalID:           entry.originalID,
			DisplayName:          displayName,
			QuoteSectionName:     entry.fee.QuoteSectionName,
			ParentFeeDisplayName: entry.parentDisplayName,
			ServicePeriod:        entry.fee.ServicePeriod,
			Price:                amount,
			Amount:               amount,
			Quantity:             1,
			MaxQuantityInQuote:   entry.fee.MaxQuantityInQuote,
			Visible:              true,
			IsAdditional:         entry.isAdditional,
			FirstFee:             entry.firstFee,
			ParentFeeAmount:      base,
			InventoryGroupID:     group.ID,
			HasInventoryPool:     hasPooledInventory(invs),
			MinRent:              minRent,
			MaxRent:              maxRent,
			RenewalLetterDisplay: entry.fee.RenewalLetterDisplay,
			ExternalChargeCode:   entry.fee.ExternalChargeCode,
		}
		r.put(inst)
		if entry.parent != nil {
			// Group-derived ids supersede the pre-expansion fee id in
			// the parent's children.
			r.addChild(*entry.parent, inst.Key)
		}
		out = append(out, expansion{key: inst.Key, parent: entry.parent, instance: true})
	}
	return out, nil
}

// selectedTermsCompatible reports whether every already-selected lease
// term has a strict (termLength, period, adjustedMarketRent) match among
// the group's own lease terms.
func (r *resolver) selectedTermsCompatible(group InventoryGroup) bool {
	groupTerms := r.termsByLeaseName[group.LeaseNameID]
	for _, selected := range r.in.SelectedLeaseTerms {
		found := false
		for _, gt := range groupTerms {
			if selected.SameRateTriple(gt) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// amenityDelta sums the group's amenity price adjustments against the
// period base amount.
func (r *resolver) amenityDelta(groupID InventoryGroupID, base decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.amenitiesByGroup[groupID] {
		switch {
		case a.RelativePrice != nil:
			total = total.Add(base.Mul(*a.RelativePrice).Div(oneHundred))
		case a.AbsolutePrice != nil:
			total = total.Add(*a.AbsolutePrice)
		}
	}
	return total
}

// allChildInventories reports whether every member inventory is itself a
// child of another unit.
func allChildInventories(invs []Inventory) bool {
	for _, inv := range invs {
		if inv.ParentInventory == nil {
			return false
		}
	}
	return true
}

func hasPooledInventory(invs []Inventory) bool {
	for _, inv := range invs {
		if inv.PooledQuantity > 0 {
			return true
		}
	}
	return false
}

// rentBounds returns the min/max market rent across the group's
// independently priceable inventories, nil when there are none.
func rentBounds(invs []Inventory) (min, max *decimal.Decimal) {
	for _, inv := range invs {
		if inv.ParentInventory != nil {
			continue
		}
		rent := inv.MarketRent
		if min == nil || rent.LessThan(*min) {
			m := rent
			min = &m
		}
		if max == nil || rent.GreaterThan(*max) {
			m := rent
			max = &m
		}
	}
	return min, max
}

// =============================================================================
// FRONTIER SCHEDULING
// =============================================================================

// scheduleChildren turns the association edges of a just-processed fee
// into the next frontier, disambiguating each child's key by the parent
// it was reached through and its position in the edge list.
func (r *resolver) scheduleChildren(entry frontierEntry, exp expansion) ([]frontierEntry, error) {
	edges := r.edgesByPrimary[entry.originalID]
	if len(edges) == 0 {
		return nil, nil
	}

	parentDisplayName := entry.fee.DisplayName
	var parent *FeeKey
	hasGroupAncestor := entry.hasGroupAncestor
	if exp.instance {
		k := exp.key
		parent = &k
		if i, ok := r.index[exp.key]; ok {
			parentDisplayName = r.instances[i].DisplayName
		}
		if exp.key.Kind == KeyGroupExpansion {
			hasGroupAncestor = true
		}
	} else {
		parent = exp.parent
	}

	var next []frontierEntry
	for i, edge := range edges {
		childFee, ok := r.feesByID[edge.AssociatedFee]
		if !ok {
			return nil, &UnknownFeeError{FeeID: edge.AssociatedFee, PrimaryFee: entry.originalID}
		}
		for _, seen := range entry.path {
			if seen == childFee.ID {
				return nil, &CycleError{FeeID: childFee.ID, Path: entry.path}
			}
		}

		path := make([]FeeID, len(entry.path), len(entry.path)+1)
		copy(path, entry.path)
		path = append(path, childFee.ID)

		next = append(next, frontierEntry{
			fee:               childFee,
			originalID:        childFee.ID,
			key:               ChildKey(childFee.ID, exp.key, i),
			parent:            parent,
			parentDisplayName: parentDisplayName,
			isAdditional:      edge.IsAdditional,
			hasGroupAncestor:  hasGroupAncestor,
			path:              path,
		})
	}
	return next, nil
}

// =============================================================================
// ARENA
// =============================================================================

func (r *resolver) put(inst ResolvedFee) {
	if i, ok := r.index[inst.Key]; ok {
		// Same key reached again: metadata last-write-wins, the price is
		// deterministic given the same parent.
		r.instances[i] = inst
		return
	}
	r.index[inst.Key] = len(r.instances)
	r.instances = append(r.instances, inst)
}

func (r *resolver) addChild(parent, child FeeKey) {
	for _, existing := range r.childIndex[parent] {
		if existing == child {
			return
		}
	}
	r.childIndex[parent] = append(r.childIndex[parent], child)
}

// finish materializes the child index into the instances and applies the
// output ordering: core fees by display name, then additional fees by
// display name.
func (r *resolver) finish() []ResolvedFee {
	out := make([]ResolvedFee, len(r.instances))
	copy(out, r.instances)
	for i := range out {
		if children := r.childIndex[out[i].Key]; len(children) > 0 {
			out[i].Children = append([]FeeKey(nil), children...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsAdditional != out[j].IsAdditional {
			return !out[i].IsAdditional
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return out
}
