package pricing

import "fmt"

// =============================================================================
// FEE KEY - Structured identity for resolved fee instances
// =============================================================================

// KeyKind discriminates the three ways a resolved fee instance comes into
// existence during a run.
type KeyKind uint8

const (
	// KeyPlain identifies a first-level fee resolved under its own id.
	KeyPlain KeyKind = iota

	// KeyGroupExpansion identifies an instance produced by fanning an
	// inventoryGroup fee out into one instance per matching group.
	KeyGroupExpansion

	// KeyNestedChild identifies a child fee disambiguated by the parent
	// instance it was reached through and its position in the parent's
	// association list.
	KeyNestedChild
)

// FeeKey identifies one resolved fee instance within a resolution run.
// It is comparable and used directly as the arena index key, so the same
// fee reached twice along the same path collapses to a single instance
// while distinct paths stay distinct.
type FeeKey struct {
	Kind  KeyKind
	FeeID FeeID

	// GroupID is set for KeyGroupExpansion.
	GroupID InventoryGroupID

	// ParentID and Index are set for KeyNestedChild. ParentID is the
	// rendered id of the parent instance.
	ParentID string
	Index    int
}

// PlainKey returns the key for a first-level fee instance.
func PlainKey(feeID FeeID) FeeKey {
	return FeeKey{Kind: KeyPlain, FeeID: feeID}
}

// GroupKey returns the key for an inventory-group-expanded instance.
func GroupKey(groupID InventoryGroupID, feeID FeeID) FeeKey {
	return FeeKey{Kind: KeyGroupExpansion, FeeID: feeID, GroupID: groupID}
}

// ChildKey returns the key for a child instance reached through parent.
func ChildKey(feeID FeeID, parent FeeKey, index int) FeeKey {
	return FeeKey{Kind: KeyNestedChild, FeeID: feeID, ParentID: parent.String(), Index: index}
}

// String renders the externally visible id. The formats match what quote
// assembly and the UI key on: a bare fee id, "<groupId>--<feeId>" for
// group expansions, and "<feeId>--<parentId>>><index>" for nested children.
func (k FeeKey) String() string {
	switch k.Kind {
	case KeyGroupExpansion:
		return fmt.Sprintf("%s--%s", k.GroupID, k.FeeID)
	case KeyNestedChild:
		return fmt.Sprintf("%s--%s>>%d", k.FeeID, k.ParentID, k.Index)
	default:
		return string(k.FeeID)
	}
}
