package pricing

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// MATCHING CRITERIA - Parsed concession targeting document
// =============================================================================

// MatchingCriteria is the typed form of a concession's stored matching
// document. A nil/empty dimension is an open match; a populated one
// requires membership.
type MatchingCriteria struct {
	LeaseNames []LeaseNameID `json:"leaseNames,omitempty"`
	Layouts    []LayoutID    `json:"layouts,omitempty"`
	Buildings  []BuildingID  `json:"buildings,omitempty"`
	Amenities  []AmenityID   `json:"amenities,omitempty"`

	MinLeaseLength *int `json:"minLeaseLength,omitempty"`
	MaxLeaseLength *int `json:"maxLeaseLength,omitempty"`
}

// ParseMatchingCriteria validates a stored criteria document once at load
// time. Concessions are stored with the document serialized; parsing per
// evaluation is both wasteful and a place for silent drift, so stores call
// this exactly once per concession per snapshot load.
func ParseMatchingCriteria(raw []byte) (MatchingCriteria, error) {
	var c MatchingCriteria
	if len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return MatchingCriteria{}, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	if c.MinLeaseLength != nil && *c.MinLeaseLength < 0 {
		return MatchingCriteria{}, fmt.Errorf("%w: negative minLeaseLength", ErrInvalidCriteria)
	}
	if c.MaxLeaseLength != nil && *c.MaxLeaseLength < 0 {
		return MatchingCriteria{}, fmt.Errorf("%w: negative maxLeaseLength", ErrInvalidCriteria)
	}
	if c.MinLeaseLength != nil && c.MaxLeaseLength != nil && *c.MinLeaseLength > *c.MaxLeaseLength {
		return MatchingCriteria{}, fmt.Errorf("%w: minLeaseLength above maxLeaseLength", ErrInvalidCriteria)
	}
	return c, nil
}
