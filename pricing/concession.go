/*
concession.go - Concession matching

PURPOSE:
  Filters a property's concession set down to the ones applicable to a
  lease term / inventory context: lease-name membership, lease-length
  range, layout, building, amenity overlap, and the active-date window.

PREDICATE SEMANTICS:
  A concession is retained iff ALL dimensions hold. An unset dimension
  matches everything. The date window is inclusive on both bounds and
  open-ended where a bound is nil. The evaluation instant is expected to
  already be normalized to the property timezone by the caller.

  The same predicate backs both the single-term lookup and the batch
  per-term resolution, so the two can never disagree on membership.

SEE ALSO:
  - criteria.go: the typed, load-time-validated matching document
  - adjust.go: consumes the matched baked-into-rent concessions
*/
package pricing

import "time"

// FilterActiveConcessions returns the concessions applicable to the given
// lease term and inventory at the evaluation instant. The result carries
// no ordering guarantee; callers treat it as a set.
func FilterActiveConcessions(now time.Time, term LeaseTerm, concessions []Concession, inventoryAmenities []AmenityID, inventory *Inventory) []Concession {
	var matched []Concession
	for _, c := range concessions {
		if ConcessionApplies(now, term, c, inventoryAmenities, inventory) {
			matched = append(matched, c)
		}
	}
	return matched
}

// MatchConcessionsForTerms resolves concessions for several lease terms at
// once. Membership decisions are identical to per-term
// FilterActiveConcessions calls by construction.
func MatchConcessionsForTerms(now time.Time, terms []LeaseTerm, concessions []Concession, inventoryAmenities []AmenityID, inventory *Inventory) map[LeaseTermID][]Concession {
	out := make(map[LeaseTermID][]Concession, len(terms))
	for _, term := range terms {
		out[term.ID] = FilterActiveConcessions(now, term, concessions, inventoryAmenities, inventory)
	}
	return out
}

// ConcessionApplies is the single matching predicate. Pure; no side
// effects.
func ConcessionApplies(now time.Time, term LeaseTerm, c Concession, inventoryAmenities []AmenityID, inventory *Inventory) bool {
	crit := c.Criteria

	if len(crit.LeaseNames) > 0 && !containsLeaseName(crit.LeaseNames, term.LeaseNameID) {
		return false
	}
	if crit.MinLeaseLength != nil && term.TermLength < *crit.MinLeaseLength {
		return false
	}
	if crit.MaxLeaseLength != nil && term.TermLength > *crit.MaxLeaseLength {
		return false
	}
	if len(crit.Layouts) > 0 {
		if inventory == nil || !containsLayout(crit.Layouts, inventory.LayoutID) {
			return false
		}
	}
	if len(crit.Buildings) > 0 {
		if inventory == nil || !containsBuilding(crit.Buildings, inventory.BuildingID) {
			return false
		}
	}
	if len(crit.Amenities) > 0 && !amenityOverlap(crit.Amenities, inventoryAmenities) {
		return false
	}

	// Validity window, inclusive on both bounds.
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return false
	}

	return true
}

func containsLeaseName(set []LeaseNameID, id LeaseNameID) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

func containsLayout(set []LayoutID, id LayoutID) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

func containsBuilding(set []BuildingID, id BuildingID) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

func amenityOverlap(set []AmenityID, have []AmenityID) bool {
	for _, want := range set {
		for _, h := range have {
			if want == h {
				return true
			}
		}
	}
	return false
}
