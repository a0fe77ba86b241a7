/*
Package factory provides JSON to Go fee-catalog conversion.

PURPOSE:
  Converts JSON catalog documents into pricing types. This enables fee
  configuration without code changes - property managers can define fee
  schedules in JSON, and the factory creates the proper Go structs.

WHY JSON?
  - Non-developers can modify fee schedules
  - Easy integration with admin UI
  - Version control for catalog definitions
  - Database storage of catalog configs

JSON SCHEMA:
  {
    "propertyId": "sunset-ridge",
    "fees": [
      {
        "id": "parking",
        "displayName": "Reserved Parking",
        "type": "service",
        "servicePeriod": "month",
        "absolutePrice": "100",
        "quoteSectionName": "Parking"
      }
    ],
    "associations": [
      {"primaryFee": "parking", "associatedFee": "parking-deposit"}
    ],
    "inventoryGroups": [...],
    "inventories": [...],
    "leaseTerms": [...],
    "amenityPrices": [...],
    "concessions": [
      {
        "id": "summer",
        "absoluteAdjustment": "-100",
        "bakedIntoAppliedFee": true,
        "matchingCriteria": {"minLeaseLength": 6}
      }
    ]
  }

KEY FEATURES:
  - Validates JSON structure and monetary strings
  - Validates matching criteria once at parse time
  - Checks association edges against the defined fee set
  - Rejects duplicate fee ids

USAGE:
  catalog, err := factory.ParseCatalog(jsonStr)
  if err != nil { ... }
  store.ReplaceCatalog(ctx, catalog)

SEE ALSO:
  - pricing/types.go: target types
  - pricing/criteria.go: matching-criteria validation
  - store/sqlite: persists the parsed catalog
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// CatalogJSON is the JSON representation of a property fee catalog.
type CatalogJSON struct {
	PropertyID      string               `json:"propertyId"`
	Fees            []FeeJSON            `json:"fees"`
	Associations    []AssociationJSON    `json:"associations,omitempty"`
	InventoryGroups []InventoryGroupJSON `json:"inventoryGroups,omitempty"`
	Inventories     []InventoryJSON      `json:"inventories,omitempty"`
	LeaseTerms      []LeaseTermJSON      `json:"leaseTerms,omitempty"`
	AmenityPrices   []AmenityPriceJSON   `json:"amenityPrices,omitempty"`
	Concessions     []ConcessionJSON     `json:"concessions,omitempty"`
}

// FeeJSON is the JSON representation of a fee. Monetary fields are strings
// to keep decimal precision out of float64 territory.
type FeeJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`

	ServicePeriod string `json:"servicePeriod,omitempty"`

	RelativePrice        string `json:"relativePrice,omitempty"`
	AbsolutePrice        string `json:"absolutePrice,omitempty"`
	RelativeDefaultPrice string `json:"relativeDefaultPrice,omitempty"`
	AbsoluteDefaultPrice string `json:"absoluteDefaultPrice,omitempty"`

	PriceFloorCeiling bool `json:"priceFloorCeiling,omitempty"`

	QuoteSectionName   string `json:"quoteSectionName,omitempty"`
	MaxQuantityInQuote int    `json:"maxQuantityInQuote,omitempty"`

	LeaseState           string `json:"leaseState,omitempty"`
	RenewalLetterDisplay bool   `json:"renewalLetterDisplay,omitempty"`
	ExternalChargeCode   string `json:"externalChargeCode,omitempty"`
}

// AssociationJSON is a primary -> associated dependency edge.
type AssociationJSON struct {
	PrimaryFee    string `json:"primaryFee"`
	AssociatedFee string `json:"associatedFee"`
	IsAdditional  bool   `json:"isAdditional,omitempty"`
}

// InventoryGroupJSON is the JSON representation of an inventory group.
type InventoryGroupJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	FeeID       string `json:"feeId,omitempty"`
	LeaseNameID string `json:"leaseNameId,omitempty"`

	BasePriceMonthly string `json:"basePriceMonthly,omitempty"`
	BasePriceWeekly  string `json:"basePriceWeekly,omitempty"`
	BasePriceDaily   string `json:"basePriceDaily,omitempty"`
	BasePriceHourly  string `json:"basePriceHourly,omitempty"`
}

// InventoryJSON is the JSON representation of a rentable unit.
type InventoryJSON struct {
	ID              string `json:"id"`
	GroupID         string `json:"groupId"`
	ParentInventory string `json:"parentInventory,omitempty"`
	LayoutID        string `json:"layoutId,omitempty"`
	BuildingID      string `json:"buildingId,omitempty"`
	MarketRent      string `json:"marketRent,omitempty"`
	PooledQuantity  int    `json:"pooledQuantity,omitempty"`
}

// LeaseTermJSON is the JSON representation of an offered lease term.
type LeaseTermJSON struct {
	ID                 string `json:"id"`
	TermLength         int    `json:"termLength"`
	Period             string `json:"period,omitempty"`
	LeaseNameID        string `json:"leaseNameId,omitempty"`
	AdjustedMarketRent string `json:"adjustedMarketRent"`
}

// AmenityPriceJSON is a per-group amenity price delta.
type AmenityPriceJSON struct {
	GroupID       string `json:"groupId"`
	AmenityID     string `json:"amenityId"`
	RelativePrice string `json:"relativePrice,omitempty"`
	AbsolutePrice string `json:"absolutePrice,omitempty"`
}

// ConcessionJSON is the JSON representation of a concession. The matching
// criteria document is embedded raw and validated during parsing.
type ConcessionJSON struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`

	RelativeAdjustment string `json:"relativeAdjustment,omitempty"`
	AbsoluteAdjustment string `json:"absoluteAdjustment,omitempty"`
	VariableAdjustment bool   `json:"variableAdjustment,omitempty"`

	Recurring             bool   `json:"recurring,omitempty"`
	RecurringCount        int    `json:"recurringCount,omitempty"`
	NonRecurringAppliedAt string `json:"nonRecurringAppliedAt,omitempty"`

	BakedIntoAppliedFee    bool `json:"bakedIntoAppliedFee,omitempty"`
	HideInSelfService      bool `json:"hideInSelfService,omitempty"`
	AdjustmentFloorCeiling bool `json:"adjustmentFloorCeiling,omitempty"`

	StartDate string `json:"startDate,omitempty"` // RFC 3339
	EndDate   string `json:"endDate,omitempty"`

	MatchingCriteria json.RawMessage `json:"matchingCriteria,omitempty"`
}

// =============================================================================
// CATALOG FACTORY
// =============================================================================

// ParseCatalog parses a JSON document into a full property snapshot.
func ParseCatalog(jsonStr string) (*pricing.Snapshot, error) {
	var cj CatalogJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	return FromJSON(cj)
}

// FromJSON converts CatalogJSON to a pricing.Snapshot.
func FromJSON(cj CatalogJSON) (*pricing.Snapshot, error) {
	if cj.PropertyID == "" {
		return nil, fmt.Errorf("catalog missing propertyId")
	}

	snap := &pricing.Snapshot{PropertyID: pricing.PropertyID(cj.PropertyID)}

	feeIDs := make(map[pricing.FeeID]bool, len(cj.Fees))
	for _, fj := range cj.Fees {
		fee, err := parseFee(fj)
		if err != nil {
			return nil, err
		}
		if feeIDs[fee.ID] {
			return nil, fmt.Errorf("fee %s: duplicate id", fee.ID)
		}
		feeIDs[fee.ID] = true
		snap.Fees = append(snap.Fees, fee)
	}

	for _, aj := range cj.Associations {
		primary := pricing.FeeID(aj.PrimaryFee)
		associated := pricing.FeeID(aj.AssociatedFee)
		if !feeIDs[primary] {
			return nil, fmt.Errorf("association %s -> %s: unknown primary fee", aj.PrimaryFee, aj.AssociatedFee)
		}
		if !feeIDs[associated] {
			return nil, fmt.Errorf("association %s -> %s: unknown associated fee", aj.PrimaryFee, aj.AssociatedFee)
		}
		snap.AssociatedFees = append(snap.AssociatedFees, pricing.AssociatedFee{
			PrimaryFee:    primary,
			AssociatedFee: associated,
			IsAdditional:  aj.IsAdditional,
		})
	}

	for _, gj := range cj.InventoryGroups {
		group, err := parseGroup(gj, feeIDs)
		if err != nil {
			return nil, err
		}
		snap.InventoryGroups = append(snap.InventoryGroups, group)
	}

	for _, ij := range cj.Inventories {
		inv, err := parseInventory(ij)
		if err != nil {
			return nil, err
		}
		snap.Inventories = append(snap.Inventories, inv)
	}

	for _, tj := range cj.LeaseTerms {
		term, err := parseLeaseTerm(tj)
		if err != nil {
			return nil, err
		}
		snap.LeaseTerms = append(snap.LeaseTerms, term)
	}

	for _, aj := range cj.AmenityPrices {
		ap, err := parseAmenityPrice(aj)
		if err != nil {
			return nil, err
		}
		snap.AmenityPrices = append(snap.AmenityPrices, ap)
	}

	for _, kj := range cj.Concessions {
		concession, err := parseConcession(kj)
		if err != nil {
			return nil, err
		}
		snap.Concessions = append(snap.Concessions, concession)
	}

	return snap, nil
}

// =============================================================================
// FIELD PARSERS
// =============================================================================

func parseFee(fj FeeJSON) (pricing.Fee, error) {
	if fj.ID == "" {
		return pricing.Fee{}, fmt.Errorf("fee missing id")
	}

	feeType, err := parseFeeType(fj.Type)
	if err != nil {
		return pricing.Fee{}, fmt.Errorf("fee %s: %w", fj.ID, err)
	}
	period, err := parseServicePeriod(fj.ServicePeriod)
	if err != nil {
		return pricing.Fee{}, fmt.Errorf("fee %s: %w", fj.ID, err)
	}
	leaseState, err := parseLeaseState(fj.LeaseState)
	if err != nil {
		return pricing.Fee{}, fmt.Errorf("fee %s: %w", fj.ID, err)
	}

	fee := pricing.Fee{
		ID:                   pricing.FeeID(fj.ID),
		Name:                 fj.Name,
		DisplayName:          fj.DisplayName,
		Type:                 feeType,
		ServicePeriod:        period,
		PriceFloorCeiling:    fj.PriceFloorCeiling,
		QuoteSectionName:     fj.QuoteSectionName,
		MaxQuantityInQuote:   fj.MaxQuantityInQuote,
		LeaseState:           leaseState,
		RenewalLetterDisplay: fj.RenewalLetterDisplay,
		ExternalChargeCode:   fj.ExternalChargeCode,
	}

	if fee.RelativePrice, err = parseOptionalDecimal(fj.RelativePrice); err != nil {
		return pricing.Fee{}, fmt.Errorf("fee %s: relativePrice: %w", fj.ID, err)
	}
	if fee.AbsolutePrice, err = parseOptionalDecimal(fj.AbsolutePrice); err != nil {
		return pricing.Fee{}, fmt.Errorf("fee %s: absolutePrice: %w", fj.ID, err)
	}
	if fee.RelativeDefaultPrice, err = parseOptionalDecimal(fj.RelativeDefaultPrice); err != nil {
		return pricing.Fee{}, fmt.Errorf("fee %s: relativeDefaultPrice: %w", fj.ID, err)
	}
	if fee.AbsoluteDefaultPrice, err = parseOptionalDecimal(fj.AbsoluteDefaultPrice); err != nil {
		return pricing.Fee{}, fmt.Errorf("fee %s: absoluteDefaultPrice: %w", fj.ID, err)
	}
	return fee, nil
}

func parseGroup(gj InventoryGroupJSON, feeIDs map[pricing.FeeID]bool) (pricing.InventoryGroup, error) {
	if gj.ID == "" {
		return pricing.InventoryGroup{}, fmt.Errorf("inventory group missing id")
	}
	if gj.FeeID != "" && !feeIDs[pricing.FeeID(gj.FeeID)] {
		return pricing.InventoryGroup{}, fmt.Errorf("inventory group %s: unknown fee %s", gj.ID, gj.FeeID)
	}

	group := pricing.InventoryGroup{
		ID:          pricing.InventoryGroupID(gj.ID),
		Name:        gj.Name,
		FeeID:       pricing.FeeID(gj.FeeID),
		LeaseNameID: pricing.LeaseNameID(gj.LeaseNameID),
	}

	var err error
	if group.BasePriceMonthly, err = parseDecimalDefaultZero(gj.BasePriceMonthly); err != nil {
		return pricing.InventoryGroup{}, fmt.Errorf("inventory group %s: basePriceMonthly: %w", gj.ID, err)
	}
	if group.BasePriceWeekly, err = parseDecimalDefaultZero(gj.BasePriceWeekly); err != nil {
		return pricing.InventoryGroup{}, fmt.Errorf("inventory group %s: basePriceWeekly: %w", gj.ID, err)
	}
	if group.BasePriceDaily, err = parseDecimalDefaultZero(gj.BasePriceDaily); err != nil {
		return pricing.InventoryGroup{}, fmt.Errorf("inventory group %s: basePriceDaily: %w", gj.ID, err)
	}
	if group.BasePriceHourly, err = parseDecimalDefaultZero(gj.BasePriceHourly); err != nil {
		return pricing.InventoryGroup{}, fmt.Errorf("inventory group %s: basePriceHourly: %w", gj.ID, err)
	}
	return group, nil
}

func parseInventory(ij InventoryJSON) (pricing.Inventory, error) {
	if ij.ID == "" {
		return pricing.Inventory{}, fmt.Errorf("inventory missing id")
	}
	inv := pricing.Inventory{
		ID:             pricing.InventoryID(ij.ID),
		GroupID:        pricing.InventoryGroupID(ij.GroupID),
		LayoutID:       pricing.LayoutID(ij.LayoutID),
		BuildingID:     pricing.BuildingID(ij.BuildingID),
		PooledQuantity: ij.PooledQuantity,
	}
	if ij.ParentInventory != "" {
		parent := pricing.InventoryID(ij.ParentInventory)
		inv.ParentInventory = &parent
	}
	var err error
	if inv.MarketRent, err = parseDecimalDefaultZero(ij.MarketRent); err != nil {
		return pricing.Inventory{}, fmt.Errorf("inventory %s: marketRent: %w", ij.ID, err)
	}
	return inv, nil
}

func parseLeaseTerm(tj LeaseTermJSON) (pricing.LeaseTerm, error) {
	if tj.ID == "" {
		return pricing.LeaseTerm{}, fmt.Errorf("lease term missing id")
	}
	if tj.TermLength <= 0 {
		return pricing.LeaseTerm{}, fmt.Errorf("lease term %s: termLength must be positive", tj.ID)
	}
	period, err := parseServicePeriod(tj.Period)
	if err != nil {
		return pricing.LeaseTerm{}, fmt.Errorf("lease term %s: %w", tj.ID, err)
	}
	if period == pricing.PeriodNone {
		period = pricing.PeriodMonth
	}

	term := pricing.LeaseTerm{
		ID:          pricing.LeaseTermID(tj.ID),
		TermLength:  tj.TermLength,
		Period:      period,
		LeaseNameID: pricing.LeaseNameID(tj.LeaseNameID),
	}
	if term.AdjustedMarketRent, err = parseDecimalDefaultZero(tj.AdjustedMarketRent); err != nil {
		return pricing.LeaseTerm{}, fmt.Errorf("lease term %s: adjustedMarketRent: %w", tj.ID, err)
	}
	return term, nil
}

func parseAmenityPrice(aj AmenityPriceJSON) (pricing.AmenityPrice, error) {
	ap := pricing.AmenityPrice{
		GroupID:   pricing.InventoryGroupID(aj.GroupID),
		AmenityID: pricing.AmenityID(aj.AmenityID),
	}
	var err error
	if ap.RelativePrice, err = parseOptionalDecimal(aj.RelativePrice); err != nil {
		return pricing.AmenityPrice{}, fmt.Errorf("amenity price %s/%s: relativePrice: %w", aj.GroupID, aj.AmenityID, err)
	}
	if ap.AbsolutePrice, err = parseOptionalDecimal(aj.AbsolutePrice); err != nil {
		return pricing.AmenityPrice{}, fmt.Errorf("amenity price %s/%s: absolutePrice: %w", aj.GroupID, aj.AmenityID, err)
	}
	return ap, nil
}

func parseConcession(kj ConcessionJSON) (pricing.Concession, error) {
	if kj.ID == "" {
		return pricing.Concession{}, fmt.Errorf("concession missing id")
	}

	c := pricing.Concession{
		ID:                     pricing.ConcessionID(kj.ID),
		DisplayName:            kj.DisplayName,
		VariableAdjustment:     kj.VariableAdjustment,
		Recurring:              kj.Recurring,
		RecurringCount:         kj.RecurringCount,
		NonRecurringAppliedAt:  kj.NonRecurringAppliedAt,
		BakedIntoAppliedFee:    kj.BakedIntoAppliedFee,
		HideInSelfService:      kj.HideInSelfService,
		AdjustmentFloorCeiling: kj.AdjustmentFloorCeiling,
	}

	var err error
	if c.RelativeAdjustment, err = parseOptionalDecimal(kj.RelativeAdjustment); err != nil {
		return pricing.Concession{}, fmt.Errorf("concession %s: relativeAdjustment: %w", kj.ID, err)
	}
	if c.AbsoluteAdjustment, err = parseOptionalDecimal(kj.AbsoluteAdjustment); err != nil {
		return pricing.Concession{}, fmt.Errorf("concession %s: absoluteAdjustment: %w", kj.ID, err)
	}
	if c.StartDate, err = parseOptionalTime(kj.StartDate); err != nil {
		return pricing.Concession{}, fmt.Errorf("concession %s: startDate: %w", kj.ID, err)
	}
	if c.EndDate, err = parseOptionalTime(kj.EndDate); err != nil {
		return pricing.Concession{}, fmt.Errorf("concession %s: endDate: %w", kj.ID, err)
	}

	// Criteria validation happens here, once, not per evaluation.
	if c.Criteria, err = pricing.ParseMatchingCriteria(kj.MatchingCriteria); err != nil {
		return pricing.Concession{}, fmt.Errorf("concession %s: %w", kj.ID, err)
	}
	return c, nil
}

// =============================================================================
// SCALAR PARSERS
// =============================================================================

func parseFeeType(s string) (pricing.FeeType, error) {
	switch pricing.FeeType(s) {
	case pricing.FeeTypeApplication, pricing.FeeTypeHoldDeposit, pricing.FeeTypeDeposit,
		pricing.FeeTypeService, pricing.FeeTypeInventoryGroup, pricing.FeeTypeOther:
		return pricing.FeeType(s), nil
	case "":
		return pricing.FeeTypeOther, nil
	default:
		return "", fmt.Errorf("unknown fee type %q", s)
	}
}

func parseServicePeriod(s string) (pricing.ServicePeriod, error) {
	switch pricing.ServicePeriod(s) {
	case pricing.PeriodMonth, pricing.PeriodWeek, pricing.PeriodDay,
		pricing.PeriodHour, pricing.PeriodOneTime, pricing.PeriodNone:
		return pricing.ServicePeriod(s), nil
	default:
		return "", fmt.Errorf("unknown service period %q", s)
	}
}

func parseLeaseState(s string) (pricing.LeaseState, error) {
	switch pricing.LeaseState(s) {
	case pricing.LeaseStateNew, pricing.LeaseStateRenewal, pricing.LeaseStateAny:
		return pricing.LeaseState(s), nil
	default:
		return "", fmt.Errorf("unknown lease state %q", s)
	}
}

func parseOptionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseDecimalDefaultZero(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
