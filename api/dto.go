/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Monetary values cross the wire as strings ("2950.50"), never JSON
  numbers, so no client is tempted into float arithmetic.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/catalog.go: CatalogJSON, the catalog-import body
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/quoting"
	"github.com/warp/pricing-engine/renewal"
)

// =============================================================================
// QUOTE TYPES
// =============================================================================

// PriceQuoteRequest is the request to price a quote.
type PriceQuoteRequest struct {
	PropertyID string `json:"property_id"`
	LeaseState string `json:"lease_state,omitempty"` // "new", "renewal", "" = both

	InventoryID        string   `json:"inventory_id,omitempty"`
	InventoryAmenities []string `json:"inventory_amenities,omitempty"`

	SelectedTermIDs []string `json:"selected_term_ids,omitempty"`

	// Prior agent choices on the quote being re-priced.
	FeeAmountOverrides map[string]string            `json:"fee_amount_overrides,omitempty"`
	BaseRentOverrides  map[string]BaseRentOverrideDTO `json:"base_rent_overrides,omitempty"`
}

// BaseRentOverrideDTO is a manually overwritten base rent on a lease term.
type BaseRentOverrideDTO struct {
	OriginalBaseRent    string `json:"original_base_rent"`
	OverwrittenBaseRent string `json:"overwritten_base_rent"`
}

// QuoteDTO represents a priced quote in API responses.
type QuoteDTO struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	LeaseState string `json:"lease_state,omitempty"`
	CreatedAt  string `json:"created_at"`

	Periods         []PeriodFeesDTO              `json:"periods"`
	LeaseTerms      []LeaseTermDTO               `json:"lease_terms"`
	TermAdjustments map[string]TermAdjustmentDTO `json:"term_adjustments"`
}

// PeriodFeesDTO is one billing period's resolved fee list.
type PeriodFeesDTO struct {
	Period string           `json:"period"`
	Fees   []ResolvedFeeDTO `json:"fees"`
}

// ResolvedFeeDTO represents one resolved fee instance.
type ResolvedFeeDTO struct {
	ID                   string `json:"id"`
	OriginalFeeID        string `json:"original_fee_id"`
	DisplayName          string `json:"display_name"`
	QuoteSectionName     string `json:"quote_section_name,omitempty"`
	ParentFeeDisplayName string `json:"parent_fee_display_name,omitempty"`
	ServicePeriod        string `json:"service_period,omitempty"`

	Price  string `json:"price"`
	Amount string `json:"amount"`

	Quantity           int `json:"quantity,omitempty"`
	MaxQuantityInQuote int `json:"max_quantity_in_quote,omitempty"`

	Selected     bool `json:"selected,omitempty"`
	IsAdditional bool `json:"is_additional,omitempty"`

	InventoryGroupID string  `json:"inventory_group_id,omitempty"`
	HasInventoryPool bool    `json:"has_inventory_pool,omitempty"`
	MinRent          *string `json:"min_rent,omitempty"`
	MaxRent          *string `json:"max_rent,omitempty"`

	Children []string `json:"children,omitempty"`

	ExternalChargeCode string          `json:"external_charge_code,omitempty"`
	Concessions        []ConcessionDTO `json:"concessions,omitempty"`
}

// LeaseTermDTO represents a lease term with its matched concessions.
type LeaseTermDTO struct {
	ID                 string          `json:"id"`
	TermLength         int             `json:"term_length"`
	Period             string          `json:"period"`
	AdjustedMarketRent string          `json:"adjusted_market_rent"`
	Concessions        []ConcessionDTO `json:"concessions,omitempty"`
}

// TermAdjustmentDTO is the per-term rent envelope.
type TermAdjustmentDTO struct {
	AdjustedMarketRent      string  `json:"adjusted_market_rent"`
	OverwrittenBaseRent     *string `json:"overwritten_base_rent,omitempty"`
	OriginalBaseRent        *string `json:"original_base_rent,omitempty"`
	AllowBaseRentAdjustment bool    `json:"allow_base_rent_adjustment,omitempty"`
	MinBakedFeesAdjustment  *string `json:"min_baked_fees_adjustment,omitempty"`
	MaxBakedFeesAdjustment  *string `json:"max_baked_fees_adjustment,omitempty"`
}

// ConcessionDTO represents a concession in API responses.
type ConcessionDTO struct {
	ID                  string `json:"id"`
	DisplayName         string `json:"display_name,omitempty"`
	RelativeAdjustment  string `json:"relative_adjustment,omitempty"`
	AbsoluteAdjustment  string `json:"absolute_adjustment,omitempty"`
	VariableAdjustment  bool   `json:"variable_adjustment,omitempty"`
	Recurring           bool   `json:"recurring,omitempty"`
	BakedIntoAppliedFee bool   `json:"baked_into_applied_fee,omitempty"`
	HideInSelfService   bool   `json:"hide_in_self_service,omitempty"`
}

// =============================================================================
// CATALOG TYPES
// =============================================================================

// FeeDTO represents a catalog fee.
type FeeDTO struct {
	ID                   string `json:"id"`
	DisplayName          string `json:"display_name"`
	Type                 string `json:"type"`
	ServicePeriod        string `json:"service_period,omitempty"`
	RelativePrice        string `json:"relative_price,omitempty"`
	AbsolutePrice        string `json:"absolute_price,omitempty"`
	QuoteSectionName     string `json:"quote_section_name,omitempty"`
	LeaseState           string `json:"lease_state,omitempty"`
	RenewalLetterDisplay bool   `json:"renewal_letter_display,omitempty"`
}

// =============================================================================
// RENEWAL TYPES
// =============================================================================

// RenewalLetterRequest is the request to build a renewal letter.
type RenewalLetterRequest struct {
	PropertyID         string   `json:"property_id"`
	InventoryID        string   `json:"inventory_id,omitempty"`
	InventoryAmenities []string `json:"inventory_amenities,omitempty"`
	OfferedTermIDs     []string `json:"offered_term_ids,omitempty"`
}

// RenewalLetterDTO represents a renewal offer.
type RenewalLetterDTO struct {
	PropertyID string          `json:"property_id"`
	CreatedAt  string          `json:"created_at"`
	TermOffers []TermOfferDTO  `json:"term_offers"`
	FeeLines   []FeeLineDTO    `json:"fee_lines"`
}

// TermOfferDTO is one offered lease term on a renewal letter.
type TermOfferDTO struct {
	LeaseTermID string  `json:"lease_term_id"`
	TermLength  int     `json:"term_length"`
	Period      string  `json:"period"`
	BaseRent    string  `json:"base_rent"`
	Editable    bool    `json:"editable,omitempty"`
	MinRent     *string `json:"min_rent,omitempty"`
	MaxRent     *string `json:"max_rent,omitempty"`
}

// FeeLineDTO is one displayed fee line on a renewal letter.
type FeeLineDTO struct {
	FeeID       string `json:"fee_id"`
	DisplayName string `json:"display_name"`
	Amount      string `json:"amount"`
	Section     string `json:"section,omitempty"`
}

// =============================================================================
// DOMAIN -> DTO CONVERSION
// =============================================================================

func toQuoteDTO(q *quoting.Quote) QuoteDTO {
	dto := QuoteDTO{
		ID:              q.ID.String(),
		PropertyID:      string(q.PropertyID),
		LeaseState:      string(q.LeaseState),
		CreatedAt:       q.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Periods:         make([]PeriodFeesDTO, 0, len(q.Periods)),
		LeaseTerms:      make([]LeaseTermDTO, 0, len(q.LeaseTerms)),
		TermAdjustments: make(map[string]TermAdjustmentDTO, len(q.TermAdjustments)),
	}

	for _, p := range q.Periods {
		pf := PeriodFeesDTO{Period: string(p.Period), Fees: make([]ResolvedFeeDTO, 0, len(p.Fees))}
		for _, f := range p.Fees {
			pf.Fees = append(pf.Fees, toResolvedFeeDTO(f))
		}
		dto.Periods = append(dto.Periods, pf)
	}

	for _, term := range q.LeaseTerms {
		dto.LeaseTerms = append(dto.LeaseTerms, LeaseTermDTO{
			ID:                 string(term.ID),
			TermLength:         term.TermLength,
			Period:             string(term.Period),
			AdjustedMarketRent: term.AdjustedMarketRent.String(),
			Concessions:        toConcessionDTOs(term.Concessions),
		})
	}

	for id, adj := range q.TermAdjustments {
		dto.TermAdjustments[string(id)] = TermAdjustmentDTO{
			AdjustedMarketRent:      adj.AdjustedMarketRent.String(),
			OverwrittenBaseRent:     decString(adj.OverwrittenBaseRent),
			OriginalBaseRent:        decString(adj.OriginalBaseRent),
			AllowBaseRentAdjustment: adj.AllowBaseRentAdjustment,
			MinBakedFeesAdjustment:  decString(adj.MinBakedFeesAdjustment),
			MaxBakedFeesAdjustment:  decString(adj.MaxBakedFeesAdjustment),
		}
	}

	return dto
}

func toResolvedFeeDTO(f pricing.ResolvedFee) ResolvedFeeDTO {
	dto := ResolvedFeeDTO{
		ID:                   f.ID(),
		OriginalFeeID:        string(f.OriginalID),
		DisplayName:          f.DisplayName,
		QuoteSectionName:     f.QuoteSectionName,
		ParentFeeDisplayName: f.ParentFeeDisplayName,
		ServicePeriod:        string(f.ServicePeriod),
		Price:                f.Price.String(),
		Amount:               f.Amount.String(),
		Quantity:             f.Quantity,
		MaxQuantityInQuote:   f.MaxQuantityInQuote,
		Selected:             f.Selected,
		IsAdditional:         f.IsAdditional,
		InventoryGroupID:     string(f.InventoryGroupID),
		HasInventoryPool:     f.HasInventoryPool,
		MinRent:              decString(f.MinRent),
		MaxRent:              decString(f.MaxRent),
		ExternalChargeCode:   f.ExternalChargeCode,
		Concessions:          toConcessionDTOs(f.Concessions),
	}
	for _, child := range f.Children {
		dto.Children = append(dto.Children, child.String())
	}
	return dto
}

func toConcessionDTOs(concessions []pricing.Concession) []ConcessionDTO {
	if len(concessions) == 0 {
		return nil
	}
	dtos := make([]ConcessionDTO, 0, len(concessions))
	for _, c := range concessions {
		dto := ConcessionDTO{
			ID:                  string(c.ID),
			DisplayName:         c.DisplayName,
			VariableAdjustment:  c.VariableAdjustment,
			Recurring:           c.Recurring,
			BakedIntoAppliedFee: c.BakedIntoAppliedFee,
			HideInSelfService:   c.HideInSelfService,
		}
		if c.RelativeAdjustment != nil {
			dto.RelativeAdjustment = c.RelativeAdjustment.String()
		}
		if c.AbsoluteAdjustment != nil {
			dto.AbsoluteAdjustment = c.AbsoluteAdjustment.String()
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

func toFeeDTO(f pricing.Fee) FeeDTO {
	dto := FeeDTO{
		ID:                   string(f.ID),
		DisplayName:          f.DisplayName,
		Type:                 string(f.Type),
		ServicePeriod:        string(f.ServicePeriod),
		QuoteSectionName:     f.QuoteSectionName,
		LeaseState:           string(f.LeaseState),
		RenewalLetterDisplay: f.RenewalLetterDisplay,
	}
	if f.RelativePrice != nil {
		dto.RelativePrice = f.RelativePrice.String()
	}
	if f.AbsolutePrice != nil {
		dto.AbsolutePrice = f.AbsolutePrice.String()
	}
	return dto
}

func toRenewalLetterDTO(l *renewal.Letter) RenewalLetterDTO {
	dto := RenewalLetterDTO{
		PropertyID: string(l.PropertyID),
		CreatedAt:  l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		TermOffers: make([]TermOfferDTO, 0, len(l.TermOffers)),
		FeeLines:   make([]FeeLineDTO, 0, len(l.FeeLines)),
	}
	for _, offer := range l.TermOffers {
		dto.TermOffers = append(dto.TermOffers, TermOfferDTO{
			LeaseTermID: string(offer.LeaseTermID),
			TermLength:  offer.TermLength,
			Period:      string(offer.Period),
			BaseRent:    offer.BaseRent.String(),
			Editable:    offer.Editable,
			MinRent:     decString(offer.MinRent),
			MaxRent:     decString(offer.MaxRent),
		})
	}
	for _, line := range l.FeeLines {
		dto.FeeLines = append(dto.FeeLines, FeeLineDTO{
			FeeID:       line.FeeID,
			DisplayName: line.DisplayName,
			Amount:      line.Amount.String(),
			Section:     line.Section,
		})
	}
	return dto
}

func decString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
