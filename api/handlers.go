/*
handlers.go - HTTP API handlers for the pricing engine

PURPOSE:
  Exposes the fee and concession resolution engine via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Quotes:
    POST   /api/quotes/price                 Price a quote context

  Property catalogs:
    PUT    /api/properties/{id}/catalog      Replace the fee catalog
    GET    /api/properties/{id}/fees         List catalog fees
    GET    /api/properties/{id}/concessions  List catalog concessions
    GET    /api/properties/{id}/lease-terms  List offered lease terms

  Renewals:
    POST   /api/renewals/letter              Build a renewal letter

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, malformed catalogs
  - 404: Property not found
  - 422: Fee-catalog configuration errors surfaced during resolution
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/pricing-engine/factory"
	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/quoting"
	"github.com/warp/pricing-engine/renewal"
	"github.com/warp/pricing-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Engine  *quoting.Engine
	Letters *renewal.Builder

	logger *zap.Logger
}

// NewHandler creates a new handler over the given store.
func NewHandler(store *sqlite.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := quoting.NewEngine(store, logger)
	return &Handler{
		Store:   store,
		Engine:  engine,
		Letters: renewal.NewBuilder(engine, logger),
		logger:  logger,
	}
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// QUOTE HANDLERS
// =============================================================================

// PriceQuote prices a quote context: all billing periods, lease-term
// adjustments, and matched concessions.
func (h *Handler) PriceQuote(w http.ResponseWriter, r *http.Request) {
	var req PriceQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PropertyID == "" {
		writeError(w, http.StatusBadRequest, "property_id is required", nil)
		return
	}

	domainReq, err := toQuoteRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	quote, err := h.Engine.PriceQuote(r.Context(), domainReq)
	if err != nil {
		h.writeDomainError(w, "Failed to price quote", err)
		return
	}

	writeJSON(w, http.StatusOK, toQuoteDTO(quote))
}

func toQuoteRequest(req PriceQuoteRequest) (quoting.Request, error) {
	out := quoting.Request{
		PropertyID: pricing.PropertyID(req.PropertyID),
		LeaseState: pricing.LeaseState(req.LeaseState),
	}
	if req.InventoryID != "" {
		id := pricing.InventoryID(req.InventoryID)
		out.InventoryID = &id
	}
	for _, a := range req.InventoryAmenities {
		out.InventoryAmenities = append(out.InventoryAmenities, pricing.AmenityID(a))
	}
	for _, id := range req.SelectedTermIDs {
		out.SelectedTermIDs = append(out.SelectedTermIDs, pricing.LeaseTermID(id))
	}

	if len(req.FeeAmountOverrides) > 0 || len(req.BaseRentOverrides) > 0 {
		selection := &pricing.QuoteSelection{}
		if len(req.FeeAmountOverrides) > 0 {
			selection.FeeAmountOverrides = make(map[string]decimal.Decimal, len(req.FeeAmountOverrides))
			for id, raw := range req.FeeAmountOverrides {
				amount, err := decimal.NewFromString(raw)
				if err != nil {
					return quoting.Request{}, err
				}
				selection.FeeAmountOverrides[id] = amount
			}
		}
		if len(req.BaseRentOverrides) > 0 {
			selection.BaseRentOverrides = make(map[pricing.LeaseTermID]pricing.BaseRentOverride, len(req.BaseRentOverrides))
			for id, ov := range req.BaseRentOverrides {
				original, err := decimal.NewFromString(ov.OriginalBaseRent)
				if err != nil {
					return quoting.Request{}, err
				}
				overwritten, err := decimal.NewFromString(ov.OverwrittenBaseRent)
				if err != nil {
					return quoting.Request{}, err
				}
				selection.BaseRentOverrides[pricing.LeaseTermID(id)] = pricing.BaseRentOverride{
					OriginalBaseRent:    original,
					OverwrittenBaseRent: overwritten,
				}
			}
		}
		out.Selection = selection
	}

	return out, nil
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ReplaceCatalog replaces a property's entire fee catalog from a JSON
// document. The body uses the factory catalog schema; the path property id
// must match the document's.
func (h *Handler) ReplaceCatalog(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	snap, err := factory.ParseCatalog(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid catalog", err)
		return
	}
	if string(snap.PropertyID) != propertyID {
		writeError(w, http.StatusBadRequest, "Catalog propertyId does not match URL", nil)
		return
	}

	if err := h.Store.ReplaceCatalog(r.Context(), snap); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save catalog", err)
		return
	}

	h.logger.Info("catalog replaced",
		zap.String("property", propertyID),
		zap.Int("fees", len(snap.Fees)),
		zap.Int("concessions", len(snap.Concessions)))

	writeJSON(w, http.StatusOK, map[string]any{
		"property_id": propertyID,
		"fees":        len(snap.Fees),
		"concessions": len(snap.Concessions),
		"lease_terms": len(snap.LeaseTerms),
	})
}

// ListFees returns the property's catalog fees.
func (h *Handler) ListFees(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}
	dtos := make([]FeeDTO, 0, len(snap.Fees))
	for _, f := range snap.Fees {
		dtos = append(dtos, toFeeDTO(f))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListConcessions returns the property's concessions.
func (h *Handler) ListConcessions(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toConcessionDTOs(snap.Concessions))
}

// ListLeaseTerms returns the property's offered lease terms.
func (h *Handler) ListLeaseTerms(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}
	dtos := make([]LeaseTermDTO, 0, len(snap.LeaseTerms))
	for _, t := range snap.LeaseTerms {
		dtos = append(dtos, LeaseTermDTO{
			ID:                 string(t.ID),
			TermLength:         t.TermLength,
			Period:             string(t.Period),
			AdjustedMarketRent: t.AdjustedMarketRent.String(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) loadSnapshot(w http.ResponseWriter, r *http.Request) (*pricing.Snapshot, bool) {
	propertyID := pricing.PropertyID(chi.URLParam(r, "id"))
	snap, err := h.Store.SnapshotForProperty(r.Context(), propertyID, pricing.LeaseStateAny)
	if err != nil {
		h.writeDomainError(w, "Failed to load catalog", err)
		return nil, false
	}
	return snap, true
}

// =============================================================================
// RENEWAL HANDLERS
// =============================================================================

// BuildRenewalLetter builds a renewal-offer summary.
func (h *Handler) BuildRenewalLetter(w http.ResponseWriter, r *http.Request) {
	var req RenewalLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PropertyID == "" {
		writeError(w, http.StatusBadRequest, "property_id is required", nil)
		return
	}

	domainReq := renewal.Request{PropertyID: pricing.PropertyID(req.PropertyID)}
	if req.InventoryID != "" {
		id := pricing.InventoryID(req.InventoryID)
		domainReq.InventoryID = &id
	}
	for _, a := range req.InventoryAmenities {
		domainReq.InventoryAmenities = append(domainReq.InventoryAmenities, pricing.AmenityID(a))
	}
	for _, id := range req.OfferedTermIDs {
		domainReq.OfferedTermIDs = append(domainReq.OfferedTermIDs, pricing.LeaseTermID(id))
	}

	letter, err := h.Letters.Build(r.Context(), domainReq)
	if err != nil {
		h.writeDomainError(w, "Failed to build renewal letter", err)
		return
	}

	writeJSON(w, http.StatusOK, toRenewalLetterDTO(letter))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps engine errors to HTTP statuses: not-found to 404,
// catalog configuration errors to 422, everything else to 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, pricing.ErrPropertyNotFound):
		writeError(w, http.StatusNotFound, "Property not found", err)
	case pricing.IsConfigurationError(err) || errors.Is(err, pricing.ErrFeeNotFound):
		writeError(w, http.StatusUnprocessableEntity, "Fee catalog misconfiguration", err)
	default:
		h.logger.Error(msg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := map[string]any{"error": message}
	if err != nil {
		resp["detail"] = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
