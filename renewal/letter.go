/*
Package renewal builds renewal-offer summaries on top of the quoting engine.

PURPOSE:
  A renewal letter is the resident-facing summary of what their next lease
  would cost: the offered terms with their adjusted rents, plus the fees
  the property flags for renewal-letter display. This package reuses the
  quote engine with the renewal lease state and reshapes its output into
  ordered letter lines; it owns no pricing logic of its own.

SEE ALSO:
  - quoting/engine.go: produces the priced quote this is a view over
*/
package renewal

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/pricing-engine/pricing"
	"github.com/warp/pricing-engine/quoting"
)

// Letter is one property/unit renewal offer.
type Letter struct {
	PropertyID pricing.PropertyID
	CreatedAt  time.Time

	// TermOffers are the offered lease terms, shortest first.
	TermOffers []TermOffer

	// FeeLines are the monthly fees flagged for renewal-letter display,
	// ordered by display name.
	FeeLines []FeeLine
}

// TermOffer is one offered lease length with its adjusted rent.
type TermOffer struct {
	LeaseTermID pricing.LeaseTermID
	TermLength  int
	Period      pricing.ServicePeriod

	BaseRent decimal.Decimal

	// Editable signals variable baked concessions exist; Min/MaxRent
	// bound the agent's room, nil when not editable.
	Editable bool
	MinRent  *decimal.Decimal
	MaxRent  *decimal.Decimal

	Concessions []pricing.Concession
}

// FeeLine is one displayed fee line.
type FeeLine struct {
	FeeID       string
	DisplayName string
	Amount      decimal.Decimal
	Section     string
}

// Builder assembles renewal letters.
type Builder struct {
	engine *quoting.Engine
	logger *zap.Logger
}

func NewBuilder(engine *quoting.Engine, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{engine: engine, logger: logger}
}

// Request identifies the lease being renewed.
type Request struct {
	PropertyID pricing.PropertyID

	InventoryID        *pricing.InventoryID
	InventoryAmenities []pricing.AmenityID

	// OfferedTermIDs restrict the letter to specific terms; empty offers
	// all of the property's terms.
	OfferedTermIDs []pricing.LeaseTermID
}

// Build prices the renewal context and reshapes it into a letter.
func (b *Builder) Build(ctx context.Context, req Request) (*Letter, error) {
	quote, err := b.engine.PriceQuote(ctx, quoting.Request{
		PropertyID:         req.PropertyID,
		LeaseState:         pricing.LeaseStateRenewal,
		InventoryID:        req.InventoryID,
		InventoryAmenities: req.InventoryAmenities,
		SelectedTermIDs:    req.OfferedTermIDs,
	})
	if err != nil {
		return nil, err
	}

	letter := &Letter{
		PropertyID: quote.PropertyID,
		CreatedAt:  quote.CreatedAt,
		TermOffers: termOffers(quote),
		FeeLines:   feeLines(quote),
	}

	b.logger.Debug("renewal letter built",
		zap.String("property", string(req.PropertyID)),
		zap.Int("terms", len(letter.TermOffers)),
		zap.Int("fee_lines", len(letter.FeeLines)))

	return letter, nil
}

func termOffers(quote *quoting.Quote) []TermOffer {
	offers := make([]TermOffer, 0, len(quote.LeaseTerms))
	for _, term := range quote.LeaseTerms {
		adj := quote.TermAdjustments[term.ID]

		rent := adj.AdjustedMarketRent
		// A base rent the agent already overwrote on the prior offer
		// stays in force.
		if adj.OverwrittenBaseRent != nil {
			rent = *adj.OverwrittenBaseRent
		}

		offers = append(offers, TermOffer{
			LeaseTermID: term.ID,
			TermLength:  term.TermLength,
			Period:      term.Period,
			BaseRent:    rent,
			Editable:    adj.AllowBaseRentAdjustment,
			MinRent:     adj.MinBakedFeesAdjustment,
			MaxRent:     adj.MaxBakedFeesAdjustment,
			Concessions: term.Concessions,
		})
	}
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].TermLength < offers[j].TermLength
	})
	return offers
}

// feeLines keeps the monthly fees flagged for letter display. The
// resolver already ordered them; the flag filter preserves that order.
func feeLines(quote *quoting.Quote) []FeeLine {
	var lines []FeeLine
	for _, p := range quote.Periods {
		if p.Period != pricing.PeriodMonth {
			continue
		}
		for _, fee := range p.Fees {
			if !fee.RenewalLetterDisplay {
				continue
			}
			lines = append(lines, FeeLine{
				FeeID:       fee.ID(),
				DisplayName: fee.DisplayName,
				Amount:      fee.Amount,
				Section:     fee.QuoteSectionName,
			})
		}
	}
	return lines
}
