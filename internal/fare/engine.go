// Package fare prices a booking and applies promotional offers.
package fare

import (
	"fmt"
	"strings"

	"bus-booking/models"

	"github.com/shopspring/decimal"
)

const DefaultPerSeatPrice int64 = 100

var hundred = decimal.NewFromInt(100)

type Engine struct {
	perSeatPrice int64
	catalog      *Catalog
}

func NewEngine(perSeatPrice int64, catalog *Catalog) *Engine {
	if perSeatPrice < 0 {
		perSeatPrice = 0
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{perSeatPrice: perSeatPrice, catalog: catalog}
}

func (e *Engine) PerSeatPrice() int64 { return e.perSeatPrice }

func (e *Engine) Catalog() *Catalog { return e.catalog }

// Quote prices seatCount seats and applies promoCode if the offer allows it.
// An empty code means no code. The result has no side effects; recording that
// the user has booked before is the caller's job.
func (e *Engine) Quote(seatCount int, promoCode string, hasBookedBefore bool) models.FareQuote {
	if seatCount < 0 {
		seatCount = 0
	}
	base := int64(seatCount) * e.perSeatPrice
	q := models.FareQuote{
		SeatCount:   seatCount,
		BaseAmount:  base,
		FinalAmount: base,
	}

	code := strings.TrimSpace(promoCode)
	if code == "" {
		q.Reason, q.Message = models.ReasonNoCode, "No code applied"
		return q
	}

	offer, ok := e.catalog.Lookup(code)
	if !ok {
		q.Reason, q.Message = models.ReasonInvalidCode, "Invalid code"
		return q
	}
	if offer.FirstTimeOnly && hasBookedBefore {
		q.Reason, q.Message = models.ReasonFirstBookingOnly, "Code valid only for first booking"
		return q
	}
	if offer.MinAmount > 0 && base < offer.MinAmount {
		q.Reason = models.ReasonBelowMinimum
		q.Message = fmt.Sprintf("Min amount is ₹%d", offer.MinAmount)
		return q
	}

	discount := min(rawDiscount(base, offer), base)
	q.Discount = discount
	q.FinalAmount = base - discount
	q.Offer = &offer
	q.Reason, q.Message = models.ReasonApplied, "Applied"
	return q
}

// rawDiscount rounds percentage discounts to the nearest unit, halves away
// from zero, before applying the offer's cap.
func rawDiscount(base int64, offer models.PromoOffer) int64 {
	if offer.IsPercentage() {
		d := decimal.NewFromInt(base).
			Mul(decimal.NewFromInt(offer.Percentage)).
			Div(hundred).
			Round(0).
			IntPart()
		if offer.MaxDiscount > 0 {
			d = min(d, offer.MaxDiscount)
		}
		return d
	}
	return offer.Flat
}
