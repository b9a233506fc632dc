package models

// PromoOffer is a static catalog entry. Exactly one of Percentage or Flat is
// expected to be non-zero.
type PromoOffer struct {
	Code          string `json:"code"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Percentage    int64  `json:"percentage,omitempty"`
	Flat          int64  `json:"flat,omitempty"`
	MaxDiscount   int64  `json:"max_discount,omitempty"`
	MinAmount     int64  `json:"min_amount,omitempty"`
	FirstTimeOnly bool   `json:"first_time_only,omitempty"`
}

func (o PromoOffer) IsPercentage() bool { return o.Percentage > 0 }

type QuoteReason string

const (
	ReasonNoCode           QuoteReason = "no_code"
	ReasonInvalidCode      QuoteReason = "invalid_code"
	ReasonFirstBookingOnly QuoteReason = "first_booking_only"
	ReasonBelowMinimum     QuoteReason = "below_minimum"
	ReasonApplied          QuoteReason = "applied"
)

// FareQuote amounts are integers in the smallest display unit.
type FareQuote struct {
	SeatCount   int         `json:"seat_count"`
	BaseAmount  int64       `json:"base_amount"`
	Discount    int64       `json:"discount"`
	FinalAmount int64       `json:"final_amount"`
	Offer       *PromoOffer `json:"offer"`
	Reason      QuoteReason `json:"reason"`
	Message     string      `json:"message"`
}

// Rejected reports whether a supplied promo code was refused.
func (q FareQuote) Rejected() bool {
	switch q.Reason {
	case ReasonInvalidCode, ReasonFirstBookingOnly, ReasonBelowMinimum:
		return true
	}
	return false
}

// PromoCode returns the applied offer's code, or "" when none applied.
func (q FareQuote) PromoCode() string {
	if q.Offer == nil {
		return ""
	}
	return q.Offer.Code
}
