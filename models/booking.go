package models

import (
	"strings"
	"time"
)

type Booking struct {
	ID          int      `json:"id"`
	ScheduleID  int      `json:"schedule_id"`
	Seats       int      `json:"seats"`
	SeatNumbers []string `json:"seat_numbers,omitempty"`
	CreatedAt   string   `json:"created_at"`
	Status      string   `json:"status,omitempty"`
	IsCancelled bool     `json:"is_cancelled,omitempty"`
	IsCanceled  bool     `json:"is_canceled,omitempty"`
	Rating      *int     `json:"rating,omitempty"`
}

type BookingStatus string

const (
	BookingActive    BookingStatus = "Active"
	BookingCancelled BookingStatus = "Cancelled"
)

// NormalizedStatus folds the several ways the API reports cancellation.
func (b Booking) NormalizedStatus() BookingStatus {
	if b.Status != "" {
		switch strings.ToLower(b.Status) {
		case "cancelled", "canceled":
			return BookingCancelled
		case "active", "booked", "confirmed":
			return BookingActive
		}
	}
	if b.IsCancelled || b.IsCanceled {
		return BookingCancelled
	}
	return BookingActive
}

type RefundPolicy string

const (
	RefundFull    RefundPolicy = "Full refund (subject to operator)."
	RefundHalf    RefundPolicy = "50% refund (subject to operator)."
	RefundNone    RefundPolicy = "Non-refundable (subject to operator)."
	RefundUnknown RefundPolicy = ""
)

func RefundPolicyFor(hoursUntilDeparture float64) RefundPolicy {
	switch {
	case hoursUntilDeparture >= 24:
		return RefundFull
	case hoursUntilDeparture >= 3:
		return RefundHalf
	default:
		return RefundNone
	}
}

// BookingView joins a booking with its schedule and route for display.
type BookingView struct {
	Booking       Booking       `json:"booking"`
	Status        BookingStatus `json:"status"`
	RouteLabel    string        `json:"route_label"`
	ScheduleLabel string        `json:"schedule_label"`
	CanCancel     bool          `json:"can_cancel"`
	CanRate       bool          `json:"can_rate"`
	Rating        int           `json:"rating"`
}

// PaymentRequest is the body of POST /pay.
type PaymentRequest struct {
	Amount int64 `json:"amount"`
}

// BookingRequest is the body of POST /book.
type BookingRequest struct {
	ScheduleID      int      `json:"schedule_id"`
	Seats           int      `json:"seats"`
	PaymentToken    string   `json:"payment_token"`
	PromoCode       *string  `json:"promo_code"`
	DiscountApplied int64    `json:"discount_applied"`
	AmountCharged   int64    `json:"amount_charged"`
	SeatNumbers     []string `json:"seat_numbers,omitempty"`
}

type BookingConfirmation struct {
	BookingID  string    `json:"booking_id"`
	ScheduleID int       `json:"schedule_id"`
	Seats      int       `json:"seats"`
	SeatLabels []string  `json:"seat_labels,omitempty"`
	Quote      FareQuote `json:"quote"`
}

type CancelRequest struct {
	BookingID int    `json:"booking_id"`
	Reason    string `json:"reason"`
}

type CancelOutcome struct {
	BookingID int          `json:"booking_id"`
	Policy    RefundPolicy `json:"policy,omitempty"`
}

type RatingRequest struct {
	BookingID int    `json:"booking_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// LocalRating is the locally remembered rating for a booking.
type LocalRating struct {
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	UpdatedAt time.Time `json:"ts"`
}
