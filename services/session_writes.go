package services

import (
	"context"
	"fmt"
	"strings"

	"bus-booking/internal/seatmap"
	"bus-booking/internal/status"
	"bus-booking/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type BookInput struct {
	ManualSeats int    `json:"manual_seats"`
	PromoCode   string `json:"promo_code"`
}

// writeFailure gives transport failures the operation's user-facing message.
func (s *BookingSession) writeFailure(op string, err error, networkMessage string) error {
	s.logger.WithFields(logrus.Fields{"operation": op, "error": err}).Error("write failed")
	if status.KindOf(err) == status.KindTransport {
		return &status.Error{Kind: status.KindTransport, Op: op, Message: networkMessage, Err: err}
	}
	return err
}

// Book pays for and books the selected seats, or ManualSeats when nothing is
// selected. Local state changes only after the server confirms the booking.
func (s *BookingSession) Book(ctx context.Context, in BookInput) (models.BookingConfirmation, error) {
	s.mu.Lock()
	scheduleID := s.scheduleID
	gen := s.generation
	labels := s.selection.Labels()
	sched, known := s.schedules[scheduleID]
	s.mu.Unlock()

	if scheduleID == 0 {
		return models.BookingConfirmation{}, status.Invalid("book", "Please select a schedule.")
	}
	count := seatmap.SeatCount(len(labels), in.ManualSeats)
	if count < 1 {
		return models.BookingConfirmation{}, status.Invalid("book", "Please select at least one seat.")
	}
	if len(labels) == 0 && known && sched.SeatsAvailable > 0 && count > sched.SeatsAvailable {
		return models.BookingConfirmation{}, status.Invalid("book",
			fmt.Sprintf("Only %d seats are available on this bus.", sched.SeatsAvailable))
	}

	hasBooked, err := s.prefs.HasBookedOnce(ctx)
	if err != nil {
		return models.BookingConfirmation{}, fmt.Errorf("book: %w", err)
	}
	quote := s.fare.Quote(count, in.PromoCode, hasBooked)
	s.monitor.TrackQuote(string(quote.Reason))
	if strings.TrimSpace(in.PromoCode) != "" && quote.Rejected() {
		return models.BookingConfirmation{}, status.Invalid("book", quote.Message)
	}

	token, err := s.api.Pay(ctx, quote.FinalAmount)
	if err != nil {
		s.monitor.TrackBooking("payment_failed")
		return models.BookingConfirmation{}, s.writeFailure("pay", err, "Booking failed due to a network error.")
	}

	req := models.BookingRequest{
		ScheduleID:      scheduleID,
		Seats:           quote.SeatCount,
		PaymentToken:    token,
		DiscountApplied: quote.Discount,
		AmountCharged:   quote.FinalAmount,
	}
	if code := quote.PromoCode(); code != "" {
		req.PromoCode = &code
	}
	if len(labels) > 0 {
		req.SeatNumbers = labels
	}

	bookingID, err := s.api.Book(ctx, req)
	if err != nil {
		s.monitor.TrackBooking("rejected")
		return models.BookingConfirmation{}, s.writeFailure("book", err, "Booking failed due to a network error.")
	}
	s.monitor.TrackBooking("ok")
	s.logger.WithFields(logrus.Fields{
		"booking_id":  bookingID,
		"schedule_id": scheduleID,
		"seats":       quote.SeatCount,
		"amount":      quote.FinalAmount,
	}).Info("booking confirmed")

	if err := s.prefs.MarkBooked(ctx); err != nil {
		s.logger.WithError(err).Warn("failed to remember first booking")
	}

	s.mu.Lock()
	if s.generation == gen {
		s.selection.Clear()
		s.monitor.SetSelectedSeats(0)
	}
	s.mu.Unlock()

	s.Refresh(ctx, gen)

	return models.BookingConfirmation{
		BookingID:  bookingID,
		ScheduleID: scheduleID,
		Seats:      quote.SeatCount,
		SeatLabels: labels,
		Quote:      quote,
	}, nil
}

// Cancel cancels a booking. A booking known to be past departure or already
// cancelled is refused before any request is sent.
func (s *BookingSession) Cancel(ctx context.Context, bookingID int, reason string) (models.CancelOutcome, error) {
	if bookingID <= 0 {
		return models.CancelOutcome{}, status.Invalid("cancel", "Invalid booking id.")
	}

	outcome := models.CancelOutcome{BookingID: bookingID}
	s.mu.Lock()
	b, known := s.findBookingLocked(bookingID)
	var view models.BookingView
	if known {
		view = s.bookingViewLocked(b, nil)
		if sched, ok := s.schedules[b.ScheduleID]; ok {
			if hrs, ok := sched.HoursUntilDeparture(s.now()); ok {
				outcome.Policy = models.RefundPolicyFor(hrs)
			}
		}
	}
	var reloadGen uint64
	if known && b.ScheduleID == s.scheduleID {
		reloadGen = s.generation
	}
	s.mu.Unlock()

	if known && !view.CanCancel {
		return models.CancelOutcome{}, status.Invalid("cancel", "This booking can no longer be cancelled.")
	}

	if err := s.api.CancelBooking(ctx, bookingID, strings.TrimSpace(reason)); err != nil {
		return models.CancelOutcome{}, s.writeFailure("cancel", err, "Cancellation error.")
	}
	s.logger.WithField("booking_id", bookingID).Info("booking cancelled")

	s.Refresh(ctx, reloadGen)
	return outcome, nil
}

// Rate submits a 1-5 star rating and remembers it locally once accepted.
func (s *BookingSession) Rate(ctx context.Context, bookingID, stars int, comment string) error {
	if bookingID <= 0 {
		return status.Invalid("rate", "Invalid booking id.")
	}
	if stars < 1 || stars > 5 {
		return status.Invalid("rate", "Please select a star rating.")
	}

	s.mu.Lock()
	b, known := s.findBookingLocked(bookingID)
	var view models.BookingView
	if known {
		view = s.bookingViewLocked(b, nil)
	}
	s.mu.Unlock()
	if known && !view.CanRate {
		return status.Invalid("rate", "You can rate a trip after it departs.")
	}

	comment = strings.TrimSpace(comment)
	if err := s.api.RateBooking(ctx, bookingID, stars, comment); err != nil {
		return s.writeFailure("rate", err, "Rating failed due to a network error.")
	}

	local := models.LocalRating{Rating: stars, Comment: comment, UpdatedAt: s.now()}
	if err := s.prefs.SaveRating(ctx, bookingID, local); err != nil {
		s.logger.WithFields(logrus.Fields{"booking_id": bookingID, "error": err}).Warn("failed to store rating locally")
	}
	return nil
}

// Refresh reloads schedules and bookings concurrently. The seat map is
// re-fetched only if seatMapGen is still the active generation; 0 skips it.
func (s *BookingSession) Refresh(ctx context.Context, seatMapGen uint64) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.LoadSchedules(gctx)
		return nil
	})
	g.Go(func() error {
		s.LoadMyBookings(gctx)
		return nil
	})
	if seatMapGen != 0 {
		g.Go(func() error {
			_, err := s.reloadIfCurrent(gctx, seatMapGen)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Warn("refresh incomplete")
	}
}
