// Package handlers is the HTTP adapter over a BookingSession. Handlers decode
// UI events into session commands and encode the resulting state; they hold
// no booking state of their own.
package handlers

import (
	"context"
	"net/http"

	"bus-booking/internal/status"
	"bus-booking/models"
	"bus-booking/services"

	"github.com/labstack/echo/v5"
	"github.com/sirupsen/logrus"
)

// Session is the booking state machine the handlers drive.
type Session interface {
	SeatMap() (services.SeatMap, error)
	SelectSchedule(ctx context.Context, scheduleID int) (services.SeatMap, error)
	Toggle(label string) (services.SeatMap, error)
	ClearSelection() (services.SeatMap, error)
	Reload(ctx context.Context) (services.SeatMap, error)
	Quote(ctx context.Context, manualSeats int, promoCode string) (models.FareQuote, error)
	Offers() []models.PromoOffer
	LoadRoutes(ctx context.Context) services.ReadResult[models.Route]
	LoadSchedules(ctx context.Context) services.ReadResult[models.Schedule]
	LoadMyBookings(ctx context.Context) services.ReadResult[models.BookingView]
	Book(ctx context.Context, in services.BookInput) (models.BookingConfirmation, error)
	Cancel(ctx context.Context, bookingID int, reason string) (models.CancelOutcome, error)
	Rate(ctx context.Context, bookingID, stars int, comment string) error
}

// StatusCode maps an error kind to the HTTP status returned to the UI.
func StatusCode(err error) int {
	switch status.KindOf(err) {
	case status.KindValidation:
		return http.StatusBadRequest
	case status.KindServerRejection:
		return http.StatusUnprocessableEntity
	case status.KindShapeMismatch:
		return http.StatusBadGateway
	case status.KindTransport:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c echo.Context, logger *logrus.Logger, err error) error {
	code := StatusCode(err)
	msg := status.MessageOf(err)
	if code == http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"path":  c.Request().URL.Path,
			"error": err,
		}).Error("request failed")
		msg = "Something went wrong. Please try again."
	}
	return c.JSON(code, map[string]string{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
