package handlers

import (
	"net/http"
	"strconv"

	"bus-booking/services"

	"github.com/labstack/echo/v5"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	session Session
	logger  *logrus.Logger
}

func NewBookingHandler(session Session, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{session: session, logger: logger}
}

// ConfirmBooking - pay and book the selected seats
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	var req services.BookInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	conf, err := h.session.Book(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, conf)
}

// CancelBooking - cancel one of the user's bookings
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := strconv.Atoi(c.PathParam("id"))
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	out, err := h.session.Cancel(c.Request().Context(), id, req.Reason)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// RateBooking - rate a completed trip
func (h *BookingHandler) RateBooking(c echo.Context) error {
	id, err := strconv.Atoi(c.PathParam("id"))
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	if err := h.session.Rate(c.Request().Context(), id, req.Rating, req.Comment); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"booking_id": id,
		"rating":     req.Rating,
		"message":    "Thanks for your feedback!",
	})
}
