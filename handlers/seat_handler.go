package handlers

import (
	"net/http"

	"bus-booking/services"

	"github.com/labstack/echo/v5"
	"github.com/sirupsen/logrus"
)

type SeatHandler struct {
	session Session
	logger  *logrus.Logger
}

func NewSeatHandler(session Session, logger *logrus.Logger) *SeatHandler {
	return &SeatHandler{session: session, logger: logger}
}

func (h *SeatHandler) respond(c echo.Context, m services.SeatMap, err error) error {
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, m)
}

// GetSeatMap - current grid, selection and reserved seats
func (h *SeatHandler) GetSeatMap(c echo.Context) error {
	m, err := h.session.SeatMap()
	return h.respond(c, m, err)
}

// SelectSchedule - switch the grid to another schedule
func (h *SeatHandler) SelectSchedule(c echo.Context) error {
	var req struct {
		ScheduleID int `json:"schedule_id"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request")
	}
	m, err := h.session.SelectSchedule(c.Request().Context(), req.ScheduleID)
	return h.respond(c, m, err)
}

// ToggleSeat - select or deselect one seat
func (h *SeatHandler) ToggleSeat(c echo.Context) error {
	var req struct {
		Label string `json:"label"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request")
	}
	m, err := h.session.Toggle(req.Label)
	return h.respond(c, m, err)
}

func (h *SeatHandler) ClearSelection(c echo.Context) error {
	m, err := h.session.ClearSelection()
	return h.respond(c, m, err)
}

// Reload - re-fetch reserved seats for the current schedule
func (h *SeatHandler) Reload(c echo.Context) error {
	m, err := h.session.Reload(c.Request().Context())
	return h.respond(c, m, err)
}
