package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/sirupsen/logrus"
)

type FareHandler struct {
	session Session
	logger  *logrus.Logger
}

func NewFareHandler(session Session, logger *logrus.Logger) *FareHandler {
	return &FareHandler{session: session, logger: logger}
}

// GetQuote - price the selection, or ?seats= when nothing is selected
func (h *FareHandler) GetQuote(c echo.Context) error {
	manual := 0
	if v := strings.TrimSpace(c.QueryParam("seats")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return badRequest(c, "seats must be a non-negative number")
		}
		manual = n
	}

	quote, err := h.session.Quote(c.Request().Context(), manual, c.QueryParam("promo"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, quote)
}

func (h *FareHandler) GetOffers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.Offers())
}
