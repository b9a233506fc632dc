package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
)

// CatalogHandler serves the read paths. They always answer 200; degraded
// results carry from_cache and a notice instead of an error status.
type CatalogHandler struct {
	session Session
}

func NewCatalogHandler(session Session) *CatalogHandler {
	return &CatalogHandler{session: session}
}

func (h *CatalogHandler) GetRoutes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.LoadRoutes(c.Request().Context()))
}

func (h *CatalogHandler) GetSchedules(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.LoadSchedules(c.Request().Context()))
}

func (h *CatalogHandler) GetBookings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.LoadMyBookings(c.Request().Context()))
}
