package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type RouteDeps struct {
	Session  Session
	Settings *SettingsHandler
	// SubmitGuard wraps POST /api/book when set.
	SubmitGuard echo.MiddlewareFunc
	// Health reports backing store health for GET /health.
	Health  func(ctx context.Context) error
	Metrics bool
	Logger  *logrus.Logger
}

func RegisterRoutes(e *echo.Echo, d RouteDeps) {
	e.Use(middleware.Recover())

	seatHandler := NewSeatHandler(d.Session, d.Logger)
	fareHandler := NewFareHandler(d.Session, d.Logger)
	catalogHandler := NewCatalogHandler(d.Session)
	bookingHandler := NewBookingHandler(d.Session, d.Logger)

	g := e.Group("/api")

	// Seat map endpoints
	g.GET("/seatmap", seatHandler.GetSeatMap)
	g.PUT("/seatmap/schedule", seatHandler.SelectSchedule)
	g.POST("/seatmap/toggle", seatHandler.ToggleSeat)
	g.POST("/seatmap/clear", seatHandler.ClearSelection)
	g.POST("/seatmap/reload", seatHandler.Reload)

	// Fare endpoints
	g.GET("/fare", fareHandler.GetQuote)
	g.GET("/offers", fareHandler.GetOffers)

	// Read paths
	g.GET("/routes", catalogHandler.GetRoutes)
	g.GET("/schedules", catalogHandler.GetSchedules)
	g.GET("/bookings", catalogHandler.GetBookings)

	// Booking endpoints
	if d.SubmitGuard != nil {
		g.POST("/book", bookingHandler.ConfirmBooking, d.SubmitGuard)
	} else {
		g.POST("/book", bookingHandler.ConfirmBooking)
	}
	g.POST("/bookings/:id/cancel", bookingHandler.CancelBooking)
	g.POST("/bookings/:id/rating", bookingHandler.RateBooking)

	if d.Settings != nil {
		g.GET("/settings", d.Settings.GetSettings)
		g.PUT("/settings/api-url", d.Settings.SetAPIURL)
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		if d.Health != nil {
			if err := d.Health(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	if d.Metrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
}
