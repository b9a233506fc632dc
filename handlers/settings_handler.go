package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"bus-booking/internal/api"

	"github.com/labstack/echo/v5"
	"github.com/sirupsen/logrus"
)

// BaseURLSwitcher is the live API client whose target can change at runtime.
type BaseURLSwitcher interface {
	SetBaseURL(raw string)
	BaseURL() string
}

type APIURLStore interface {
	SetAPIURL(ctx context.Context, url string) error
}

type SettingsHandler struct {
	client BaseURLSwitcher
	prefs  APIURLStore
	logger *logrus.Logger
}

func NewSettingsHandler(client BaseURLSwitcher, prefs APIURLStore, logger *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{client: client, prefs: prefs, logger: logger}
}

func (h *SettingsHandler) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"api_url": h.client.BaseURL()})
}

// SetAPIURL - persist a new API base URL and switch the live client to it
func (h *SettingsHandler) SetAPIURL(c echo.Context) error {
	var req struct {
		APIURL string `json:"api_url"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request")
	}
	normalized, err := ValidateBaseURL(req.APIURL)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.prefs.SetAPIURL(c.Request().Context(), normalized); err != nil {
		h.logger.WithError(err).Error("failed to persist api url")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not save API URL"})
	}
	h.client.SetBaseURL(normalized)
	h.logger.WithField("api_url", normalized).Info("api url changed")
	return c.JSON(http.StatusOK, map[string]string{"api_url": normalized})
}

type invalidURLError string

func (e invalidURLError) Error() string { return string(e) }

// ValidateBaseURL accepts absolute http(s) URLs and returns them normalized.
func ValidateBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalidURLError("API URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", invalidURLError("API URL must be an absolute http(s) URL")
	}
	return api.NormalizeBaseURL(raw), nil
}
