// Package api talks to the external booking service. Every logical operation
// is expressed as a prioritized list of endpoint attempts sharing one success
// predicate; only transport failures are reported as errors by the low-level
// request helper, status codes are judged by the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"bus-booking/internal/status"
	"bus-booking/monitoring"
	"bus-booking/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "http://localhost:5000/api"

// Credentials supplies the bearer token for a request.
type Credentials interface {
	Bearer(ctx context.Context) (string, error)
}

type Options struct {
	Timeout time.Duration
	Breaker *utils.CircuitBreaker
	Monitor *monitoring.Monitor
	Logger  *logrus.Logger
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

type Client struct {
	mu      sync.RWMutex
	baseURL string

	http    *http.Client
	creds   Credentials
	breaker *utils.CircuitBreaker
	monitor *monitoring.Monitor
	logger  *logrus.Logger
}

func NewClient(baseURL string, creds Credentials, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	breaker := opts.Breaker
	if breaker == nil {
		breaker = utils.NewCircuitBreaker("booking-api")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &Client{
		http:    httpClient,
		creds:   creds,
		breaker: breaker,
		monitor: opts.Monitor,
		logger:  logger,
	}
	c.SetBaseURL(baseURL)
	return c
}

// NormalizeBaseURL trims whitespace and trailing slashes. An empty value
// yields DefaultBaseURL.
func NormalizeBaseURL(raw string) string {
	v := strings.TrimRight(strings.TrimSpace(raw), "/")
	if v == "" {
		return DefaultBaseURL
	}
	return v
}

func (c *Client) SetBaseURL(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = NormalizeBaseURL(raw)
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// response is a decoded reply. Malformed or empty bodies decode to an empty
// object.
type response struct {
	StatusCode int
	Payload    any
}

func (r *response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Object returns the payload as a JSON object, or an empty one.
func (r *response) Object() map[string]any {
	if m, ok := r.Payload.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// ErrorMessage returns the server's "error" (or "message") field if present.
func (r *response) ErrorMessage() string {
	obj := r.Object()
	for _, key := range []string{"error", "message"} {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func decodePayload(body []byte) any {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || v == nil {
		return map[string]any{}
	}
	return v
}

// do performs one request. It returns an error only when no response was
// obtained (network failure, open breaker, expired credential).
func (c *Client) do(ctx context.Context, endpoint, method, path string, body any) (*response, error) {
	token, err := c.creds.Bearer(ctx)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", endpoint, err)
		}
	}

	var res *response
	start := time.Now()
	err = c.breaker.Execute(ctx, func() error {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reqBody)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		res = &response{StatusCode: resp.StatusCode, Payload: decodePayload(raw)}
		return nil
	}, nil)
	elapsed := time.Since(start)

	if err != nil {
		c.monitor.TrackRequest(endpoint, "transport", elapsed)
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"method":   method,
			"path":     path,
			"error":    err,
		}).Warn("booking api unreachable")
		if errors.Is(err, utils.ErrCircuitOpen) || errors.Is(err, utils.ErrTooManyRequests) {
			return nil, &status.Error{
				Kind:    status.KindTransport,
				Op:      endpoint,
				Message: "booking service temporarily unavailable",
				Err:     err,
			}
		}
		return nil, status.Transport(endpoint, err)
	}

	outcome := "ok"
	if !res.OK() {
		outcome = "rejected"
	}
	c.monitor.TrackRequest(endpoint, outcome, elapsed)
	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"method":   method,
		"path":     path,
		"status":   res.StatusCode,
		"elapsed":  elapsed,
	}).Debug("booking api call")
	return res, nil
}
