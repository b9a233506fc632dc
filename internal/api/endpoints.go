package api

import (
	"context"
	"encoding/json"
	"strings"

	"bus-booking/internal/status"

	"github.com/sirupsen/logrus"
)

// attempt is one endpoint shape for a logical operation.
type attempt struct {
	endpoint string
	method   string
	path     string
	body     any
}

// accept judges a response. A non-nil error moves on to the next attempt.
type accept func(*response) error

// firstAccepted tries attempts in order and returns the first accepted
// response. Credential errors and a cancelled context stop the walk.
func (c *Client) firstAccepted(ctx context.Context, op string, attempts []attempt, ok accept) (*response, error) {
	var errs []error
	for i, a := range attempts {
		if i > 0 {
			c.monitor.TrackFallback(op)
			c.logger.WithFields(logrus.Fields{
				"operation": op,
				"endpoint":  a.endpoint,
				"previous":  errs[len(errs)-1],
			}).Debug("trying alternate endpoint")
		}

		res, err := c.do(ctx, a.endpoint, a.method, a.path, a.body)
		if err != nil {
			if status.KindOf(err) == status.KindValidation || ctx.Err() != nil {
				return nil, err
			}
			errs = append(errs, err)
			continue
		}
		if err := ok(res); err != nil {
			errs = append(errs, err)
			continue
		}
		return res, nil
	}
	return nil, attemptsFailed(op, errs)
}

// attemptsFailed reports the most informative failure: the last answer the
// server gave, or the last transport error when it never answered.
func attemptsFailed(op string, errs []error) error {
	if len(errs) == 0 {
		return status.Shape(op, "no endpoint available")
	}
	var answered error
	for _, err := range errs {
		if status.KindOf(err) != status.KindTransport {
			answered = err
		}
	}
	if answered != nil {
		return answered
	}
	return errs[len(errs)-1]
}

// confirmed accepts a 2xx response whose body does not carry success=false.
func confirmed(op, fallback string) accept {
	return func(res *response) error {
		if !res.OK() {
			return status.Rejected(op, orDefault(res.ErrorMessage(), fallback))
		}
		if v, ok := res.Object()["success"].(bool); ok && !v {
			return status.Rejected(op, orDefault(res.ErrorMessage(), fallback))
		}
		return nil
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// stringField reads a string or numeric field as text.
func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	return ""
}
