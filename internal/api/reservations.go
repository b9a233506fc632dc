package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"bus-booking/internal/status"
	"bus-booking/models"

	"github.com/sirupsen/logrus"
)

var reservedKeys = []string{"reserved", "booked", "seats"}

func reservedAttempts(scheduleID int) []attempt {
	return []attempt{
		{endpoint: "GET /schedules/:id/seats", method: http.MethodGet, path: fmt.Sprintf("/schedules/%d/seats", scheduleID)},
		{endpoint: "GET /schedule/:id/seats", method: http.MethodGet, path: fmt.Sprintf("/schedule/%d/seats", scheduleID)},
		{endpoint: "GET /seats", method: http.MethodGet, path: "/seats?schedule_id=" + strconv.Itoa(scheduleID)},
	}
}

// LookupReserved fetches the labels already booked on a schedule. A 2xx
// response without a recognizable seat list counts as a failed attempt.
func (c *Client) LookupReserved(ctx context.Context, scheduleID int) (models.ReservedSet, error) {
	var set models.ReservedSet
	_, err := c.firstAccepted(ctx, "reserved", reservedAttempts(scheduleID), func(res *response) error {
		if !res.OK() {
			return status.Rejected("reserved", orDefault(res.ErrorMessage(), fmt.Sprintf("HTTP %d", res.StatusCode)))
		}
		labels, ok := reservedLabels(res.Payload)
		if !ok {
			return status.Shape("reserved", "response carries no reserved seat list")
		}
		set = models.NewReservedSet(labels...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Reserved is LookupReserved with the degraded policy applied: any failure
// yields an empty set so booking stays possible.
func (c *Client) Reserved(ctx context.Context, scheduleID int) models.ReservedSet {
	set, err := c.LookupReserved(ctx, scheduleID)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"schedule_id": scheduleID,
			"error":       err,
		}).Warn("reserved seats unavailable, showing all seats as free")
		return models.NewReservedSet()
	}
	return set
}

// reservedLabels accepts a bare list, a list under one of reservedKeys, or
// the same nested under "data".
func reservedLabels(payload any) ([]string, bool) {
	switch v := payload.(type) {
	case []any:
		return labelsFrom(v), true
	case map[string]any:
		for _, key := range reservedKeys {
			if list, ok := v[key].([]any); ok {
				return labelsFrom(list), true
			}
		}
		if data, ok := v["data"]; ok {
			return reservedLabels(data)
		}
	}
	return nil, false
}

func labelsFrom(list []any) []string {
	labels := make([]string, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			labels = append(labels, v)
		case json.Number:
			labels = append(labels, v.String())
		case map[string]any:
			for _, key := range []string{"label", "seat_number", "seat"} {
				if s := stringField(v, key); s != "" {
					labels = append(labels, s)
					break
				}
			}
		}
	}
	return labels
}
