package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"bus-booking/internal/status"
	"bus-booking/models"
)

func (c *Client) Routes(ctx context.Context) ([]models.Route, error) {
	return fetchList[models.Route](ctx, c, "GET /routes", "/routes", "routes")
}

func (c *Client) Schedules(ctx context.Context) ([]models.Schedule, error) {
	return fetchList[models.Schedule](ctx, c, "GET /schedules", "/schedules", "schedules")
}

func (c *Client) MyBookings(ctx context.Context) ([]models.Booking, error) {
	return fetchList[models.Booking](ctx, c, "GET /mybookings", "/mybookings", "bookings")
}

func fetchList[T any](ctx context.Context, c *Client, endpoint, path, key string) ([]T, error) {
	res, err := c.do(ctx, endpoint, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, status.Rejected(endpoint, orDefault(res.ErrorMessage(), fmt.Sprintf("HTTP %d", res.StatusCode)))
	}
	list, ok := listFrom(res.Payload, key)
	if !ok {
		return nil, status.Shape(endpoint, fmt.Sprintf("response carries no %s list", key))
	}
	return decodeList[T](endpoint, list)
}

// listFrom finds the list in a bare array, payload[key], payload.data[key]
// or payload.data.
func listFrom(payload any, key string) ([]any, bool) {
	if list, ok := payload.([]any); ok {
		return list, true
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	if list, ok := obj[key].([]any); ok {
		return list, true
	}
	switch data := obj["data"].(type) {
	case map[string]any:
		if list, ok := data[key].([]any); ok {
			return list, true
		}
	case []any:
		return data, true
	}
	return nil, false
}

func decodeList[T any](op string, list []any) ([]T, error) {
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, status.Shape(op, err.Error())
	}
	out := make([]T, 0, len(list))
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &status.Error{Kind: status.KindShapeMismatch, Op: op, Message: "unexpected item shape", Err: err}
	}
	return out, nil
}
