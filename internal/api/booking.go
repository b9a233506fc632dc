package api

import (
	"context"
	"net/http"

	"bus-booking/internal/status"
	"bus-booking/models"
)

// Pay requests a payment token for amount.
func (c *Client) Pay(ctx context.Context, amount int64) (string, error) {
	res, err := c.do(ctx, "POST /pay", http.MethodPost, "/pay", models.PaymentRequest{Amount: amount})
	if err != nil {
		return "", err
	}
	token := stringField(res.Object(), "payment_token")
	if !res.OK() || token == "" {
		return "", status.Rejected("pay", orDefault(res.ErrorMessage(), "Payment failed"))
	}
	return token, nil
}

// Book submits a paid booking and returns the server-assigned booking id.
func (c *Client) Book(ctx context.Context, req models.BookingRequest) (string, error) {
	res, err := c.do(ctx, "POST /book", http.MethodPost, "/book", req)
	if err != nil {
		return "", err
	}
	id := stringField(res.Object(), "booking_id")
	if !res.OK() || id == "" {
		return "", status.Rejected("book", orDefault(res.ErrorMessage(), "Booking failed"))
	}
	return id, nil
}
