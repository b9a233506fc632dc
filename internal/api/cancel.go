package api

import (
	"context"
	"fmt"
	"net/http"

	"bus-booking/models"
)

const cancelFailed = "Cancellation failed. Please try again."

func cancelAttempts(bookingID int, reason string) []attempt {
	return []attempt{
		{endpoint: "POST /cancel_booking/:id", method: http.MethodPost, path: fmt.Sprintf("/cancel_booking/%d", bookingID)},
		{endpoint: "DELETE /bookings/:id", method: http.MethodDelete, path: fmt.Sprintf("/bookings/%d", bookingID)},
		{endpoint: "POST /cancel_booking", method: http.MethodPost, path: "/cancel_booking",
			body: models.CancelRequest{BookingID: bookingID, Reason: reason}},
	}
}

// CancelBooking walks the known cancellation endpoints until one confirms.
func (c *Client) CancelBooking(ctx context.Context, bookingID int, reason string) error {
	_, err := c.firstAccepted(ctx, "cancel", cancelAttempts(bookingID, reason), confirmed("cancel", cancelFailed))
	return err
}
