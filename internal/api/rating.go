package api

import (
	"context"
	"fmt"
	"net/http"

	"bus-booking/models"
)

type ratingBody struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (c *Client) RateBooking(ctx context.Context, bookingID, rating int, comment string) error {
	attempts := []attempt{
		{endpoint: "POST /rate_booking", method: http.MethodPost, path: "/rate_booking",
			body: models.RatingRequest{BookingID: bookingID, Rating: rating, Comment: comment}},
		{endpoint: "POST /bookings/:id/rating", method: http.MethodPost, path: fmt.Sprintf("/bookings/%d/rating", bookingID),
			body: ratingBody{Rating: rating, Comment: comment}},
	}
	_, err := c.firstAccepted(ctx, "rate", attempts, confirmed("rate", "Rating could not be saved."))
	return err
}
