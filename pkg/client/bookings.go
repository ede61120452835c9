package client

import (
	"context"
	"net/url"
	"time"

	apperrors "roomline/pkg/errors"
)

const TargetBookings = "bookings"

// Availability is the bookings service's answer to "is this room free in
// this window".
type Availability struct {
	Available             bool     `json:"available"`
	ConflictingBookingIDs []string `json:"conflicting_booking_ids,omitempty"`
}

// BookingsClient lets collaborators (the rooms service) query room
// availability without owning booking state.
type BookingsClient struct {
	http    *HttpClient
	caller  *Caller
	tokenFn TokenFunc
}

func NewBookingsClient(baseURL string, timeout time.Duration, caller *Caller, tokenFn TokenFunc) *BookingsClient {
	return &BookingsClient{
		http:    NewHttpClient(baseURL, timeout),
		caller:  caller,
		tokenFn: tokenFn,
	}
}

func (c *BookingsClient) CheckAvailability(ctx context.Context, roomID string, start, end time.Time) (*Availability, error) {
	headers, err := authHeaders(c.tokenFn)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("room_id", roomID)
	q.Set("start_time", start.Format(time.RFC3339))
	q.Set("end_time", end.Format(time.RFC3339))

	resp, err := c.caller.Do(TargetBookings, func() (*Response, error) {
		return c.http.GET(ctx, "/api/v1/bookings/availability?"+q.Encode(), headers)
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, apperrors.DownstreamError(TargetBookings, resp.StatusCode)
	}

	var wrapper struct {
		Data Availability `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, apperrors.Internal("Failed to decode availability response", err)
	}

	return &wrapper.Data, nil
}
