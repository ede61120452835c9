package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	apperrors "roomline/pkg/errors"
	"roomline/pkg/model"
)

const TargetRooms = "rooms"

// RoomsClient resolves room existence and active state via the rooms
// service.
type RoomsClient struct {
	http    *HttpClient
	caller  *Caller
	tokenFn TokenFunc
}

func NewRoomsClient(baseURL string, timeout time.Duration, caller *Caller, tokenFn TokenFunc) *RoomsClient {
	return &RoomsClient{
		http:    NewHttpClient(baseURL, timeout),
		caller:  caller,
		tokenFn: tokenFn,
	}
}

// RoomState fetches {exists, active} for a room. The answer is
// authoritative only when the call succeeds; callers must never treat a
// failed call as "active".
func (c *RoomsClient) RoomState(ctx context.Context, roomID string) (*model.RoomState, error) {
	headers, err := authHeaders(c.tokenFn)
	if err != nil {
		return nil, err
	}

	resp, err := c.caller.Do(TargetRooms, func() (*Response, error) {
		return c.http.GET(ctx, "/api/v1/rooms/state/"+url.PathEscape(roomID), headers)
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return &model.RoomState{Exists: false, Active: false}, nil
	}
	if resp.StatusCode >= 400 {
		return nil, apperrors.DownstreamError(TargetRooms, resp.StatusCode)
	}

	var wrapper struct {
		Data model.RoomState `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, apperrors.Internal("Failed to decode room state response", err)
	}

	return &wrapper.Data, nil
}
