package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	apperrors "roomline/pkg/errors"
)

// TokenFunc supplies a fresh service-account bearer token for outbound
// calls. A nil TokenFunc sends unauthenticated requests.
type TokenFunc func() (string, error)

func authHeaders(tokenFn TokenFunc) (map[string]string, error) {
	if tokenFn == nil {
		return nil, nil
	}
	token, err := tokenFn()
	if err != nil {
		return nil, apperrors.Internal("Failed to mint service token", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

const TargetUsers = "users"

// UsersClient asks the users service whether a user exists. The users
// service itself lives outside this module.
type UsersClient struct {
	http    *HttpClient
	caller  *Caller
	tokenFn TokenFunc
}

func NewUsersClient(baseURL string, timeout time.Duration, caller *Caller, tokenFn TokenFunc) *UsersClient {
	return &UsersClient{
		http:    NewHttpClient(baseURL, timeout),
		caller:  caller,
		tokenFn: tokenFn,
	}
}

// UserExists resolves a user ID to an existence answer. A 404 from the
// users service is an authoritative "no", not a failure.
func (c *UsersClient) UserExists(ctx context.Context, userID string) (bool, error) {
	headers, err := authHeaders(c.tokenFn)
	if err != nil {
		return false, err
	}

	resp, err := c.caller.Do(TargetUsers, func() (*Response, error) {
		return c.http.GET(ctx, "/api/v1/users/id/"+url.PathEscape(userID), headers)
	})
	if err != nil {
		return false, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 400:
		return false, apperrors.DownstreamError(TargetUsers, resp.StatusCode)
	default:
		return true, nil
	}
}
