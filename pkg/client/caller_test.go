package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roomline/pkg/breaker"
	apperrors "roomline/pkg/errors"
	"roomline/pkg/logger"
)

func testCaller(t *testing.T, threshold int) (*Caller, *breaker.Registry) {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Service: "test"})
	registry := breaker.NewRegistry(breaker.Settings{
		FailureThreshold:  threshold,
		OpenTimeout:       30 * time.Second,
		HalfOpenMaxProbes: 1,
	}, log)
	return NewCaller(registry, CallerOptions{Retries: 1}, log), registry
}

func respWithStatus(code int) *Response {
	return &Response{Response: &http.Response{StatusCode: code}}
}

func TestCallerClassifiesServerError(t *testing.T) {
	caller, registry := testCaller(t, 3)

	_, err := caller.Do("rooms", func() (*Response, error) {
		return respWithStatus(http.StatusInternalServerError), nil
	})
	if !apperrors.HasCode(err, apperrors.CodeDownstreamError) {
		t.Fatalf("expected DOWNSTREAM_ERROR, got %v", err)
	}

	appErr := apperrors.AsAppError(err)
	if got := appErr.Details["upstream_status"]; got != http.StatusInternalServerError {
		t.Errorf("expected upstream status in details, got %v", got)
	}
	if registry.Get("rooms").ConsecutiveFailures() != 1 {
		t.Error("expected one recorded breaker failure")
	}
}

func TestCallerPassesClientErrorsThrough(t *testing.T) {
	caller, registry := testCaller(t, 3)

	resp, err := caller.Do("rooms", func() (*Response, error) {
		return respWithStatus(http.StatusNotFound), nil
	})
	if err != nil {
		t.Fatalf("4xx must pass through as a valid answer, got %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if registry.Get("rooms").ConsecutiveFailures() != 0 {
		t.Error("4xx must not count as a breaker failure")
	}
}

func TestCallerFourXXResetsFailureStreak(t *testing.T) {
	caller, registry := testCaller(t, 3)

	caller.Do("rooms", func() (*Response, error) { return respWithStatus(500), nil })
	caller.Do("rooms", func() (*Response, error) { return respWithStatus(500), nil })
	caller.Do("rooms", func() (*Response, error) { return respWithStatus(400), nil })
	caller.Do("rooms", func() (*Response, error) { return respWithStatus(500), nil })
	caller.Do("rooms", func() (*Response, error) { return respWithStatus(500), nil })

	if got := registry.Get("rooms").State(); got != breaker.StateClosed {
		t.Fatalf("interleaved 4xx must keep the breaker CLOSED, got %s", got)
	}
}

func TestCallerRetriesTransportFailureOnce(t *testing.T) {
	caller, registry := testCaller(t, 3)

	attempts := 0
	resp, err := caller.Do("users", func() (*Response, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("connection refused")
		}
		return respWithStatus(http.StatusOK), nil
	})
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if registry.Get("users").ConsecutiveFailures() != 0 {
		t.Error("recovered retry must not count as a breaker failure")
	}
}

func TestCallerRetriesExhaustedCountOnce(t *testing.T) {
	caller, registry := testCaller(t, 3)

	attempts := 0
	_, err := caller.Do("users", func() (*Response, error) {
		attempts++
		return nil, errors.New("connection refused")
	})
	if !apperrors.HasCode(err, apperrors.CodeDownstreamUnavail) {
		t.Fatalf("expected DOWNSTREAM_UNAVAILABLE, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if registry.Get("users").ConsecutiveFailures() != 1 {
		t.Errorf("a retried call must count as one breaker failure, got %d",
			registry.Get("users").ConsecutiveFailures())
	}
}

func TestCallerOpenCircuitSkipsNetwork(t *testing.T) {
	caller, _ := testCaller(t, 3)

	calls := 0
	fail := func() (*Response, error) {
		calls++
		return nil, errors.New("connection refused")
	}

	for i := 0; i < 3; i++ {
		caller.Do("rooms", fail)
	}
	// 3 calls x 2 attempts each
	if calls != 6 {
		t.Fatalf("expected 6 attempts before opening, got %d", calls)
	}

	_, err := caller.Do("rooms", fail)
	if !apperrors.HasCode(err, apperrors.CodeCircuitOpen) {
		t.Fatalf("expected CIRCUIT_OPEN, got %v", err)
	}
	if calls != 6 {
		t.Fatalf("open circuit must not attempt the network, got %d attempts", calls)
	}
}

func TestUsersClientUserExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer probe-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/v1/users/id/u-1":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"data":{"id":"u-1"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	caller, _ := testCaller(t, 3)
	tokenFn := func() (string, error) { return "probe-token", nil }
	usersClient := NewUsersClient(server.URL, 2*time.Second, caller, tokenFn)

	exists, err := usersClient.UserExists(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("u-1: %v", err)
	}
	if !exists {
		t.Error("expected u-1 to exist")
	}

	exists, err = usersClient.UserExists(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("ghost: %v", err)
	}
	if exists {
		t.Error("expected ghost to not exist")
	}
}

func TestRoomsClientRoomState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/rooms/state/r-1":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"data":{"exists":true,"active":false}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	caller, registry := testCaller(t, 3)
	roomsClient := NewRoomsClient(server.URL, 2*time.Second, caller, nil)

	state, err := roomsClient.RoomState(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("r-1: %v", err)
	}
	if !state.Exists || state.Active {
		t.Errorf("expected exists=true active=false, got %+v", state)
	}

	state, err = roomsClient.RoomState(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("ghost: %v", err)
	}
	if state.Exists {
		t.Error("expected ghost room to not exist")
	}

	if registry.Get(TargetRooms).State() != breaker.StateClosed {
		t.Error("successful lookups must keep the breaker CLOSED")
	}
}
