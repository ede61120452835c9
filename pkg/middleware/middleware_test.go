package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roomline/pkg/auth"
	"roomline/pkg/logger"
	"roomline/pkg/ratelimit"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Service: "test"})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	handler := Authenticate("secret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	handler := Authenticate("secret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticatePutsIdentityInContext(t *testing.T) {
	const secret = "test-secret"
	token, err := auth.NewServiceToken(secret, time.Minute)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	var identity *auth.Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(secret)(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if identity == nil || identity.Role != auth.RoleServiceAccount {
		t.Fatalf("expected service account identity, got %+v", identity)
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewServiceToken("other-secret", time.Minute)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	handler := Authenticate("test-secret")(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRateLimitKeyedPerIdentityAndPath(t *testing.T) {
	limiter := ratelimit.New(2, time.Minute, testLogger())
	defer limiter.Stop()
	handler := RateLimit(limiter, testLogger())(okHandler())

	send := func(userID, path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(ContextWithIdentity(req.Context(), &auth.Identity{
			UserID: userID,
			Role:   auth.RoleRegular,
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("user-1", "/api/v1/bookings"); code != http.StatusOK {
		t.Fatalf("request 1: expected 200, got %d", code)
	}
	if code := send("user-1", "/api/v1/bookings"); code != http.StatusOK {
		t.Fatalf("request 2: expected 200, got %d", code)
	}
	if code := send("user-1", "/api/v1/bookings"); code != http.StatusTooManyRequests {
		t.Fatalf("request 3: expected 429, got %d", code)
	}

	// A different user and a different endpoint both have their own budget.
	if code := send("user-2", "/api/v1/bookings"); code != http.StatusOK {
		t.Fatalf("other user: expected 200, got %d", code)
	}
	if code := send("user-1", "/api/v1/rooms"); code != http.StatusOK {
		t.Fatalf("other path: expected 200, got %d", code)
	}
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	limiter := ratelimit.New(1, time.Minute, testLogger())
	defer limiter.Stop()
	handler := RateLimit(limiter, testLogger())(okHandler())

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("10.0.0.1:5000"); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := send("10.0.0.1:6000"); code != http.StatusTooManyRequests {
		t.Fatalf("same IP new port: expected 429, got %d", code)
	}
	if code := send("10.0.0.2:5000"); code != http.StatusOK {
		t.Fatalf("different IP: expected 200, got %d", code)
	}
}

func TestRequireJSONRejectsMissingContentType(t *testing.T) {
	handler := RequireJSON(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestRequireJSONAllowsGetWithoutContentType(t *testing.T) {
	handler := RequireJSON(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
