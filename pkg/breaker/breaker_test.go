package breaker

import (
	"sync"
	"testing"
	"time"

	apperrors "roomline/pkg/errors"
	"roomline/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func testBreaker(t *testing.T, settings Settings) (*Breaker, *time.Time) {
	t.Helper()
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	b := New("rooms", settings, testLogger())
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b, _ := testBreaker(t, Settings{FailureThreshold: 3, OpenTimeout: 30 * time.Second, HalfOpenMaxProbes: 1})

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("call %d: expected admission, got %v", i+1, err)
		}
		b.OnFailure()
	}

	if got := b.State(); got != StateOpen {
		t.Fatalf("expected OPEN after 3 failures, got %s", got)
	}

	err := b.Allow()
	if err == nil {
		t.Fatal("expected rejection while open")
	}
	if !apperrors.HasCode(err, apperrors.CodeCircuitOpen) {
		t.Fatalf("expected CIRCUIT_OPEN, got %v", err)
	}
}

func TestBreakerFailuresBelowThresholdStayClosed(t *testing.T) {
	b, _ := testBreaker(t, Settings{FailureThreshold: 3, OpenTimeout: 30 * time.Second, HalfOpenMaxProbes: 1})

	b.OnFailure()
	b.OnFailure()
	if got := b.State(); got != StateClosed {
		t.Fatalf("expected CLOSED after 2 failures, got %s", got)
	}

	// A success resets the consecutive counter.
	b.OnSuccess()
	b.OnFailure()
	b.OnFailure()
	if got := b.State(); got != StateClosed {
		t.Fatalf("expected CLOSED after reset and 2 failures, got %s", got)
	}
	if got := b.ConsecutiveFailures(); got != 2 {
		t.Fatalf("expected 2 consecutive failures, got %d", got)
	}
}

func TestBreakerHalfOpenProbeSuccessCloses(t *testing.T) {
	b, now := testBreaker(t, Settings{FailureThreshold: 3, OpenTimeout: 30 * time.Second, HalfOpenMaxProbes: 1})

	for i := 0; i < 3; i++ {
		b.OnFailure()
	}

	*now = now.Add(30 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe admission after open timeout, got %v", err)
	}
	if got := b.State(); got != StateHalfOpen {
		t.Fatalf("expected HALF_OPEN, got %s", got)
	}

	b.OnSuccess()
	if got := b.State(); got != StateClosed {
		t.Fatalf("expected CLOSED after probe success, got %s", got)
	}
	if got := b.ConsecutiveFailures(); got != 0 {
		t.Fatalf("expected failure count reset, got %d", got)
	}
}

func TestBreakerHalfOpenProbeFailureReopens(t *testing.T) {
	b, now := testBreaker(t, Settings{FailureThreshold: 3, OpenTimeout: 30 * time.Second, HalfOpenMaxProbes: 1})

	for i := 0; i < 3; i++ {
		b.OnFailure()
	}
	*now = now.Add(30 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe admission, got %v", err)
	}
	b.OnFailure()

	if got := b.State(); got != StateOpen {
		t.Fatalf("expected OPEN after probe failure, got %s", got)
	}

	// The open timeout restarts from the probe failure.
	*now = now.Add(29 * time.Second)
	if err := b.Allow(); err == nil {
		t.Fatal("expected rejection before restarted timeout elapses")
	}

	*now = now.Add(1 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe admission after restarted timeout, got %v", err)
	}
}

func TestBreakerHalfOpenProbeGate(t *testing.T) {
	b, now := testBreaker(t, Settings{FailureThreshold: 1, OpenTimeout: 10 * time.Second, HalfOpenMaxProbes: 2})

	b.OnFailure()
	*now = now.Add(10 * time.Second)

	// First admission transitions to HALF_OPEN and counts as one probe.
	if err := b.Allow(); err != nil {
		t.Fatalf("probe 1: %v", err)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("probe 2: %v", err)
	}
	if err := b.Allow(); err == nil {
		t.Fatal("expected rejection beyond the probe gate")
	}

	// Finishing one probe frees a slot.
	b.OnSuccess()
	if got := b.State(); got != StateClosed {
		t.Fatalf("expected CLOSED after probe success, got %s", got)
	}
}

func TestBreakerConcurrentFailures(t *testing.T) {
	b, _ := testBreaker(t, Settings{FailureThreshold: 50, OpenTimeout: 10 * time.Second, HalfOpenMaxProbes: 1})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.OnFailure()
		}()
	}
	wg.Wait()

	if got := b.ConsecutiveFailures(); got != 50 {
		t.Fatalf("expected 50 consecutive failures, got %d", got)
	}
	if got := b.State(); got != StateOpen {
		t.Fatalf("expected OPEN, got %s", got)
	}
}

func TestRegistryReturnsSameBreakerPerTarget(t *testing.T) {
	r := NewRegistry(Settings{FailureThreshold: 3, OpenTimeout: 30 * time.Second, HalfOpenMaxProbes: 1}, testLogger())

	users := r.Get("users")
	rooms := r.Get("rooms")

	if users == rooms {
		t.Fatal("expected distinct breakers per target")
	}
	if r.Get("users") != users {
		t.Fatal("expected the same breaker on repeated lookups")
	}

	users.OnFailure()
	users.OnFailure()
	users.OnFailure()

	states := r.States()
	if states["users"] != StateOpen {
		t.Fatalf("expected users OPEN, got %s", states["users"])
	}
	if states["rooms"] != StateClosed {
		t.Fatalf("expected rooms CLOSED, got %s", states["rooms"])
	}
}

func TestRegistryConcurrentGet(t *testing.T) {
	r := NewRegistry(Settings{FailureThreshold: 3, OpenTimeout: 30 * time.Second, HalfOpenMaxProbes: 1}, testLogger())

	results := make([]*Breaker, 20)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = r.Get("bookings")
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent Get returned different breaker instances")
		}
	}
}
