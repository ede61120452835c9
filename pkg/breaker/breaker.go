package breaker

import (
	"sync"
	"time"

	apperrors "roomline/pkg/errors"
	"roomline/pkg/logger"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Settings configures a breaker for one downstream target.
type Settings struct {
	FailureThreshold  int
	OpenTimeout       time.Duration
	HalfOpenMaxProbes int
}

// Breaker is a three-state circuit breaker guarding calls to one target
// service. All state is process-local and mutated only under the mutex.
type Breaker struct {
	mu       sync.Mutex
	target   string
	settings Settings
	log      *logger.Logger

	state               State
	consecutiveFailures int
	openedAt            time.Time
	probesInFlight      int

	now func() time.Time
}

func New(target string, settings Settings, log *logger.Logger) *Breaker {
	return &Breaker{
		target:   target,
		settings: settings,
		log:      log,
		state:    StateClosed,
		now:      time.Now,
	}
}

// Allow decides whether a call may proceed. In OPEN state it admits the
// first call after OpenTimeout as a half-open probe; in HALF_OPEN it
// admits up to HalfOpenMaxProbes concurrent probes. Every admitted call
// must be followed by exactly one OnSuccess or OnFailure.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.settings.OpenTimeout {
			return apperrors.CircuitOpen(b.target)
		}
		b.transition(StateHalfOpen)
		b.probesInFlight = 1
		return nil

	case StateHalfOpen:
		if b.probesInFlight >= b.settings.HalfOpenMaxProbes {
			return apperrors.CircuitOpen(b.target)
		}
		b.probesInFlight++
		return nil

	default:
		return nil
	}
}

// OnSuccess records a successful call. A half-open probe success closes
// the breaker and resets the failure count.
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.probesInFlight--
		b.consecutiveFailures = 0
		b.transition(StateClosed)
	case StateClosed:
		b.consecutiveFailures = 0
	default:
		// Success reported after the breaker re-opened (late probe
		// bookkeeping); the OPEN verdict stands until the next timeout.
	}
}

// OnFailure records a failed call: connection error, timeout, or a
// 5xx-equivalent response. 4xx responses must not be reported here.
func (b *Breaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.probesInFlight--
		b.consecutiveFailures++
		b.openedAt = b.now()
		b.transition(StateOpen)
	case StateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.settings.FailureThreshold {
			b.openedAt = b.now()
			b.transition(StateOpen)
		}
	default:
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) ConsecutiveFailures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveFailures
}

// transition must be called with the mutex held.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.log != nil {
		b.log.Info("Circuit breaker state transition",
			"target", b.target,
			"from", from.String(),
			"to", to.String(),
			"consecutive_failures", b.consecutiveFailures,
		)
	}
}
