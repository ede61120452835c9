package ratelimit

import (
	"sync"
	"time"

	apperrors "roomline/pkg/errors"
	"roomline/pkg/logger"
)

// Limiter bounds the request rate per key over a trailing window. A key is
// the derived identity-or-IP plus endpoint string; the limiter itself does
// not care how it was built. State is process-local and not persisted.
type Limiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	log      *logger.Logger
	stopCh   chan struct{}

	now func() time.Time
}

func New(limit int, window time.Duration, log *logger.Logger) *Limiter {
	l := &Limiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		log:      log,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}

	go l.cleanup()

	return l
}

// Check prunes entries older than the window for the key, rejects if the
// pruned count has reached the limit, and otherwise records this request.
// The prune-compare-record sequence runs as one critical section, so two
// concurrent requests can never both take the last remaining slot.
func (l *Limiter) Check(key string) error {
	if key == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	timestamps := l.requests[key]

	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < l.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= l.limit {
		l.requests[key] = valid
		return apperrors.RateLimitExceeded(l.limit, l.window.String())
	}

	l.requests[key] = append(valid, now)
	return nil
}

// cleanup drops keys that have gone quiet so the map does not grow
// without bound. Check prunes lazily; this only reclaims dead keys.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, timestamps := range l.requests {
				if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) > l.window {
					delete(l.requests, key)
				}
			}
			l.mu.Unlock()
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) Stop() {
	close(l.stopCh)
}
