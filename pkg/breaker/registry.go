package breaker

import (
	"sync"

	"roomline/pkg/logger"
)

// Registry hands out one Breaker per downstream target name. Breakers are
// created lazily on first use and live for the process lifetime.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
	settings Settings
	log      *logger.Logger
}

func NewRegistry(settings Settings, log *logger.Logger) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		settings: settings,
		log:      log,
	}
}

func (r *Registry) Get(target string) *Breaker {
	r.mu.RLock()
	b, exists := r.breakers[target]
	r.mu.RUnlock()

	if exists {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check: another goroutine may have created it
	if b, exists = r.breakers[target]; exists {
		return b
	}

	b = New(target, r.settings, r.log)
	r.breakers[target] = b
	return b
}

// States reports the current state of every known breaker, for
// health/diagnostics endpoints.
func (r *Registry) States() map[string]State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[string]State, len(r.breakers))
	for target, b := range r.breakers {
		states[target] = b.State()
	}
	return states
}
