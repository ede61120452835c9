package service

import "sync"

// roomMutexes serializes writers of the same room within this process.
// The cross-instance advisory lock in the repository still applies; this
// layer just keeps local contenders from burning lock-acquisition retries
// against each other.
type roomMutexes struct {
	mu      sync.Mutex
	mutexes map[string]*sync.Mutex
}

func newRoomMutexes() *roomMutexes {
	return &roomMutexes{
		mutexes: make(map[string]*sync.Mutex),
	}
}

func (r *roomMutexes) lock(roomID string) *sync.Mutex {
	r.mu.Lock()
	m, ok := r.mutexes[roomID]
	if !ok {
		m = &sync.Mutex{}
		r.mutexes[roomID] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m
}
