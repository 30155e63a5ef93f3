package loginstate

import (
	"fmt"
	"sync"
	"time"
)

const defaultCapacity = 256

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo keeps issued attempts in memory. When full, expired attempts
// are dropped first and then the oldest one.
type InMemoryRepo struct {
	mu       sync.Mutex
	attempts map[string]Attempt
	capacity int
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		attempts: make(map[string]Attempt),
		capacity: defaultCapacity,
	}
}

func (r *InMemoryRepo) Issue(attempt Attempt) error {
	if attempt.State == "" {
		return fmt.Errorf("state is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.attempts) >= r.capacity {
		r.evictLocked(attempt.CreatedAt)
	}
	r.attempts[attempt.State] = attempt
	return nil
}

func (r *InMemoryRepo) Take(state string, now time.Time) (Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempt, ok := r.attempts[state]
	if !ok {
		return Attempt{}, ErrUnknownState
	}
	delete(r.attempts, state)

	if now.After(attempt.ExpiresAt) {
		return Attempt{}, ErrStateExpired
	}
	return attempt, nil
}

// Len reports how many attempts are outstanding.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}

func (r *InMemoryRepo) evictLocked(now time.Time) {
	var oldest string
	for state, a := range r.attempts {
		if now.After(a.ExpiresAt) {
			delete(r.attempts, state)
			continue
		}
		if oldest == "" || a.CreatedAt.Before(r.attempts[oldest].CreatedAt) {
			oldest = state
		}
	}
	if len(r.attempts) >= r.capacity && oldest != "" {
		delete(r.attempts, oldest)
	}
}
