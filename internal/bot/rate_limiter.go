package bot

import (
	"sync"
	"time"
)

const (
	defaultMaxCommands = 5
	defaultWindow      = 60 * time.Second
)

// RateLimiter caps commands per Discord user within a sliding window.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter allows max commands per window. Zero values select the
// defaults.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	if max <= 0 {
		max = defaultMaxCommands
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

func (r *RateLimiter) Allow(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)

	timestamps := r.requests[userID]
	pruned := timestamps[:0]
	for _, t := range timestamps {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}

	if len(pruned) >= r.max {
		r.requests[userID] = pruned
		return false
	}

	r.requests[userID] = append(pruned, now)
	return true
}

// Sweep forgets users with no command inside the window.
func (r *RateLimiter) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.window)
	removed := 0
	for user, timestamps := range r.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(r.requests, user)
			removed++
		}
	}
	return removed
}
