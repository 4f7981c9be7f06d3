// Package ratelimit tracks the call budget reported by the remote API
// through response headers. One State is shared by every request a client
// issues, so access is mutex-guarded.
package ratelimit

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the observed rate limit metadata.
// Fields are pointers because no metadata exists until the first response.
type Snapshot struct {
	Limit     *int
	Remaining *int
	Used      *int
	Reset     *time.Time
}

// State is the rate limit bookkeeping shared across one client's requests.
type State struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewState creates an empty State.
func NewState() *State {
	return &State{}
}

// Update records metadata from the latest response. Nil fields leave the
// previous observation in place.
func (s *State) Update(limit, remaining, used *int, reset *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit != nil {
		s.snap.Limit = limit
	}
	if remaining != nil {
		s.snap.Remaining = remaining
	}
	if used != nil {
		s.snap.Used = used
	}
	if reset != nil {
		s.snap.Reset = reset
	}
}

// Snapshot returns a copy of the current observation.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Exhausted reports whether the remaining budget is known to be spent.
func (s *State) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Remaining != nil && *s.snap.Remaining <= 0
}

// WaitDuration returns how long to wait for the budget to reset, relative to
// now. Zero when the budget is not exhausted or no reset time is known.
func (s *State) WaitDuration(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Remaining == nil || *s.snap.Remaining > 0 {
		return 0
	}
	if s.snap.Reset == nil {
		return 0
	}
	d := s.snap.Reset.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
