package mockserver

import (
	"sync"
	"time"
)

// budgetWindow tracks call counts inside a fixed window so responses
// can advertise limit/remaining/used/reset headers.
type budgetWindow struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	windowStart time.Time
	used        int
}

func newBudgetWindow(limit int, window time.Duration) *budgetWindow {
	if limit < 1 {
		limit = 1
	}
	return &budgetWindow{
		limit:       limit,
		window:      window,
		windowStart: time.Now(),
	}
}

// record accounts one request and returns the current used count, the
// remaining budget, and the end of the window.
func (b *budgetWindow) record(counted bool) (used, remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.Sub(b.windowStart) >= b.window {
		b.windowStart = now
		b.used = 0
	}
	if counted {
		b.used++
	}

	remaining = b.limit - b.used
	if remaining < 0 {
		remaining = 0
	}
	return b.used, remaining, b.windowStart.Add(b.window)
}
