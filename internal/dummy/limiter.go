package dummy

import (
	"sync"
	"time"
)

// Limiter is a fixed-window counter per key. Windows are aligned to
// multiples of the window length, so with a one minute window every count
// resets at second 0.
type Limiter struct {
	window     time.Duration
	staleAfter time.Duration
	now        func() time.Time

	mu        sync.Mutex
	states    map[string]*windowState
	lastSweep time.Time
}

type windowState struct {
	count    int
	start    time.Time
	lastUsed time.Time
}

// Decision is the result of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

func NewLimiter(window time.Duration, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		window:     window,
		staleAfter: 10 * time.Minute,
		now:        now,
		states:     make(map[string]*windowState),
	}
}

// Allow counts one request for key against limit.
func (l *Limiter) Allow(key string, limit int) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	start := now.Truncate(l.window)

	st, ok := l.states[key]
	if !ok {
		st = &windowState{start: start}
		l.states[key] = st
	}
	st.lastUsed = now
	l.sweep(now)

	if !st.start.Equal(start) {
		st.count = 0
		st.start = start
	}

	d := Decision{Limit: limit, Reset: start.Add(l.window)}
	if st.count >= limit {
		return d
	}
	st.count++

	d.Allowed = true
	d.Remaining = limit - st.count
	return d
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.states)
}

// sweep drops keys idle for longer than staleAfter. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < time.Minute {
		return
	}
	l.lastSweep = now
	for k, st := range l.states {
		if now.Sub(st.lastUsed) >= l.staleAfter {
			delete(l.states, k)
		}
	}
}
