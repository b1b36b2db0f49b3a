// Package clock abstracts the monotonic time source used for TTL and
// debounce math so the evaluator can be driven deterministically.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Real reads the wall clock. time.Now carries a monotonic reading, so
// differences between two Real timestamps are immune to clock jumps.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Manual only moves when told to. Used by the simulator and tests.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
