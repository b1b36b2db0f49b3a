// Package gate wraps a candidate action with its trigger predicate and an
// optional debounce window.
package gate

import (
	"time"

	"github.com/nstehr/grimoire/clock"
)

// Gate owns the debounce locks for one evaluator. Not safe for concurrent use.
type Gate struct {
	clock clock.Clock
	locks map[string]time.Time
}

func New(c clock.Clock) *Gate {
	return &Gate{clock: c, locks: make(map[string]time.Time)}
}

// Attempt evaluates pred and, when it holds and the action is not locked,
// runs side. With debounce > 0 the lock for actionID is refreshed only when
// side reports success. Errors from either callback are returned unchanged
// and never touch the lock.
func (g *Gate) Attempt(actionID string, pred func() (bool, error), debounce time.Duration, side func() (bool, error)) (bool, error) {
	ok, err := pred()
	if err != nil || !ok {
		return false, err
	}
	if debounce > 0 && g.Locked(actionID, debounce) {
		return false, nil
	}
	fired, err := side()
	if err != nil || !fired {
		return false, err
	}
	if debounce > 0 {
		g.locks[actionID] = g.clock.Now()
	}
	return true, nil
}

// Locked reports whether actionID fired less than debounce ago.
func (g *Gate) Locked(actionID string, debounce time.Duration) bool {
	last, ok := g.locks[actionID]
	if !ok {
		return false
	}
	return g.clock.Now().Sub(last) < debounce
}

func (g *Gate) Reset() {
	clear(g.locks)
}
