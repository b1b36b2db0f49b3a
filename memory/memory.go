// Package memory holds short-lived facts about subjects, such as "this
// player was feared recently and must not be feared again yet".
//
// A fact recorded at time c with ttl d is active while now < c+d. At exactly
// c+d it is already expired. Expired facts are removed lazily when they are
// looked up or when PurgeExpired is called; nothing sweeps in the background.
package memory

import (
	"time"

	"github.com/nstehr/grimoire/clock"
)

type fact struct {
	created time.Time
	ttl     time.Duration
}

func (f fact) activeAt(now time.Time) bool {
	return now.Before(f.created.Add(f.ttl))
}

// Expiring is a single-owner set of expiring facts keyed by subject.
// It is not safe for concurrent use.
type Expiring[K comparable] struct {
	clock clock.Clock
	facts map[K]fact
}

func New[K comparable](c clock.Clock) *Expiring[K] {
	return &Expiring[K]{clock: c, facts: make(map[K]fact)}
}

// Record inserts a fact or refreshes an existing one; the latest call wins.
// A non-positive ttl removes the subject.
func (m *Expiring[K]) Record(subject K, ttl time.Duration) {
	if ttl <= 0 {
		delete(m.facts, subject)
		return
	}
	m.facts[subject] = fact{created: m.clock.Now(), ttl: ttl}
}

func (m *Expiring[K]) IsActive(subject K) bool {
	f, ok := m.facts[subject]
	if !ok {
		return false
	}
	if !f.activeAt(m.clock.Now()) {
		delete(m.facts, subject)
		return false
	}
	return true
}

// Remaining returns how long the fact stays active, zero when inactive.
func (m *Expiring[K]) Remaining(subject K) time.Duration {
	if !m.IsActive(subject) {
		return 0
	}
	f := m.facts[subject]
	return f.created.Add(f.ttl).Sub(m.clock.Now())
}

// PurgeExpired drops every expired fact and returns how many were dropped.
func (m *Expiring[K]) PurgeExpired() int {
	now := m.clock.Now()
	n := 0
	for k, f := range m.facts {
		if !f.activeAt(now) {
			delete(m.facts, k)
			n++
		}
	}
	return n
}

func (m *Expiring[K]) Reset() {
	clear(m.facts)
}

// Len counts stored facts, including expired ones not yet purged.
func (m *Expiring[K]) Len() int { return len(m.facts) }
