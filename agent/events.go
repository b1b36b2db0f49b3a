package agent

import (
	"fmt"

	"github.com/nstehr/grimoire/model"
)

// EventKind identifies a session transition detected between two snapshots.
type EventKind string

const (
	EventCombatStarted EventKind = "combat_started"
	EventCombatEnded   EventKind = "combat_ended"
	EventPetLost       EventKind = "pet_lost"
	EventPetSummoned   EventKind = "pet_summoned"
	EventTargetChanged EventKind = "target_changed"
)

// Event is a transition detected by diffing consecutive snapshots.
type Event struct {
	Kind   EventKind
	Tick   int
	Detail string
}

// stateSnapshot captures the diffable fields of a tick.
type stateSnapshot struct {
	inCombat bool
	petAlive bool
	petName  string
	target   string
}

func takeSnapshot(s model.Snapshot) stateSnapshot {
	snap := stateSnapshot{inCombat: s.InCombat, petAlive: s.HasAlivePet()}
	if s.Pet != nil {
		snap.petName = s.Pet.Name
	}
	if s.Target != nil {
		snap.target = s.Target.GUID
	}
	return snap
}

// detectEvents compares s against the previous tick. Returns nil on the
// first tick of a session.
func detectEvents(s model.Snapshot, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}
	cur := takeSnapshot(s)
	var events []Event

	switch {
	case !prev.inCombat && cur.inCombat:
		events = append(events, Event{Kind: EventCombatStarted, Tick: s.Tick, Detail: "entered combat"})
	case prev.inCombat && !cur.inCombat:
		events = append(events, Event{Kind: EventCombatEnded, Tick: s.Tick, Detail: "left combat"})
	}

	switch {
	case prev.petAlive && !cur.petAlive:
		events = append(events, Event{Kind: EventPetLost, Tick: s.Tick, Detail: fmt.Sprintf("lost %s", prev.petName)})
	case !prev.petAlive && cur.petAlive:
		events = append(events, Event{Kind: EventPetSummoned, Tick: s.Tick, Detail: fmt.Sprintf("%s is up", cur.petName)})
	}

	if cur.target != "" && prev.target != cur.target {
		events = append(events, Event{
			Kind:   EventTargetChanged,
			Tick:   s.Tick,
			Detail: fmt.Sprintf("target %s -> %s", orNone(prev.target), cur.target),
		})
	}
	return events
}

func orNone(guid string) string {
	if guid == "" {
		return "none"
	}
	return guid
}
