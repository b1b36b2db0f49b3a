package agent

import (
	"testing"

	"github.com/nstehr/grimoire/model"
)

// baseSnapshot returns an out-of-combat tick with an imp and a target.
func baseSnapshot(tick int) model.Snapshot {
	return model.Snapshot{
		Tick:   tick,
		Me:     model.Unit{GUID: "me", Health: 100, MaxHealth: 100},
		Pet:    &model.Unit{GUID: "pet", Name: "Imp", Health: 50, MaxHealth: 50},
		Target: &model.Unit{GUID: "boar", Health: 30, MaxHealth: 30},
	}
}

func kinds(events []Event) []EventKind {
	var out []EventKind
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestDetectEvents_NilPrev(t *testing.T) {
	if events := detectEvents(baseSnapshot(1), nil); events != nil {
		t.Errorf("expected nil events for nil prev, got %+v", events)
	}
}

func TestDetectEvents_NoEvents(t *testing.T) {
	prev := takeSnapshot(baseSnapshot(1))
	if events := detectEvents(baseSnapshot(2), &prev); len(events) != 0 {
		t.Errorf("expected 0 events, got %+v", events)
	}
}

func TestDetectEvents_CombatTransitions(t *testing.T) {
	prev := takeSnapshot(baseSnapshot(1))
	s := baseSnapshot(2)
	s.InCombat = true
	events := detectEvents(s, &prev)
	if len(events) != 1 || events[0].Kind != EventCombatStarted || events[0].Tick != 2 {
		t.Fatalf("expected combat_started at tick 2, got %+v", events)
	}

	prev = takeSnapshot(s)
	s = baseSnapshot(3)
	events = detectEvents(s, &prev)
	if len(events) != 1 || events[0].Kind != EventCombatEnded {
		t.Fatalf("expected combat_ended, got %+v", events)
	}
}

func TestDetectEvents_PetLifecycle(t *testing.T) {
	prev := takeSnapshot(baseSnapshot(1))
	s := baseSnapshot(2)
	s.Pet.Health = 0
	events := detectEvents(s, &prev)
	if len(events) != 1 || events[0].Kind != EventPetLost || events[0].Detail != "lost Imp" {
		t.Fatalf("expected pet_lost for the imp, got %+v", events)
	}

	prev = takeSnapshot(s)
	s = baseSnapshot(3)
	s.Pet = &model.Unit{GUID: "pet2", Name: "Voidwalker", Health: 80, MaxHealth: 80}
	events = detectEvents(s, &prev)
	if len(events) != 1 || events[0].Kind != EventPetSummoned {
		t.Fatalf("expected pet_summoned, got %+v", events)
	}
}

func TestDetectEvents_TargetChanged(t *testing.T) {
	first := baseSnapshot(1)
	first.Target = nil
	prev := takeSnapshot(first)

	s := baseSnapshot(2)
	events := detectEvents(s, &prev)
	if len(events) != 1 || events[0].Detail != "target none -> boar" {
		t.Fatalf("expected target change from none, got %+v", events)
	}

	// Dropping the target is not a change worth reporting.
	prev = takeSnapshot(s)
	s = baseSnapshot(3)
	s.Target = nil
	if events := detectEvents(s, &prev); len(events) != 0 {
		t.Errorf("expected no events when the target is cleared, got %+v", kinds(events))
	}
}

func TestDetectEvents_Multiple(t *testing.T) {
	prev := takeSnapshot(baseSnapshot(1))
	s := baseSnapshot(2)
	s.InCombat = true
	s.Pet = nil
	s.Target = &model.Unit{GUID: "wolf"}
	got := kinds(detectEvents(s, &prev))
	want := []EventKind{EventCombatStarted, EventPetLost, EventTargetChanged}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}
