package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestUnitAuraHelpers(t *testing.T) {
	u := Unit{
		Health:    30,
		MaxHealth: 100,
		Auras: []Aura{
			{Spell: Corruption, Remaining: 9, Mine: false},
			{Spell: Corruption, Remaining: 4, Mine: true},
			{Spell: MoltenCore, Stacks: 3, Mine: true},
		},
	}

	if !u.HasAura(Corruption) || !u.HasMyAura(Corruption) {
		t.Fatalf("expected Corruption to be present and ours")
	}
	if got := u.AuraRemaining(Corruption); got != 4 {
		t.Errorf("AuraRemaining prefers our aura: got %v, want 4", got)
	}
	if got := u.AuraRemaining(Doom); got != 0 {
		t.Errorf("AuraRemaining on missing aura = %v, want 0", got)
	}
	if got := u.AuraStacks(MoltenCore, true); got != 3 {
		t.Errorf("AuraStacks = %d, want 3", got)
	}
	if u.HasMyAura(Doom) {
		t.Errorf("Doom should not be present")
	}
}

func TestUnitHealthHelpers(t *testing.T) {
	tests := []struct {
		name    string
		unit    Unit
		greater bool // HpGreaterThanOrElite(0.5)
		less    bool // HpLessThanOrElite(0.5)
	}{
		{"healthy", Unit{Health: 80, MaxHealth: 100}, true, false},
		{"low", Unit{Health: 20, MaxHealth: 100}, false, true},
		{"elite low", Unit{Health: 20, MaxHealth: 100, Elite: true}, true, true},
		{"zero max", Unit{Health: 0, MaxHealth: 0}, false, true},
	}
	for _, tc := range tests {
		if got := tc.unit.HpGreaterThanOrElite(0.5); got != tc.greater {
			t.Errorf("%s: HpGreaterThanOrElite = %v, want %v", tc.name, got, tc.greater)
		}
		if got := tc.unit.HpLessThanOrElite(0.5); got != tc.less {
			t.Errorf("%s: HpLessThanOrElite = %v, want %v", tc.name, got, tc.less)
		}
	}
}

func TestSnapshotSpellInfoUnavailable(t *testing.T) {
	s := Snapshot{Spells: map[Spell]SpellInfo{Agony: {MaxRange: 40}}}
	if _, err := s.SpellInfo(Haunt); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	info, err := s.SpellInfo(Agony)
	if err != nil || info.MaxRangeSq() != 1600 {
		t.Errorf("SpellInfo(Agony) = %+v, %v", info, err)
	}
}

func TestSpellInfoReady(t *testing.T) {
	tests := []struct {
		info SpellInfo
		want bool
	}{
		{SpellInfo{}, true},
		{SpellInfo{Cooldown: 3}, false},
		{SpellInfo{MaxCharges: 2, Charges: 0, Cooldown: 5}, false},
		{SpellInfo{MaxCharges: 2, Charges: 1, Cooldown: 5}, true},
	}
	for _, tc := range tests {
		if got := tc.info.Ready(); got != tc.want {
			t.Errorf("%+v.Ready() = %v, want %v", tc.info, got, tc.want)
		}
	}
}

func TestSnapshotUnitLookup(t *testing.T) {
	s := Snapshot{
		Me:     Unit{GUID: "me"},
		Target: &Unit{GUID: "boss"},
		Adds:   []Unit{{GUID: "a1"}, {GUID: "a2", Name: "second"}},
	}
	if u, ok := s.Unit("a2"); !ok || u.Name != "second" {
		t.Errorf("Unit(a2) = %+v, %v", u, ok)
	}
	if _, ok := s.Unit(""); ok {
		t.Errorf("empty GUID must not resolve")
	}
	if _, ok := s.Unit("nobody"); ok {
		t.Errorf("unknown GUID must not resolve")
	}
}

func TestSnapshotDecodesSpellKeys(t *testing.T) {
	raw := `{"tick":7,"me":{"guid":"me","health":50,"max_health":100},
		"spells":{"Hand of Gul'dan":{"max_range":40,"charges":2,"max_charges":2}}}`
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	info, ok := s.Spells[HandOfGuldan]
	if !ok || info.Charges != 2 {
		t.Errorf("spell map = %+v", s.Spells)
	}
}

func TestKnownSpell(t *testing.T) {
	if s, ok := KnownSpell("hand of gul'dan"); !ok || s != HandOfGuldan {
		t.Errorf("KnownSpell case-insensitive lookup failed: %q, %v", s, ok)
	}
	if _, ok := KnownSpell("Fireball"); ok {
		t.Errorf("Fireball is not a warlock spell")
	}
	if len(KnownSpells()) == 0 {
		t.Errorf("KnownSpells is empty")
	}
}

func TestVec3CountWithin(t *testing.T) {
	origin := Vec3{}
	pts := []Vec3{{X: 1}, {X: 3}, {X: 0, Y: 2}, {X: 10}}
	if got := origin.CountWithin(pts, 4); got != 2 {
		t.Errorf("CountWithin = %d, want 2", got)
	}
}
