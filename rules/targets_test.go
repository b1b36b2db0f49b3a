package rules

import (
	"errors"
	"testing"

	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/model"
)

func keepAll(model.Unit) bool { return true }

func guids(units []model.Unit) []string {
	var out []string
	for _, u := range units {
		out = append(out, u.GUID)
	}
	return out
}

func TestHavocTarget(t *testing.T) {
	add := func(guid string, health int) model.Unit {
		return model.Unit{GUID: guid, Health: health, MaxHealth: 100, InLoS: true, Relation: model.RelationEnemy}
	}
	havoc := map[model.Spell]model.SpellInfo{model.Havoc: {MaxRange: 40}}

	tests := []struct {
		name    string
		focus   bool
		snap    model.Snapshot
		want    []string
		wantErr error
	}{
		{
			name: "healthiest add under threshold",
			snap: model.Snapshot{Spells: havoc, Adds: []model.Unit{add("a", 90), add("b", 35), add("c", 20)}},
			want: []string{"b"},
		},
		{
			name: "first add when none qualifies",
			snap: model.Snapshot{Spells: havoc, Adds: []model.Unit{add("a", 90), add("b", 80)}},
			want: []string{"a"},
		},
		{
			name:  "enemy focus",
			focus: true,
			snap:  model.Snapshot{Focus: &model.Unit{GUID: "f", Relation: model.RelationEnemy}},
			want:  []string{"f"},
		},
		{
			name:  "friendly focus resolves to its target",
			focus: true,
			snap: model.Snapshot{
				Focus: &model.Unit{GUID: "healer", Relation: model.RelationAlly, TargetGUID: "a"},
				Adds:  []model.Unit{add("a", 50)},
			},
			want: []string{"a"},
		},
		{
			name:  "friendly focus without a target",
			focus: true,
			snap:  model.Snapshot{Focus: &model.Unit{GUID: "healer", Relation: model.RelationAlly}},
		},
		{
			name:    "friendly focus target unknown to the snapshot",
			focus:   true,
			snap:    model.Snapshot{Focus: &model.Unit{GUID: "healer", Relation: model.RelationAlly, TargetGUID: "ghost"}},
			wantErr: model.ErrUnavailable,
		},
		{
			name:  "no focus",
			focus: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.Defaults()
			s.UseHavocOnFocus = tt.focus
			got, err := HavocTarget(RuleEnv{State: tt.snap, Settings: s}, keepAll)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if g, w := guids(got), tt.want; len(g) != len(w) || (len(g) > 0 && g[0] != w[0]) {
				t.Errorf("HavocTarget = %v, want %v", g, w)
			}
		})
	}
}

func TestExecuteTarget(t *testing.T) {
	target := model.Unit{GUID: "t", Health: 100, MaxHealth: 100}
	snap := model.Snapshot{
		Target: &target,
		Spells: map[model.Spell]model.SpellInfo{model.Shadowburn: {MaxRange: 40}},
		Adds: []model.Unit{
			{GUID: "a", Health: 15, MaxHealth: 100, InLoS: true},
			{GUID: "b", Health: 10, MaxHealth: 100, InLoS: true, Auras: []model.Aura{{Spell: model.Havoc}}},
			{GUID: "c", Health: 12, MaxHealth: 100, InLoS: true},
			{GUID: "d", Health: 5, MaxHealth: 100, InLoS: false},
			{GUID: "e", Health: 30, MaxHealth: 100, InLoS: true},
		},
	}
	got, err := ExecuteTarget(RuleEnv{State: snap}, keepAll)
	if err != nil {
		t.Fatal(err)
	}
	if g := guids(got); len(g) != 1 || g[0] != "c" {
		t.Errorf("ExecuteTarget = %v, want [c]", g)
	}

	snap.Adds = snap.Adds[4:]
	got, _ = ExecuteTarget(RuleEnv{State: snap}, keepAll)
	if g := guids(got); len(g) != 1 || g[0] != "t" {
		t.Errorf("ExecuteTarget fallback = %v, want [t]", g)
	}
}

func TestAddStrategiesApplyFilter(t *testing.T) {
	env := RuleEnv{State: model.Snapshot{Adds: []model.Unit{{GUID: "a"}, {GUID: "b"}, {GUID: "c"}}}}
	notA := func(u model.Unit) bool { return u.GUID != "a" }

	each, _ := EachAdd(env, notA)
	if g := guids(each); len(g) != 2 || g[0] != "b" || g[1] != "c" {
		t.Errorf("EachAdd = %v, want [b c]", g)
	}
	first, _ := FirstAdd(env, notA)
	if g := guids(first); len(g) != 1 || g[0] != "b" {
		t.Errorf("FirstAdd = %v, want [b]", g)
	}
	none, _ := CurrentTarget(env, keepAll)
	if len(none) != 0 {
		t.Errorf("CurrentTarget without a target = %v", guids(none))
	}
}
