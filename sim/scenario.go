// Package sim replays scripted snapshots through the rule engine offline.
//
// A scenario is a Lua script returning a table:
//
//	return {
//	  name = "pack pull",
//	  spec = "affliction",
//	  settings = { fear_do_fear = false },
//	  ticks = {
//	    { advance = 0, expect = "seed-of-corruption", state = { in_combat = true, me = {...} } },
//	    { advance = 1500, reject = { "Agony" }, state = {...} },
//	  },
//	}
//
// State tables use the same field names as the snapshot wire format. The
// helpers aura(name, remaining, stacks, mine), spell(range, cooldown,
// charges, max_charges) and at(x, y, z) build the nested tables.
package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shopify/go-lua"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/model"
	"github.com/nstehr/grimoire/rules"
)

// Scenario is a loaded script.
type Scenario struct {
	Name       string
	Spec       rules.Spec
	Settings   config.Settings
	Violations []config.Violation
	Steps      []Step
}

// Step is one scripted tick.
type Step struct {
	// Advance moves the clock before the snapshot is evaluated.
	Advance time.Duration
	// Expect names the rule that should fire; "idle" expects nothing to fire
	// and an empty value skips the check.
	Expect string
	// Reject makes the host refuse casts of these spells this tick.
	Reject []model.Spell
	State  model.Snapshot
}

// ExpectIdle is the Expect value for a tick where no rule should fire.
const ExpectIdle = "idle"

// LoadFile runs the script at path and decodes the returned table.
func LoadFile(path string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	sc, err := run(state)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// LoadString runs src as a scenario script.
func LoadString(name, src string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadString(state, src); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	sc, err := run(state)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if sc.Name == "" {
		sc.Name = name
	}
	return sc, nil
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	for _, h := range helpers {
		state.Register(h.Name, h.Function)
	}
	return state
}

func run(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeTable {
		state.Pop(1)
		return nil, errors.New("scenario script must return a table")
	}
	raw := tableToMap(state, -1)
	state.Pop(1)
	return decode(raw)
}

var helpers = []lua.RegistryFunction{
	{Name: "aura", Function: auraHelper},
	{Name: "spell", Function: spellHelper},
	{Name: "at", Function: atHelper},
}

func auraHelper(state *lua.State) int {
	name := lua.CheckString(state, 1)
	remaining := lua.OptNumber(state, 2, 0)
	stacks := lua.OptInteger(state, 3, 1)
	mine := state.ToBoolean(4)
	state.NewTable()
	state.PushString(name)
	state.SetField(-2, "spell")
	state.PushNumber(remaining)
	state.SetField(-2, "remaining")
	state.PushInteger(stacks)
	state.SetField(-2, "stacks")
	state.PushBoolean(mine)
	state.SetField(-2, "mine")
	return 1
}

func spellHelper(state *lua.State) int {
	fields := []struct {
		key string
		def float64
	}{{"max_range", 40}, {"cooldown", 0}, {"charges", 0}, {"max_charges", 0}}
	values := make([]float64, len(fields))
	for i, f := range fields {
		values[i] = lua.OptNumber(state, i+1, f.def)
	}
	state.NewTable()
	for i, f := range fields {
		state.PushNumber(values[i])
		state.SetField(-2, f.key)
	}
	return 1
}

func atHelper(state *lua.State) int {
	x, y, z := lua.OptNumber(state, 1, 0), lua.OptNumber(state, 2, 0), lua.OptNumber(state, 3, 0)
	state.NewTable()
	state.PushNumber(x)
	state.SetField(-2, "x")
	state.PushNumber(y)
	state.SetField(-2, "y")
	state.PushNumber(z)
	state.SetField(-2, "z")
	return 1
}

func decode(raw map[string]any) (*Scenario, error) {
	sc := &Scenario{Name: stringField(raw, "name")}

	spec, err := rules.ParseSpec(stringField(raw, "spec"))
	if err != nil {
		return nil, err
	}
	sc.Spec = spec

	sc.Settings = config.Defaults()
	if overrides, ok := raw["settings"]; ok && overrides != nil {
		// Settings carry yaml tags, so the overrides take the same path as
		// a settings file.
		data, err := yaml.Marshal(overrides)
		if err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
		if err := yaml.Unmarshal(data, &sc.Settings); err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
	}
	sc.Settings, sc.Violations = config.Sanitize(sc.Settings)

	ticks, _ := raw["ticks"].([]any)
	if len(ticks) == 0 {
		return nil, errors.New("scenario has no ticks")
	}
	for i, t := range ticks {
		step, err := decodeStep(t, i)
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", i+1, err)
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}

func decodeStep(v any, i int) (Step, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Step{}, errors.New("tick must be a table")
	}
	var step Step
	switch adv := m["advance"].(type) {
	case nil:
	case int:
		step.Advance = time.Duration(adv) * time.Millisecond
	case float64:
		step.Advance = time.Duration(adv * float64(time.Millisecond))
	default:
		return Step{}, fmt.Errorf("advance must be milliseconds, got %T", adv)
	}
	if step.Advance < 0 {
		return Step{}, errors.New("advance must not be negative")
	}
	step.Expect = stringField(m, "expect")

	if rejects, ok := m["reject"].([]any); ok {
		for _, r := range rejects {
			sp, err := spellName(r)
			if err != nil {
				return Step{}, fmt.Errorf("reject: %w", err)
			}
			step.Reject = append(step.Reject, sp)
		}
	}

	data, err := json.Marshal(m["state"])
	if err != nil {
		return Step{}, fmt.Errorf("state: %w", err)
	}
	if err := json.Unmarshal(data, &step.State); err != nil {
		return Step{}, fmt.Errorf("state: %w", err)
	}
	if step.State.Tick == 0 {
		step.State.Tick = i + 1
	}
	if err := checkSpells(step.State); err != nil {
		return Step{}, err
	}
	return step, nil
}

// checkSpells catches typos in spell names, which would otherwise just make
// a rule silently never fire.
func checkSpells(s model.Snapshot) error {
	for sp := range s.Spells {
		if _, err := spellName(string(sp)); err != nil {
			return fmt.Errorf("spells: %w", err)
		}
	}
	units := append([]model.Unit{s.Me}, s.Adds...)
	for _, u := range []*model.Unit{s.Target, s.Pet, s.Focus} {
		if u != nil {
			units = append(units, *u)
		}
	}
	for _, u := range units {
		for _, a := range u.Auras {
			if _, err := spellName(string(a.Spell)); err != nil {
				return fmt.Errorf("aura on %s: %w", u.GUID, err)
			}
		}
	}
	return nil
}

func spellName(v any) (model.Spell, error) {
	name, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("spell name must be a string, got %T", v)
	}
	sp, ok := model.KnownSpell(name)
	if !ok {
		return "", fmt.Errorf("unknown spell %q", name)
	}
	return sp, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo returns a slice for sequences and a map otherwise. An empty
// table decodes to nil so it fits both list and object fields.
func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		count++
		if isArray {
			if idx, ok := state.ToInteger(-2); ok && state.TypeOf(-2) == lua.TypeNumber && idx > 0 {
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if count == 0 {
		return nil
	}
	if isArray && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}
	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 && math.Abs(value) < 1<<53 {
		return int(value)
	}
	return value
}
