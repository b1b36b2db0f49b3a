package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/grimoire/model"
	"github.com/nstehr/grimoire/rules"
)

const preamble = `
local function me(health)
  return { guid = "me", health = health, max_health = 1000, mana = 1000, max_mana = 1000 }
end
local hurt = { in_combat = true, me = me(400), spells = { ["Dark Bargain"] = spell(), ["Sacrificial Pact"] = spell() } }
`

func TestDefensivesScenario(t *testing.T) {
	sc, err := LoadFile("testdata/defensives.lua")
	require.NoError(t, err)
	assert.Equal(t, "defensives", sc.Name)
	assert.Equal(t, rules.Destruction, sc.Spec)
	assert.Equal(t, 2, sc.Settings.RuleFailureLimit)
	assert.Empty(t, sc.Violations)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, time.Second, sc.Steps[1].Advance)
	assert.Equal(t, 179.0, sc.Steps[1].State.Spells[model.DarkBargain].Cooldown)

	trace, err := Run(sc)
	require.NoError(t, err)
	assert.Empty(t, trace.Mismatches())
	require.Len(t, trace.Frames, 3)

	first := trace.Frames[0]
	assert.Equal(t, 1, first.Tick)
	require.NotNil(t, first.Command)
	assert.Equal(t, rules.Command{Kind: rules.CommandCast, Spell: model.DarkBargain, Target: "me"}, *first.Command)
	assert.Equal(t, 2*time.Second, trace.Frames[2].At)
	assert.Equal(t, "no rule fired", trace.Frames[2].Reason)
}

func TestRejectedSpellIsDisabled(t *testing.T) {
	sc, err := LoadString("rejected", preamble+`
return {
  spec = "destruction",
  settings = { rule_failure_limit = 2 },
  ticks = {
    { reject = { "Dark Bargain" }, expect = "sacrificial-pact", state = hurt },
    { advance = 500, reject = { "Dark Bargain" }, expect = "sacrificial-pact", state = hurt },
    { advance = 500, expect = "sacrificial-pact", state = hurt },
  },
}`)
	require.NoError(t, err)

	trace, err := Run(sc)
	require.NoError(t, err)
	assert.Empty(t, trace.Mismatches())
	assert.Equal(t, []string{"dark-bargain"}, trace.Disabled)
	require.Len(t, trace.Diagnostics, 1)
	assert.Equal(t, rules.Diagnostic{
		Rule:     "dark-bargain",
		Phase:    "combat",
		Tick:     2,
		Failures: 2,
		Error:    "action: host rejected Dark Bargain",
	}, trace.Diagnostics[0])

	// The rejected cast is attempted first, then the next rule wins.
	assert.Len(t, trace.Frames[0].Attempts, 2)
	assert.Len(t, trace.Frames[2].Attempts, 1)
}

func TestExpectationMismatchIsRecorded(t *testing.T) {
	sc, err := LoadString("mismatch", preamble+`
return {
  spec = "affliction",
  ticks = {
    { expect = "idle", state = hurt },
    { expect = "haunt", state = hurt },
  },
}`)
	require.NoError(t, err)

	trace, err := Run(sc)
	require.NoError(t, err)
	bad := trace.Mismatches()
	require.Len(t, bad, 2)
	assert.Equal(t, "dark-bargain", bad[0].Rule)
	assert.Equal(t, "haunt", bad[1].Expect)
}

func TestHelpersBuildWireTables(t *testing.T) {
	sc, err := LoadString("helpers", `
return {
  spec = "demonology",
  ticks = {
    { state = {
        me = { guid = "me", health = 1, max_health = 1, position = at(1, 2.5, 3),
               auras = { aura("Molten Core", 12.5, 3, true) } },
        spells = { ["Hand of Gul'dan"] = spell(40, 0, 2, 2) },
        adds = {},
    } },
  },
}`)
	require.NoError(t, err)
	st := sc.Steps[0].State
	assert.Equal(t, model.Vec3{X: 1, Y: 2.5, Z: 3}, st.Me.Position)
	assert.Equal(t, []model.Aura{{Spell: model.MoltenCore, Remaining: 12.5, Stacks: 3, Mine: true}}, st.Me.Auras)
	assert.Equal(t, model.SpellInfo{MaxRange: 40, Charges: 2, MaxCharges: 2}, st.Spells[model.HandOfGuldan])
	assert.Empty(t, st.Adds)
}

func TestSettingsViolationsFallBackToDefaults(t *testing.T) {
	sc, err := LoadString("violations", preamble+`
return {
  spec = "affliction",
  settings = { dark_bargain_health = 150, fear_ban_time = "20s" },
  ticks = { { state = hurt } },
}`)
	require.NoError(t, err)
	assert.Equal(t, 50, sc.Settings.DarkBargainHealth)
	assert.Equal(t, 20*time.Second, sc.Settings.FearBanTime)
	require.Len(t, sc.Violations, 1)
	assert.Equal(t, "dark_bargain_health", sc.Violations[0].Field)
}

func TestLoadRejectsBadScripts(t *testing.T) {
	tests := map[string]string{
		"syntax":         `return {`,
		"not a table":    `return 42`,
		"runtime error":  `error("nope")`,
		"unknown spec":   `return { spec = "frost", ticks = { { state = {} } } }`,
		"no ticks":       `return { spec = "affliction" }`,
		"negative time":  `return { spec = "affliction", ticks = { { advance = -5 } } }`,
		"unknown spell":  `return { spec = "affliction", ticks = { { state = { spells = { ["Pyroblast"] = spell() } } } } }`,
		"unknown aura":   `return { spec = "affliction", ticks = { { state = { me = { auras = { aura("Arcane Power") } } } } } }`,
		"unknown reject": `return { spec = "affliction", ticks = { { reject = { "Fireball" } } } }`,
		"bad state":      `return { spec = "affliction", ticks = { { state = { me = "nobody" } } } }`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadString(name, src)
			assert.Error(t, err)
		})
	}
}
