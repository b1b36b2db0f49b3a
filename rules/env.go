package rules

import (
	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/memory"
	"github.com/nstehr/grimoire/mode"
	"github.com/nstehr/grimoire/model"
)

// session is the engine-owned state rule helpers may read or update.
type session struct {
	memory *memory.Expiring[string]
	morph  *mode.Controller
	hog    *mode.Controller
	fear   bool // fear tracking still healthy
}

const (
	immolateLockKey = "immolate-lock"
	fearBanPrefix   = "fear-ban:"
)

// RuleEnv wraps the snapshot and exposes helper methods callable from expr
// expressions. Unit is the candidate the condition is evaluated against.
type RuleEnv struct {
	State    model.Snapshot
	Settings config.Settings
	Unit     model.Unit

	s *session
}

func (e RuleEnv) withUnit(u model.Unit) RuleEnv {
	e.Unit = u
	return e
}

// --- the character ---

func (e RuleEnv) MyHealth() float64 { return e.State.Me.HealthFraction() }
func (e RuleEnv) MyMaxHealth() int { return e.State.Me.MaxHealth }
func (e RuleEnv) Mana() int { return e.State.Me.Mana }
func (e RuleEnv) MaxMana() int { return e.State.Me.MaxMana }
func (e RuleEnv) Shards() int { return e.State.Me.SoulShards }
func (e RuleEnv) Embers() int { return e.State.Me.BurningEmbers }
func (e RuleEnv) Fury() int { return e.State.Me.DemonicFury }
func (e RuleEnv) InCombat() bool { return e.State.InCombat }
func (e RuleEnv) Bot() string { return e.State.Bot }
func (e RuleEnv) GroupSize() int { return e.State.GroupSize }
func (e RuleEnv) Swimming() bool { return e.State.Me.Swimming }
func (e RuleEnv) Controlled() bool { return e.State.Me.Controlled }
func (e RuleEnv) HasHealthstone() bool { return e.State.HasHealthstone }

func (e RuleEnv) HasAura(name string) bool { return e.State.Me.HasAura(model.Spell(name)) }

func (e RuleEnv) MyAuraStacks(name string) int {
	return e.State.Me.AuraStacks(model.Spell(name), true)
}

func (e RuleEnv) Casting(name string) bool { return e.State.Me.IsCastingSpell(model.Spell(name)) }

// --- spells ---

func (e RuleEnv) HasSpell(name string) bool { return e.State.HasSpell(model.Spell(name)) }

// Cooldown returns the remaining cooldown in seconds; unknown spells report
// a large value so "off cooldown" checks fail.
func (e RuleEnv) Cooldown(name string) float64 {
	info, ok := e.State.Spells[model.Spell(name)]
	if !ok {
		return 1e9
	}
	return info.Cooldown
}

func (e RuleEnv) Charges(name string) int { return e.State.Spells[model.Spell(name)].Charges }

func (e RuleEnv) SpellRangeSq(name string) float64 {
	return e.State.Spells[model.Spell(name)].MaxRangeSq()
}

func (e RuleEnv) AoERadiusSq(name string) float64 {
	return spellAoERadiusSq(model.Spell(name), e.State.Me)
}

func (e RuleEnv) Glyphed(id int) bool { return e.State.IsGlyphed(id) }

func (e RuleEnv) ShadowburnDamage() int { return shadowburnDamage(e.State.SpellPower) }

// --- target ---

func (e RuleEnv) HasTarget() bool { return e.State.Target != nil }

func (e RuleEnv) TargetHealth() float64 {
	if e.State.Target == nil {
		return 0
	}
	return e.State.Target.HealthFraction()
}

func (e RuleEnv) TargetElite() bool { return e.State.Target != nil && e.State.Target.Elite }

func (e RuleEnv) TargetHasAura(name string) bool {
	return e.State.Target != nil && e.State.Target.HasAura(model.Spell(name))
}

func (e RuleEnv) TargetHasMyAura(name string) bool {
	return e.State.Target != nil && e.State.Target.HasMyAura(model.Spell(name))
}

func (e RuleEnv) TargetDistanceSq() float64 {
	if e.State.Target == nil {
		return 1e9
	}
	return e.State.Me.DistanceSquaredTo(*e.State.Target)
}

// IsBoss treats a target as a boss when it has far more health than the
// character or is several levels higher.
func (e RuleEnv) IsBoss() bool {
	t := e.State.Target
	if t == nil {
		return false
	}
	me := e.State.Me
	return float64(t.MaxHealth) >= float64(me.MaxHealth)*float64(e.Settings.BossHealthPercentage)/100 ||
		t.Level >= me.Level+e.Settings.BossLevelIncrease
}

// WorthCooldowns gates major cooldowns: always on bosses, and on reachable
// elites at least as tough as the character unless bossOnly is set.
func (e RuleEnv) WorthCooldowns(bossOnly bool) bool {
	if e.IsBoss() {
		return true
	}
	t := e.State.Target
	if bossOnly || t == nil {
		return false
	}
	return t.InCombatRange && t.InLoS && t.MaxHealth >= e.State.Me.MaxHealth && t.Elite
}

// --- the candidate unit ---

func (e RuleEnv) UnitHealth() float64 { return e.Unit.HealthFraction() }

func (e RuleEnv) UnitHasAura(name string) bool { return e.Unit.HasAura(model.Spell(name)) }

func (e RuleEnv) UnitHasMyAura(name string) bool { return e.Unit.HasMyAura(model.Spell(name)) }

func (e RuleEnv) UnitRemaining(name string) float64 { return e.Unit.AuraRemaining(model.Spell(name)) }

func (e RuleEnv) UnitHpAboveOrElite(f float64) bool { return e.Unit.HpGreaterThanOrElite(f) }

func (e RuleEnv) UnitHpBelowOrElite(f float64) bool { return e.Unit.HpLessThanOrElite(f) }

func (e RuleEnv) UnitInterruptible() bool { return e.Unit.IsCastingAndInterruptible() }

func (e RuleEnv) UnitTargetsMe() bool {
	return e.Unit.TargetGUID != "" && e.Unit.TargetGUID == e.State.Me.GUID
}

func (e RuleEnv) UnitDistanceSq() float64 { return e.State.Me.DistanceSquaredTo(e.Unit) }

// UnitBanned reports whether the candidate is on the fear ban-list.
func (e RuleEnv) UnitBanned() bool {
	return e.s != nil && e.s.memory.IsActive(fearBanPrefix+e.Unit.GUID)
}

// --- adds ---

func (e RuleEnv) AddCount() int { return len(e.State.Adds) }

// Mobs counts the adds plus the current target.
func (e RuleEnv) Mobs() int { return len(e.State.Adds) + 1 }

// AddsNearTarget counts adds within radius yards of the current target.
func (e RuleEnv) AddsNearTarget(radius float64) int {
	return e.addsNearTargetSq(radius * radius)
}

// AddsInAoE counts adds the named area spell would hit around the target.
func (e RuleEnv) AddsInAoE(name string) int {
	return e.addsNearTargetSq(e.AoERadiusSq(name))
}

func (e RuleEnv) addsNearTargetSq(rsq float64) int {
	if e.State.Target == nil {
		return 0
	}
	n := 0
	for _, a := range e.State.Adds {
		if a.DistanceSquaredTo(*e.State.Target) <= rsq {
			n++
		}
	}
	return n
}

// EnemiesNearMe counts adds strictly within radius yards.
func (e RuleEnv) EnemiesNearMe(radius float64) int {
	n := 0
	for _, a := range e.State.Adds {
		if e.State.Me.DistanceSquaredTo(a) < radius*radius {
			n++
		}
	}
	return n
}

// EnemiesInAoE counts adds and the target inside the named spell's radius
// around the character.
func (e RuleEnv) EnemiesInAoE(name string) int {
	rsq := e.AoERadiusSq(name)
	n := 0
	for _, a := range e.State.Adds {
		if e.State.Me.DistanceSquaredTo(a) <= rsq {
			n++
		}
	}
	if t := e.State.Target; t != nil && e.State.Me.DistanceSquaredTo(*t) <= rsq {
		n++
	}
	return n
}

// HavocActive is true while any add carries our Havoc.
func (e RuleEnv) HavocActive() bool {
	for _, a := range e.State.Adds {
		if a.HasMyAura(model.Havoc) {
			return true
		}
	}
	return false
}

// --- pet ---

func (e RuleEnv) HasAlivePet() bool { return e.State.HasAlivePet() }

func (e RuleEnv) PetHealth() float64 {
	if e.State.Pet == nil {
		return 0
	}
	return e.State.Pet.HealthFraction()
}

func (e RuleEnv) PetTarget() string {
	if e.State.Pet == nil {
		return ""
	}
	return e.State.Pet.TargetGUID
}

// PetActive reports whether the summoned demon is the named one, e.g. "felhunter".
func (e RuleEnv) PetActive(name string) bool {
	pet, ok := activePet(e.State)
	return ok && string(pet) == name
}

func (e RuleEnv) HasFelguard() bool { return e.PetActive(string(config.PetFelguard)) }

func (e RuleEnv) AddsNearPet(radius float64) int {
	if e.State.Pet == nil {
		return 0
	}
	n := 0
	for _, a := range e.State.Adds {
		if e.State.Pet.DistanceSquaredTo(a) <= radius*radius {
			n++
		}
	}
	return n
}

// PetWanted is true when pet upkeep should run: always while Grimoire of
// Sacrifice is learned but not active, otherwise when usePet is set.
func (e RuleEnv) PetWanted(usePet bool) bool {
	if e.State.HasSpell(model.GrimoireOfSacrifice) {
		return !e.State.Me.HasAura(model.GrimoireOfSacrifice)
	}
	return usePet
}

func (e RuleEnv) WantedPetMissing() bool { return wantedPetMissing(e.State, e.Settings) }

// --- memory and modes ---

func (e RuleEnv) ImmolateLocked() bool {
	return e.s != nil && e.s.memory.IsActive(immolateLockKey)
}

func (e RuleEnv) FearTracking() bool { return e.s != nil && e.s.fear }

// Morphed reports the Metamorphosis mode as last synced from the aura.
func (e RuleEnv) Morphed() bool {
	return e.s != nil && e.s.morph != nil && e.s.morph.State() == mode.Empowered
}

// WantsMorph is the mode the Metamorphosis controller would move to now.
// Entering needs combat; Dark Soul: Knowledge and a fresh Corruption lower
// the fury needed, and exiting waits for Doom on the target.
func (e RuleEnv) WantsMorph() bool {
	if e.s == nil || e.s.morph == nil {
		return false
	}
	fury := e.Fury()
	knowledge := e.HasAura(string(model.DarkSoulKnowledge))
	o := mode.Override{
		Enter: (fury >= 400 && knowledge) ||
			(fury >= 200 && e.TargetHasMyAura(string(model.Corruption)) && !e.TargetHasAura(string(model.Doom))),
		Hold: knowledge || !e.TargetHasMyAura(string(model.Doom)),
	}
	want := e.s.morph.WantsTransition(float64(fury), o)
	if want == mode.Empowered && e.s.morph.State() == mode.Normal && !e.InCombat() {
		return false
	}
	return want == mode.Empowered
}

// HandOfGuldanPooling is true from two charges until the last one is spent.
func (e RuleEnv) HandOfGuldanPooling() bool {
	return e.s != nil && e.s.hog != nil && e.s.hog.State() == mode.Empowered
}
