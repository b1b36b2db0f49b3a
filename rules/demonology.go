package rules

import (
	"fmt"
	"time"

	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/mode"
	"github.com/nstehr/grimoire/model"
)

// syncDemonologyModes steps the Hand of Gul'dan pool and mirrors the
// Metamorphosis aura into the morph controller.
func syncDemonologyModes(env RuleEnv) error {
	env.s.hog.Step(float64(env.State.Spells[model.HandOfGuldan].Charges), mode.Override{})
	morph := mode.Normal
	if env.State.Me.HasAura(model.Metamorphosis) {
		morph = mode.Empowered
	}
	env.s.morph.Set(morph)
	return nil
}

func demonologyRules(s config.Settings) []*Rule {
	var rules []*Rule

	rules = append(rules, &Rule{
		Name:         "metamorphosis",
		Priority:     600,
		Spell:        model.Metamorphosis,
		ConditionSrc: `!HandOfGuldanPooling() && WantsMorph() != Morphed()`,
	})
	rules = append(rules, &Rule{
		Name:         "hand-of-guldan",
		Priority:     590,
		Spell:        model.HandOfGuldan,
		Target:       BestAoE(model.HandOfGuldan),
		ConditionSrc: `!Morphed() && HandOfGuldanPooling() && UnitRemaining("Hand of Gul'dan") <= 3`,
		Debounce:     2 * time.Second,
	})

	// --- Packs ---

	const multi = `AddCount() > 0 && `
	rules = append(rules, &Rule{
		Name:         "cataclysm-pack",
		Priority:     520,
		Spell:        model.Cataclysm,
		Target:       BestAoE(model.Cataclysm),
		ConditionSrc: multi + `Mobs() == 3 && Morphed() && TargetElite()`,
	})
	rules = append(rules, &Rule{
		Name:         "doom-adds",
		Priority:     515,
		Spell:        model.Doom,
		Target:       EachAdd,
		ConditionSrc: `Mobs() == 2 && Morphed() && UnitHpAboveOrElite(0.15) && (!UnitHasMyAura("Doom") || UnitRemaining("Doom") <= 18)`,
	})
	rules = append(rules, &Rule{
		Name:         "corruption-adds",
		Priority:     514,
		Spell:        model.Corruption,
		Target:       EachAdd,
		ConditionSrc: `Mobs() == 2 && !Morphed() && UnitHpAboveOrElite(0.15) && (!UnitHasMyAura("Corruption") || UnitRemaining("Corruption") <= 6)`,
	})
	rules = append(rules, &Rule{
		Name:     "soul-fire-pack",
		Priority: 510,
		Spell:    model.SoulFire,
		Target:   CurrentTarget,
		ConditionSrc: multi + `!HasSpell("Demonbolt") && ((Mobs() < 6 && UnitHealth() <= 0.25) || ` +
			`MyAuraStacks("Molten Core") >= (Mobs() >= 4 && Mobs() < 6 ? 10 : 5))`,
	})
	rules = append(rules, &Rule{
		Name:         "demonbolt-pack",
		Priority:     505,
		Spell:        model.Demonbolt,
		Target:       CurrentTarget,
		ConditionSrc: multi + `MyAuraStacks("Demonbolt") < 4`,
	})

	// Hellfire out of form, Immolation Aura in it; both need the pack close.
	aura := fmt.Sprintf(multi+`MyHealth() > %.2f && (`+
		`(Mobs() >= 4 && Mobs() < 6 && !Morphed() && %t && EnemiesInAoE("Hellfire") >= 4) || `+
		`(Mobs() == 3 && Morphed() && EnemiesInAoE("Immolation Aura") >= 3))`,
		pct(s.HellfireHealthPercentage), s.UseHellfire)
	rules = append(rules, &Rule{
		Name:         "mannoroths-fury-pack",
		Priority:     500,
		Spell:        model.MannorothsFury,
		ConditionSrc: aura + ` && !HasAura("Mannoroth's Fury")`,
	})
	rules = append(rules, &Rule{
		Name:         "hellfire",
		Priority:     495,
		Resolve:      variant(model.Hellfire, model.ImmolationAura),
		ConditionSrc: aura,
	})

	// --- Single target ---

	const dotMissing = `(Morphed() && !UnitHasMyAura("Doom")) || (!Morphed() && !UnitHasMyAura("Corruption"))`
	rules = append(rules, &Rule{
		Name:         "cataclysm",
		Priority:     450,
		Spell:        model.Cataclysm,
		Target:       BestAoE(model.Cataclysm),
		FilterSrc:    dotMissing,
		ConditionSrc: dotMissing,
	})
	rules = append(rules, &Rule{
		Name:     "corruption-doom",
		Priority: 440,
		Resolve:  variant(model.Corruption, model.Doom),
		Target:   CurrentTarget,
		ConditionSrc: `UnitHpAboveOrElite(0.15) && (Morphed() ` +
			`? (!UnitHasMyAura("Doom") || UnitRemaining("Doom") <= 18) ` +
			`: (!UnitHasMyAura("Corruption") || UnitRemaining("Corruption") <= 4))`,
	})
	rules = append(rules, &Rule{
		Name:     "soul-fire",
		Priority: 430,
		Spell:    model.SoulFire,
		Target:   CurrentTarget,
		ConditionSrc: `HasSpell("Demonbolt") ? HasAura("Molten Core") : (` +
			`(Unit.Elite && ((HasAura("Molten Core") && UnitHealth() <= 0.25) || MyAuraStacks("Molten Core") >= 5)) || ` +
			`(!Unit.Elite && HasAura("Molten Core")))`,
	})
	rules = append(rules, &Rule{
		Name:     "shadow-bolt",
		Priority: 420,
		Resolve:  variant(model.ShadowBolt, model.TouchOfChaos),
		Target:   CurrentTarget,
	})
	return rules
}
