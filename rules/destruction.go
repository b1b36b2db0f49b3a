package rules

import (
	"time"

	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/model"
)

// lockImmolate stops single-target Immolate right after a Cataclysm, which
// already applied it.
func lockImmolate(env RuleEnv, _ model.Unit) {
	env.s.memory.Record(immolateLockKey, env.Settings.ImmolateLock)
}

func destructionRules(_ config.Settings) []*Rule {
	var rules []*Rule

	rules = append(rules, &Rule{
		Name:         "fire-and-brimstone-drop",
		Priority:     520,
		Spell:        model.FireAndBrimstone,
		ConditionSrc: `Embers() <= 0 && HasAura("Fire and Brimstone")`,
	})

	// --- Packs ---

	const multi = `AddCount() > 0 && `
	const immolatable = `!UnitHasAura("Immolate") && UnitHpBelowOrElite(0.15)`
	rules = append(rules, &Rule{
		Name:         "mannoroths-fury",
		Priority:     510,
		Spell:        model.MannorothsFury,
		ConditionSrc: multi + `Mobs() >= 3 && !HasAura("Mannoroth's Fury")`,
	})
	rules = append(rules, &Rule{
		Name:         "rain-of-fire",
		Priority:     505,
		Spell:        model.RainOfFire,
		Target:       BestAoE(model.RainOfFire),
		ConditionSrc: multi + `!HasAura("Rain of Fire") && (HasAura("Mannoroth's Fury") || Mobs() >= 5)`,
	})
	rules = append(rules, &Rule{
		Name:         "havoc",
		Priority:     500,
		Spell:        model.Havoc,
		Target:       HavocTarget,
		ConditionSrc: multi + `Cooldown("Havoc") <= 0.01 && Embers() >= 1 && Mobs() < 12`,
	})
	rules = append(rules, &Rule{
		Name:         "shadowburn-havoc",
		Priority:     495,
		Spell:        model.Shadowburn,
		Target:       ExecuteTarget,
		ConditionSrc: multi + `(HavocActive() || Embers() >= 4) && Mobs() < 12`,
	})
	rules = append(rules, &Rule{
		Name:         "chaos-bolt-havoc",
		Priority:     490,
		Spell:        model.ChaosBolt,
		Target:       CurrentTarget,
		ConditionSrc: multi + `(HavocActive() || Embers() >= 4) && Mobs() < 6`,
	})
	rules = append(rules, &Rule{
		Name:         "cataclysm-pack",
		Priority:     485,
		Spell:        model.Cataclysm,
		Target:       BestAoE(model.Cataclysm),
		ConditionSrc: multi + `Mobs() >= 3`,
	})

	// Fire and Brimstone turns the next fire spells into area damage around
	// the target; worth it with embers to spare and a tight pack.
	const brimstone = multi + `((Embers() >= 2 && AddsInAoE("Conflagrate") > 2) || (Embers() >= 1 && AddsInAoE("Conflagrate") >= 8))`
	rules = append(rules, &Rule{
		Name:         "fire-and-brimstone",
		Priority:     480,
		Spell:        model.FireAndBrimstone,
		ConditionSrc: brimstone + ` && !HasAura("Fire and Brimstone")`,
	})
	rules = append(rules, &Rule{
		Name:         "conflagrate-pack",
		Priority:     475,
		Spell:        model.Conflagrate,
		Target:       BestAoE(model.Conflagrate),
		ConditionSrc: brimstone,
	})
	rules = append(rules, &Rule{
		Name:         "immolate-pack",
		Priority:     470,
		Spell:        model.Immolate,
		Target:       BestAoE(model.Immolate),
		FilterSrc:    immolatable,
		// BestAoE may fall back to the current target, which the filter never saw.
		ConditionSrc: brimstone + ` && ` + immolatable,
	})
	rules = append(rules, &Rule{
		Name:         "incinerate-pack",
		Priority:     465,
		Spell:        model.Incinerate,
		Target:       BestAoE(model.Incinerate),
		ConditionSrc: brimstone,
	})

	// --- Single target ---

	rules = append(rules, &Rule{
		Name:         "fire-and-brimstone-off",
		Priority:     450,
		Spell:        model.FireAndBrimstone,
		ConditionSrc: `HasAura("Fire and Brimstone")`,
	})
	rules = append(rules, &Rule{
		Name:     "shadowburn",
		Priority: 440,
		Spell:    model.Shadowburn,
		Target:   CurrentTarget,
		ConditionSrc: `UnitHealth() <= 0.2 && ` +
			`(HasAura("Dark Soul: Instability") || Embers() >= 3 || Unit.Health <= 2 * ShadowburnDamage())`,
	})
	rules = append(rules, &Rule{
		Name:     "immolate",
		Priority: 430,
		Spell:    model.Immolate,
		Target:   CurrentTarget,
		ConditionSrc: `(!HasSpell("Cataclysm") || Cooldown("Cataclysm") > 0) && !ImmolateLocked() && ` +
			`(!UnitHasMyAura("Immolate") || UnitRemaining("Immolate") <= 3.5)`,
		Debounce: time.Second,
	})
	rules = append(rules, &Rule{
		Name:     "cataclysm",
		Priority: 420,
		Spell:    model.Cataclysm,
		Target:   BestAoE(model.Cataclysm),
		OnFire:   lockImmolate,
	})
	rules = append(rules, &Rule{
		Name:         "conflagrate-capped",
		Priority:     410,
		Spell:        model.Conflagrate,
		Target:       CurrentTarget,
		ConditionSrc: `Charges("Conflagrate") >= 2`,
	})
	rules = append(rules, &Rule{
		Name:         "chaos-bolt",
		Priority:     400,
		Spell:        model.ChaosBolt,
		Target:       CurrentTarget,
		ConditionSrc: `HasAura("Dark Soul: Instability") || Embers() >= 3`,
	})
	rules = append(rules, &Rule{
		Name:         "conflagrate",
		Priority:     390,
		Spell:        model.Conflagrate,
		Target:       CurrentTarget,
		ConditionSrc: `Charges("Conflagrate") == 1`,
	})
	rules = append(rules, &Rule{
		Name:     "incinerate",
		Priority: 380,
		Spell:    model.Incinerate,
		Target:   CurrentTarget,
	})
	return rules
}
