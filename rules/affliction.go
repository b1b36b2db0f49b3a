package rules

import (
	"fmt"
	"time"

	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/model"
)

// dot describes a damage-over-time spell kept up on targets: skip units
// about to die (unless elite) and refresh once the aura runs low.
type dot struct {
	spell    model.Spell
	minHP    float64
	refresh  float64
	debounce time.Duration
}

func (d dot) condition() string {
	return fmt.Sprintf(`UnitHpAboveOrElite(%.2f) && (!UnitHasMyAura(%q) || UnitRemaining(%q) <= %.1f)`,
		d.minHP, d.spell, d.spell, d.refresh)
}

// needs mirrors condition for strategies that pick targets in Go.
func (d dot) needs(u model.Unit) bool {
	return u.HpGreaterThanOrElite(d.minHP) && (!u.HasMyAura(d.spell) || u.AuraRemaining(d.spell) <= d.refresh)
}

// nextToDot offers the first kept add still missing one of the known dots,
// so each add is fully dotted before the next one is started.
func nextToDot(env RuleEnv, keep func(model.Unit) bool) ([]model.Unit, error) {
	for _, a := range env.State.Adds {
		if !keep(a) {
			continue
		}
		for _, d := range afflictionDots {
			if env.State.HasSpell(d.spell) && d.needs(a) {
				return []model.Unit{a}, nil
			}
		}
	}
	return nil, nil
}

var afflictionDots = []dot{
	{model.Agony, 0.3, 7, 0},
	{model.Corruption, 0.15, 5, 0},
	{model.UnstableAffliction, 0.2, 5, time.Second},
}

func afflictionRules(s config.Settings) []*Rule {
	var rules []*Rule

	// --- Packs ---

	rules = append(rules, &Rule{
		Name:         "shadowfury-pack",
		Priority:     500,
		Spell:        model.Shadowfury,
		Target:       CurrentTarget,
		ConditionSrc: `AddCount() > 0 && AddsNearTarget(12) > 2`,
	})
	rules = append(rules, &Rule{
		Name:         "felstorm-pack",
		Priority:     495,
		Spell:        model.CommandDemon,
		ConditionSrc: `AddCount() > 0 && Mobs() >= 3 && HasFelguard()`,
	})
	rules = append(rules, &Rule{
		Name:         "mannoroths-fury",
		Priority:     490,
		Spell:        model.MannorothsFury,
		ConditionSrc: `Mobs() >= 5 && !HasAura("Mannoroth's Fury")`,
	})
	rules = append(rules, &Rule{
		Name:         "soulburn-pack",
		Priority:     485,
		Spell:        model.Soulburn,
		ConditionSrc: `Mobs() >= 5 && !HasAura("Soulburn")`,
	})
	rules = append(rules, &Rule{
		Name:         "seed-of-corruption",
		Priority:     480,
		Spell:        model.SeedOfCorruption,
		Target:       BestAoE(model.SeedOfCorruption),
		FilterSrc:    `!UnitHasAura("Seed of Corruption")`,
		ConditionSrc: `AddCount() > 0 && HasAura("Soulburn") && !UnitHasAura("Seed of Corruption")`,
	})
	rules = append(rules, &Rule{
		Name:     "cataclysm",
		Priority: 475,
		Spell:    model.Cataclysm,
		Target:   BestAoE(model.Cataclysm),
	})

	// Every add gets all three dots before moving on.
	for i, d := range afflictionDots {
		rules = append(rules, &Rule{
			Name:         "multidot-" + slug(d.spell),
			Priority:     470 - i,
			Spell:        d.spell,
			Target:       nextToDot,
			FilterSrc:    `Unit.InCombatRange && Unit.InLoS`,
			ConditionSrc: d.condition(),
			Debounce:     d.debounce,
		})
	}
	rules = append(rules, &Rule{
		Name:         "drain-soul-pack",
		Priority:     460,
		Spell:        model.DrainSoul,
		Target:       CurrentTarget,
		ConditionSrc: `AddCount() > 0 && Mobs() >= 3`,
	})

	// --- Single target ---

	for i, d := range afflictionDots {
		rules = append(rules, &Rule{
			Name:         slug(d.spell),
			Priority:     400 - i,
			Spell:        d.spell,
			Target:       CurrentTarget,
			ConditionSrc: d.condition(),
			Debounce:     d.debounce,
		})
	}
	rules = append(rules, &Rule{
		Name:     "haunt",
		Priority: 390,
		Spell:    model.Haunt,
		Target:   CurrentTarget,
		ConditionSrc: `(!UnitHasAura("Haunt") || Shards() >= 4) && ` +
			`(UnitHealth() <= 0.25 || Shards() > 3 || HasAura("Dark Soul: Misery"))`,
		Debounce: time.Second,
	})
	rules = append(rules, &Rule{
		Name:     "drain-soul",
		Priority: 380,
		Spell:    model.DrainSoul,
		Target:   CurrentTarget,
	})
	return rules
}
