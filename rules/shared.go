package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/model"
)

// pct turns a whole-number percentage setting into a health fraction.
func pct(v int) float64 { return float64(v) / 100 }

// slug derives a rule name from a spell, e.g. "Hand of Gul'dan" -> "hand-of-guldan".
func slug(sp model.Spell) string {
	var b strings.Builder
	for _, r := range strings.ToLower(string(sp)) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}

// sharedHooks run before every combat tick regardless of spec.
func sharedHooks(s config.Settings) []Hook {
	if !s.FearDoFear {
		return nil
	}
	return []Hook{{Name: fearTrackingHook, Run: trackFear}}
}

// trackFear bans players that are already feared so the next Fear goes
// elsewhere. Fear has diminishing returns on players.
func trackFear(env RuleEnv) error {
	if env.State.Bot != "PvP" {
		return nil
	}
	for _, a := range env.State.Adds {
		if !a.Player || !a.HasAura(model.Fear) {
			continue
		}
		if a.GUID == "" {
			return fmt.Errorf("feared player %q has no guid", a.Name)
		}
		env.s.memory.Record(fearBanPrefix+a.GUID, env.Settings.FearBanTime)
	}
	return nil
}

// banHowled bans every player Howl of Terror just reached.
func banHowled(env RuleEnv, _ model.Unit) {
	for _, a := range env.State.Adds {
		if a.Player && env.State.Me.DistanceSquaredTo(a) < 11*11 {
			env.s.memory.Record(fearBanPrefix+a.GUID, env.Settings.FearBanTime)
		}
	}
}

// sharedCombatRules is the prefix every spec evaluates first: cooldowns,
// pet commands, defensives, pet upkeep and crowd control.
func sharedCombatRules(s config.Settings) []*Rule {
	var rules []*Rule

	// --- Cooldowns ---

	if s.UseDarkSoul {
		for i, sp := range []model.Spell{model.DarkSoulInstability, model.DarkSoulKnowledge, model.DarkSoulMisery} {
			rules = append(rules, &Rule{
				Name:         fmt.Sprintf("dark-soul-%d", i+1),
				Priority:     1000 - i,
				Spell:        sp,
				ConditionSrc: fmt.Sprintf(`WorthCooldowns(%t)`, s.UseDarkSoulBossOnly),
				Debounce:     20 * time.Second,
			})
		}
	}

	// --- Pet abilities ---

	rules = append(rules, &Rule{
		Name:         "command-demon-felhunter",
		Priority:     960,
		Spell:        model.CommandDemon,
		Target:       CurrentTarget,
		ConditionSrc: fmt.Sprintf(`!HasSpell("Grimoire of Sacrifice") && (PetActive("felhunter") || %t) && UnitInterruptible()`, s.SelectedPet == config.PetFelhunter),
	})
	rules = append(rules, &Rule{
		Name:         "command-demon-imp",
		Priority:     955,
		Spell:        model.CommandDemon,
		ConditionSrc: fmt.Sprintf(`!HasSpell("Grimoire of Sacrifice") && (PetActive("imp") || %t) && MyHealth() <= 0.75`, s.SelectedPet == config.PetImp),
	})
	rules = append(rules, &Rule{
		Name:         "command-demon-voidwalker",
		Priority:     950,
		Spell:        model.CommandDemon,
		ConditionSrc: fmt.Sprintf(`!HasSpell("Grimoire of Sacrifice") && (PetActive("voidwalker") || %t) && MyHealth() < 0.5`, s.SelectedPet == config.PetVoidwalker),
	})
	rules = append(rules, &Rule{
		Name:         "command-demon-felguard",
		Priority:     945,
		Spell:        model.CommandDemon,
		ConditionSrc: `!HasSpell("Grimoire of Sacrifice") && HasFelguard() && AddsNearPet(8) >= 2`,
	})
	rules = append(rules, &Rule{
		Name:         "axe-toss",
		Priority:     940,
		Spell:        model.AxeToss,
		Target:       CurrentTarget,
		ConditionSrc: `!HasSpell("Grimoire of Sacrifice") && HasFelguard() && UnitInterruptible()`,
	})

	// --- Defensives ---

	rules = append(rules,
		&Rule{Name: "unbound-will", Priority: 900, Spell: model.UnboundWill, ConditionSrc: `Controlled()`},
		&Rule{Name: "dark-bargain", Priority: 895, Spell: model.DarkBargain,
			ConditionSrc: fmt.Sprintf(`MyHealth() < %.2f`, pct(s.DarkBargainHealth))},
		&Rule{Name: "sacrificial-pact", Priority: 890, Spell: model.SacrificialPact,
			ConditionSrc: fmt.Sprintf(`MyHealth() < %.2f`, pct(s.SacrificialPactHealth))},
		&Rule{Name: "unending-resolve", Priority: 885, Spell: model.UnendingResolve,
			ConditionSrc: fmt.Sprintf(`MyHealth() <= %.2f`, pct(s.UnendingResolveHealth))},
		&Rule{Name: "dark-regeneration", Priority: 880, Spell: model.DarkRegeneration,
			ConditionSrc: fmt.Sprintf(`MyHealth() <= %.2f`, pct(s.DarkRegenerationHealth))},
	)

	rules = append(rules, &Rule{
		Name:         "pet-attack",
		Priority:     860,
		Kind:         KindPetAttack,
		Target:       FirstAdd,
		FilterSrc:    `UnitTargetsMe()`,
		ConditionSrc: `HasAlivePet() && PetTarget() != Unit.GUID`,
		Debounce:     time.Second,
	})
	rules = append(rules, &Rule{
		Name:         "mortal-coil",
		Priority:     850,
		Spell:        model.MortalCoil,
		Target:       CurrentTarget,
		ConditionSrc: fmt.Sprintf(`MyHealth() <= %.2f`, pct(s.MortalCoilHealth)),
	})

	rules = append(rules, petUpkeepRules(s, 800)...)

	// --- Additional DPS pets ---

	if s.UseAdditionalDPSPet {
		worth := fmt.Sprintf(`WorthCooldowns(%t)`, s.UseAdditionalDPSPetBossOnly)
		rules = append(rules, &Rule{
			Name:         "summon-infernal",
			Priority:     760,
			Resolve:      resolveInfernal,
			Target:       CurrentTarget,
			ConditionSrc: `!HasSpell("Demonic Servitude") && AddCount() >= 3 && ` + worth,
		})
		rules = append(rules, &Rule{
			Name:         "summon-doomguard",
			Priority:     755,
			Resolve:      resolveDoomguard,
			Target:       CurrentTarget,
			ConditionSrc: `!HasSpell("Demonic Servitude") && ` + worth,
		})
		rules = append(rules, &Rule{
			Name:         "grimoire-of-service",
			Priority:     750,
			Resolve:      resolveGrimoire,
			Target:       CurrentTarget,
			ConditionSrc: `HasSpell("Grimoire: Imp") && ` + worth,
		})
	}

	// --- Crowd control ---

	if s.FearDoFear {
		rules = append(rules, &Rule{
			Name:         "howl-of-terror",
			Priority:     720,
			Spell:        model.HowlOfTerror,
			ConditionSrc: `Bot() == "PvP" && FearTracking() && EnemiesNearMe(11) >= 2`,
			OnFire:       banHowled,
		})
		rules = append(rules, &Rule{
			Name:      "fear",
			Priority:  715,
			Spell:     model.Fear,
			Target:    FirstAdd,
			FilterSrc: `Unit.TargetGUID != "" && UnitDistanceSq() < SpellRangeSq("Fear")`,
			ConditionSrc: `Bot() == "PvP" && FearTracking() && !UnitBanned() && (` +
				`(!UnitHasAura("Fear") && !UnitHasAura("Howl of Terror") && TargetDistanceSq() <= 42.25 && UnitTargetsMe())` +
				` || UnitInterruptible())`,
			Debounce: time.Second,
		})
	}

	if s.UseShadowfuryAsInterrupt {
		rules = append(rules, &Rule{
			Name:         "shadowfury-interrupt",
			Priority:     700,
			Spell:        model.Shadowfury,
			Target:       BestAoE(model.Shadowfury),
			FilterSrc:    `UnitInterruptible()`,
			ConditionSrc: `UnitInterruptible()`,
		})
	} else {
		rules = append(rules, &Rule{
			Name:         "shadowfury",
			Priority:     700,
			Spell:        model.Shadowfury,
			Target:       BestAoE(model.Shadowfury),
			ConditionSrc: `AddCount() >= 3`,
		})
	}

	rules = append(rules, healingRules(s, 650)...)
	return rules
}

// healingRules trade embers, pet health or player health for resources.
// They close the combat prefix and also run out of combat.
func healingRules(s config.Settings, base int) []*Rule {
	rules := []*Rule{
		{
			Name:         "ember-tap",
			Priority:     base,
			Spell:        model.EmberTap,
			ConditionSrc: fmt.Sprintf(`MyHealth() <= %.2f && Embers() >= 1`, pct(s.EmberTapHealth)),
		},
		{
			Name:         "health-funnel",
			Priority:     base - 5,
			Spell:        model.HealthFunnel,
			Target:       PetUnit,
			ConditionSrc: fmt.Sprintf(`HasAlivePet() && PetHealth() <= %.2f && MyHealth() >= %.2f`, pct(s.FunnelPetHP), pct(s.FunnelPlayerHP)),
		},
	}
	if s.AutomaticManaManagement {
		rules = append(rules, &Rule{
			Name:         "life-tap",
			Priority:     base - 10,
			Spell:        model.LifeTap,
			ConditionSrc: fmt.Sprintf(`MyHealth() >= %.2f && Mana() + MyMaxHealth() * 0.16 <= MaxMana()`, pct(s.AutomaticManaManagementPercentage)),
			Debounce:     2 * time.Second,
		})
	}
	return rules
}

// petUpkeepRules keep the permanent demon summoned, or sacrificed when
// Grimoire of Sacrifice is learned, and dismiss it when pets are off.
func petUpkeepRules(s config.Settings, base int) []*Rule {
	wanted := fmt.Sprintf(`PetWanted(%t)`, s.UsePet)
	return []*Rule{
		{
			Name:         "flames-of-xoroth",
			Priority:     base,
			Spell:        model.FlamesOfXoroth,
			ConditionSrc: wanted + ` && !HasAlivePet() && Embers() >= 1 && (InCombat() || !HasSpell("Grimoire of Sacrifice"))`,
		},
		{
			Name:         "soulburn-summon",
			Priority:     base - 5,
			Spell:        model.Soulburn,
			ConditionSrc: wanted + ` && !HasAlivePet() && Shards() >= 1 && !HasAura("Soulburn")`,
		},
		{
			Name:         "summon-pet",
			Priority:     base - 10,
			Resolve:      resolveSummon,
			ConditionSrc: wanted + ` && WantedPetMissing()`,
			Debounce:     5 * time.Second,
		},
		{
			Name:         "grimoire-of-sacrifice",
			Priority:     base - 15,
			Spell:        model.GrimoireOfSacrifice,
			ConditionSrc: `!HasAura("Grimoire of Sacrifice") && HasAlivePet()`,
		},
		{
			Name:         "dismiss-pet",
			Priority:     base - 20,
			Kind:         KindPetDismiss,
			ConditionSrc: fmt.Sprintf(`!HasSpell("Grimoire of Sacrifice") && !%t && HasAlivePet()`, s.UsePet),
			Debounce:     time.Second,
		},
	}
}

// restingRules run out of combat: drop combat forms, keep buffs up, top off
// health and mana, keep the pet and a healthstone ready.
func restingRules(s config.Settings) []*Rule {
	rules := []*Rule{
		{Name: "cancel-metamorphosis", Priority: 1000, Spell: model.Metamorphosis, ConditionSrc: `HasAura("Metamorphosis")`},
		{Name: "cancel-fire-and-brimstone", Priority: 995, Spell: model.FireAndBrimstone, ConditionSrc: `HasAura("Fire and Brimstone")`},
		{Name: "dark-intent", Priority: 950, Spell: model.DarkIntent, ConditionSrc: `!HasAura("Dark Intent")`},
		{Name: "unending-breath", Priority: 945, Spell: model.UnendingBreath, ConditionSrc: `Swimming() && !HasAura("Unending Breath")`},
	}
	// Self-stone only when solo; in a group the stone belongs on a healer.
	if s.UseSelfSoulstone {
		rules = append(rules, &Rule{
			Name:         "soulstone",
			Priority:     940,
			Spell:        model.Soulstone,
			ConditionSrc: `Bot() != "Combat" && !HasAura("Soulstone") && GroupSize() <= 1`,
		})
	}
	rules = append(rules, healingRules(s, 900)...)
	rules = append(rules, petUpkeepRules(s, 800)...)
	rules = append(rules, &Rule{
		Name:         "create-healthstone",
		Priority:     700,
		Spell:        model.CreateHealthstone,
		ConditionSrc: `!HasHealthstone()`,
		Debounce:     10 * time.Second,
	})
	return rules
}
