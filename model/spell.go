package model

import (
	"slices"
	"strings"
)

// Spell identifies an ability or aura by its in-game name. Rule tables and
// condition sources only use names that resolve through KnownSpell.
type Spell string

const (
	DarkSoulInstability Spell = "Dark Soul: Instability"
	DarkSoulKnowledge   Spell = "Dark Soul: Knowledge"
	DarkSoulMisery      Spell = "Dark Soul: Misery"
	CommandDemon        Spell = "Command Demon"
	AxeToss             Spell = "Axe Toss"
	Felstorm            Spell = "Felstorm"
	UnboundWill         Spell = "Unbound Will"
	DarkBargain         Spell = "Dark Bargain"
	SacrificialPact     Spell = "Sacrificial Pact"
	UnendingResolve     Spell = "Unending Resolve"
	DarkRegeneration    Spell = "Dark Regeneration"
	MortalCoil          Spell = "Mortal Coil"
	HowlOfTerror        Spell = "Howl of Terror"
	Fear                Spell = "Fear"
	Shadowfury          Spell = "Shadowfury"
	EmberTap            Spell = "Ember Tap"
	HealthFunnel        Spell = "Health Funnel"
	LifeTap             Spell = "Life Tap"

	FlamesOfXoroth      Spell = "Flames of Xoroth"
	Soulburn            Spell = "Soulburn"
	SummonImp           Spell = "Summon Imp"
	SummonFelImp        Spell = "Summon Fel Imp"
	SummonVoidwalker    Spell = "Summon Voidwalker"
	SummonSuccubus      Spell = "Summon Succubus"
	SummonFelhunter     Spell = "Summon Felhunter"
	SummonFelguard      Spell = "Summon Felguard"
	SummonInfernal      Spell = "Summon Infernal"
	SummonDoomguard     Spell = "Summon Doomguard"
	SummonAbyssal       Spell = "Summon Abyssal"
	SummonTerrorguard   Spell = "Summon Terrorguard"
	DemonicServitude    Spell = "Demonic Servitude"
	GrimoireOfSacrifice Spell = "Grimoire of Sacrifice"
	GrimoireOfSupremacy Spell = "Grimoire of Supremacy"
	GrimoireImp         Spell = "Grimoire: Imp"
	GrimoireVoidwalker  Spell = "Grimoire: Voidwalker"
	GrimoireSuccubus    Spell = "Grimoire: Succubus"
	GrimoireFelhunter   Spell = "Grimoire: Felhunter"
	GrimoireDoomguard   Spell = "Grimoire: Doomguard"
	GrimoireInfernal    Spell = "Grimoire: Infernal"

	DarkIntent        Spell = "Dark Intent"
	UnendingBreath    Spell = "Unending Breath"
	Soulstone         Spell = "Soulstone"
	CreateHealthstone Spell = "Create Healthstone"

	MannorothsFury     Spell = "Mannoroth's Fury"
	Cataclysm          Spell = "Cataclysm"
	SeedOfCorruption   Spell = "Seed of Corruption"
	Agony              Spell = "Agony"
	Corruption         Spell = "Corruption"
	UnstableAffliction Spell = "Unstable Affliction"
	Haunt              Spell = "Haunt"
	DrainSoul          Spell = "Drain Soul"

	FireAndBrimstone Spell = "Fire and Brimstone"
	RainOfFire       Spell = "Rain of Fire"
	Havoc            Spell = "Havoc"
	Shadowburn       Spell = "Shadowburn"
	ChaosBolt        Spell = "Chaos Bolt"
	Conflagrate      Spell = "Conflagrate"
	Immolate         Spell = "Immolate"
	Incinerate       Spell = "Incinerate"

	Metamorphosis  Spell = "Metamorphosis"
	HandOfGuldan   Spell = "Hand of Gul'dan"
	Doom           Spell = "Doom"
	SoulFire       Spell = "Soul Fire"
	Demonbolt      Spell = "Demonbolt"
	MoltenCore     Spell = "Molten Core"
	Hellfire       Spell = "Hellfire"
	ImmolationAura Spell = "Immolation Aura"
	ShadowBolt     Spell = "Shadow Bolt"
	TouchOfChaos   Spell = "Touch of Chaos"
)

var knownSpells = func() map[string]Spell {
	all := []Spell{
		DarkSoulInstability, DarkSoulKnowledge, DarkSoulMisery, CommandDemon, AxeToss,
		Felstorm, UnboundWill, DarkBargain, SacrificialPact, UnendingResolve,
		DarkRegeneration, MortalCoil, HowlOfTerror, Fear, Shadowfury, EmberTap,
		HealthFunnel, LifeTap,
		FlamesOfXoroth, Soulburn, SummonImp, SummonFelImp, SummonVoidwalker,
		SummonSuccubus, SummonFelhunter, SummonFelguard, SummonInfernal,
		SummonDoomguard, SummonAbyssal, SummonTerrorguard, DemonicServitude,
		GrimoireOfSacrifice, GrimoireOfSupremacy, GrimoireImp, GrimoireVoidwalker,
		GrimoireSuccubus, GrimoireFelhunter, GrimoireDoomguard, GrimoireInfernal,
		DarkIntent, UnendingBreath, Soulstone, CreateHealthstone,
		MannorothsFury, Cataclysm, SeedOfCorruption, Agony, Corruption,
		UnstableAffliction, Haunt, DrainSoul,
		FireAndBrimstone, RainOfFire, Havoc, Shadowburn, ChaosBolt, Conflagrate,
		Immolate, Incinerate,
		Metamorphosis, HandOfGuldan, Doom, SoulFire, Demonbolt, MoltenCore,
		Hellfire, ImmolationAura, ShadowBolt, TouchOfChaos,
	}
	m := make(map[string]Spell, len(all))
	for _, s := range all {
		m[strings.ToLower(string(s))] = s
	}
	return m
}()

// KnownSpell resolves a spell name case-insensitively to its canonical symbol.
func KnownSpell(name string) (Spell, bool) {
	s, ok := knownSpells[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// KnownSpells returns every registered spell sorted by name.
func KnownSpells() []Spell {
	out := make([]Spell, 0, len(knownSpells))
	for _, s := range knownSpells {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
