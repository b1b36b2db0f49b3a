package rules

import "github.com/nstehr/grimoire/model"

// aoeRadiusSq holds the squared effect radius of area spells.
var aoeRadiusSq = map[model.Spell]float64{
	model.RainOfFire:     8 * 8,
	model.HandOfGuldan:   6 * 6,
	model.Felstorm:       8 * 8,
	model.Shadowfury:     8 * 8,
	model.Immolate:       10 * 10, // Fire and Brimstone version
	model.Conflagrate:    10 * 10, // Fire and Brimstone version
	model.Cataclysm:      8 * 8,
	model.Hellfire:       8 * 8,
	model.ImmolationAura: 8 * 8,
}

// Unlisted spells assume the widest radius.
const defaultAoERadiusSq = 12 * 12

// mannorothScaled spells get five times the squared radius under Mannoroth's Fury.
var mannorothScaled = map[model.Spell]bool{
	model.SeedOfCorruption: true,
	model.Hellfire:         true,
	model.ImmolationAura:   true,
	model.RainOfFire:       true,
}

const mannorothFactor = 5

// handOfGuldanGlyph turns Hand of Gul'dan into a ground-targeted spell.
const handOfGuldanGlyph = 56248

func spellAoERadiusSq(sp model.Spell, me model.Unit) float64 {
	r, ok := aoeRadiusSq[sp]
	if !ok {
		r = defaultAoERadiusSq
	}
	if mannorothScaled[sp] && me.HasAura(model.MannorothsFury) {
		r *= mannorothFactor
	}
	return r
}

func castOnTerrain(sp model.Spell, s model.Snapshot) bool {
	switch sp {
	case model.Shadowfury, model.RainOfFire, model.Cataclysm, model.SummonInfernal, model.SummonAbyssal:
		return true
	case model.HandOfGuldan:
		return s.IsGlyphed(handOfGuldanGlyph)
	}
	return false
}

// shadowburnDamage estimates one Shadowburn hit from spell power.
func shadowburnDamage(spellPower int) int {
	return int(315.0 / 100 * float64(spellPower) * 1.24)
}
