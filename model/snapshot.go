package model

import (
	"errors"
	"slices"
)

// ErrUnavailable marks data the host could not resolve this tick.
// Rules that hit it are skipped for the tick and are not counted as failing.
var ErrUnavailable = errors.New("data unavailable")

// Relation describes how a unit relates to the controlled character.
type Relation string

const (
	RelationEnemy Relation = "enemy"
	RelationAlly  Relation = "ally"
	RelationPet   Relation = "pet"
	RelationSelf  Relation = "self"
)

// Snapshot is the read-only view of the world the host hands over each tick.
// It must not be retained past the tick it was delivered for.
type Snapshot struct {
	Tick           int                 `json:"tick"`
	Bot            string              `json:"bot"`
	InCombat       bool                `json:"in_combat"`
	GroupSize      int                 `json:"group_size"`
	SpellPower     int                 `json:"spell_power"`
	HasHealthstone bool                `json:"has_healthstone"`
	Glyphs         []int               `json:"glyphs,omitempty"`
	Me             Unit                `json:"me"`
	Target         *Unit               `json:"target,omitempty"`
	Pet            *Unit               `json:"pet,omitempty"`
	Focus          *Unit               `json:"focus,omitempty"`
	Adds           []Unit              `json:"adds"`
	Spells         map[Spell]SpellInfo `json:"spells"`
}

// HasSpell reports whether the character knows the spell.
func (s Snapshot) HasSpell(sp Spell) bool {
	_, ok := s.Spells[sp]
	return ok
}

// SpellInfo returns the per-spell metadata, or ErrUnavailable when the
// spell is not known this tick.
func (s Snapshot) SpellInfo(sp Spell) (SpellInfo, error) {
	info, ok := s.Spells[sp]
	if !ok {
		return SpellInfo{}, ErrUnavailable
	}
	return info, nil
}

func (s Snapshot) IsGlyphed(id int) bool {
	return slices.Contains(s.Glyphs, id)
}

// HasAlivePet is true when a pet is present and has health left.
func (s Snapshot) HasAlivePet() bool {
	return s.Pet != nil && s.Pet.Health > 0
}

// Unit resolves a GUID against every unit in the snapshot.
func (s Snapshot) Unit(guid string) (Unit, bool) {
	if guid == "" {
		return Unit{}, false
	}
	if s.Me.GUID == guid {
		return s.Me, true
	}
	for _, u := range []*Unit{s.Target, s.Pet, s.Focus} {
		if u != nil && u.GUID == guid {
			return *u, true
		}
	}
	for _, u := range s.Adds {
		if u.GUID == guid {
			return u, true
		}
	}
	return Unit{}, false
}

// SpellInfo is the host's view of a known spell. Cooldown is in seconds.
// A MaxRange of zero means the spell has no range limit.
type SpellInfo struct {
	MaxRange   float64 `json:"max_range"`
	Cooldown   float64 `json:"cooldown"`
	Charges    int     `json:"charges"`
	MaxCharges int     `json:"max_charges"`
}

// Ready is true when the spell is off cooldown, or has a charge left for
// charge-based spells.
func (i SpellInfo) Ready() bool {
	if i.MaxCharges > 0 {
		return i.Charges > 0
	}
	return i.Cooldown <= 0.01
}

func (i SpellInfo) MaxRangeSq() float64 {
	return i.MaxRange * i.MaxRange
}

type Aura struct {
	Spell     Spell   `json:"spell"`
	Remaining float64 `json:"remaining"`
	Stacks    int     `json:"stacks"`
	Mine      bool    `json:"mine"`
}

type Cast struct {
	Spell         Spell `json:"spell"`
	Interruptible bool  `json:"interruptible"`
}

// Unit is a single combat participant.
type Unit struct {
	GUID          string   `json:"guid"`
	Name          string   `json:"name"`
	Health        int      `json:"health"`
	MaxHealth     int      `json:"max_health"`
	Level         int      `json:"level"`
	Position      Vec3     `json:"position"`
	Auras         []Aura   `json:"auras,omitempty"`
	Mana          int      `json:"mana"`
	MaxMana       int      `json:"max_mana"`
	SoulShards    int      `json:"soul_shards"`
	BurningEmbers int      `json:"burning_embers"`
	DemonicFury   int      `json:"demonic_fury"`
	Casting       *Cast    `json:"casting,omitempty"`
	Relation      Relation `json:"relation"`
	Player        bool     `json:"player"`
	Elite         bool     `json:"elite"`
	InLoS         bool     `json:"in_los"`
	InCombatRange bool     `json:"in_combat_range"`
	TargetGUID    string   `json:"target_guid,omitempty"`
	DisplayID     int      `json:"display_id"`
	InCombat      bool     `json:"in_combat"`
	Swimming      bool     `json:"swimming"`
	Controlled    bool     `json:"controlled"`
}

func (u Unit) HealthFraction() float64 {
	if u.MaxHealth <= 0 {
		return 0
	}
	return float64(u.Health) / float64(u.MaxHealth)
}

func (u Unit) Alive() bool { return u.Health > 0 }

func (u Unit) IsFriendly() bool {
	return u.Relation == RelationAlly || u.Relation == RelationSelf || u.Relation == RelationPet
}

func (u Unit) aura(sp Spell, mine bool) (Aura, bool) {
	for _, a := range u.Auras {
		if a.Spell == sp && (!mine || a.Mine) {
			return a, true
		}
	}
	return Aura{}, false
}

func (u Unit) HasAura(sp Spell) bool {
	_, ok := u.aura(sp, false)
	return ok
}

// HasMyAura only matches auras applied by the controlled character.
func (u Unit) HasMyAura(sp Spell) bool {
	_, ok := u.aura(sp, true)
	return ok
}

// AuraRemaining returns the seconds left on the aura, preferring our own
// application. Zero when absent.
func (u Unit) AuraRemaining(sp Spell) float64 {
	if a, ok := u.aura(sp, true); ok {
		return a.Remaining
	}
	a, _ := u.aura(sp, false)
	return a.Remaining
}

func (u Unit) AuraStacks(sp Spell, mine bool) int {
	a, _ := u.aura(sp, mine)
	return a.Stacks
}

func (u Unit) HpGreaterThanOrElite(f float64) bool {
	return u.Elite || u.HealthFraction() > f
}

func (u Unit) HpLessThanOrElite(f float64) bool {
	return u.Elite || u.HealthFraction() < f
}

func (u Unit) IsCastingAndInterruptible() bool {
	return u.Casting != nil && u.Casting.Interruptible
}

func (u Unit) IsCastingSpell(sp Spell) bool {
	return u.Casting != nil && u.Casting.Spell == sp
}

func (u Unit) DistanceSquaredTo(o Unit) float64 {
	return u.Position.DistanceSquared(o.Position)
}
