package rules

import (
	"time"

	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/grimoire/model"
)

// Kind selects which command a rule issues when it fires.
type Kind int

const (
	KindCast Kind = iota
	KindPetAttack
	KindPetDismiss
)

// Strategy lists the candidate targets for a rule in preference order.
// keep applies the rule's FilterSrc; strategies must call it on every unit
// they consider.
type Strategy func(env RuleEnv, keep func(model.Unit) bool) ([]model.Unit, error)

// Rule is the atomic unit of a rotation: trigger predicate, target strategy
// and the gated action it performs.
type Rule struct {
	Name     string      // human-readable identifier
	Priority int         // higher = evaluated first within its phase
	Spell    model.Spell // static spell; ignored when Resolve is set
	Kind     Kind

	// Resolve picks the spell at evaluation time, e.g. the demon to summon.
	// Returning false skips the rule for this tick.
	Resolve func(env RuleEnv) (model.Spell, bool)

	Target       Strategy      // nil targets the character itself
	ConditionSrc string        // expr source, evaluated per candidate with Unit bound
	FilterSrc    string        // optional expr source used by Target to narrow candidates
	Debounce     time.Duration // minimum gap between two fires of the same spell

	// OnFire runs after the command was accepted by the executor.
	OnFire func(env RuleEnv, target model.Unit)

	program *vm.Program
	filter  *vm.Program
}

func (r *Rule) spellFor(env RuleEnv) (model.Spell, bool) {
	if r.Resolve != nil {
		return r.Resolve(env)
	}
	return r.Spell, r.Spell != "" || r.Kind != KindCast
}

// actionID keys the debounce lock. Casts of the same spell share one lock,
// whichever rule issued them.
func (r *Rule) actionID(sp model.Spell) string {
	if sp != "" {
		return string(sp)
	}
	return r.Name
}

// Hook runs before the rules of a phase to update per-tick bookkeeping such
// as the fear ban-list or mode controllers. Hooks share the rules' failure
// isolation: a hook that keeps failing is disabled on its own.
type Hook struct {
	Name string
	Run  func(env RuleEnv) error
}

// Phase is one ordered rule chain. HoldSrc, when true, makes the whole
// phase idle for the tick.
type Phase struct {
	Name    string
	HoldSrc string
	Prepare []Hook
	Rules   []*Rule

	hold *vm.Program
}

// Rotation is everything a specialization evaluates: a combat phase and an
// out-of-combat phase, each a shared prefix followed by the spec suffix.
type Rotation struct {
	Spec    Spec
	Combat  *Phase
	Resting *Phase
}
