package rules

import (
	"fmt"

	"github.com/nstehr/grimoire/model"
	"github.com/nstehr/grimoire/target"
)

// Self ignores the filter: the character is always a candidate.
func Self(env RuleEnv, _ func(model.Unit) bool) ([]model.Unit, error) {
	return []model.Unit{env.State.Me}, nil
}

func CurrentTarget(env RuleEnv, keep func(model.Unit) bool) ([]model.Unit, error) {
	t := env.State.Target
	if t == nil || !keep(*t) {
		return nil, nil
	}
	return []model.Unit{*t}, nil
}

func PetUnit(env RuleEnv, keep func(model.Unit) bool) ([]model.Unit, error) {
	p := env.State.Pet
	if p == nil || !keep(*p) {
		return nil, nil
	}
	return []model.Unit{*p}, nil
}

// EachAdd offers every add the filter keeps, in snapshot order.
func EachAdd(env RuleEnv, keep func(model.Unit) bool) ([]model.Unit, error) {
	var out []model.Unit
	for _, a := range env.State.Adds {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// FirstAdd offers only the first add the filter keeps.
func FirstAdd(env RuleEnv, keep func(model.Unit) bool) ([]model.Unit, error) {
	for _, a := range env.State.Adds {
		if keep(a) {
			return []model.Unit{a}, nil
		}
	}
	return nil, nil
}

// BestAoE aims sp at the reachable add that covers the most other adds,
// falling back to the current target.
func BestAoE(sp model.Spell) Strategy {
	return func(env RuleEnv, keep func(model.Unit) bool) ([]model.Unit, error) {
		info, ok := env.State.Spells[sp]
		if !ok {
			return nil, nil
		}
		u, ok := target.BestAoE(env.State.Adds, env.State.Target, target.AoEOptions{
			Origin:     env.State.Me.Position,
			RadiusSq:   spellAoERadiusSq(sp, env.State.Me),
			MaxRangeSq: info.MaxRangeSq(),
			Keep:       keep,
		})
		if !ok {
			return nil, nil
		}
		return []model.Unit{u}, nil
	}
}

// HavocTarget picks the secondary target for Havoc: the focus when
// configured, otherwise the healthiest add under the health threshold. A
// friendly pick is replaced by whatever it is targeting.
func HavocTarget(env RuleEnv, keep func(model.Unit) bool) ([]model.Unit, error) {
	snap := env.State
	var pick *model.Unit
	if env.Settings.UseHavocOnFocus {
		pick = snap.Focus
	} else if len(snap.Adds) > 0 {
		limit := float64(env.Settings.HavocHealthPercentage) / 100
		rangeSq := snap.Spells[model.Havoc].MaxRangeSq()
		var low []model.Unit
		for _, a := range snap.Adds {
			if a.HealthFraction() > limit || !a.InLoS {
				continue
			}
			if rangeSq > 0 && snap.Me.DistanceSquaredTo(a) > rangeSq {
				continue
			}
			low = append(low, a)
		}
		best, ok := target.HighestHealth(low)
		if !ok {
			best = snap.Adds[0]
		}
		pick = &best
	}
	if pick == nil {
		return nil, nil
	}
	u := *pick
	if u.IsFriendly() {
		if u.TargetGUID == "" {
			return nil, nil
		}
		resolved, ok := snap.Unit(u.TargetGUID)
		if !ok {
			return nil, fmt.Errorf("havoc through %s: target %s: %w", u.GUID, u.TargetGUID, model.ErrUnavailable)
		}
		u = resolved
	}
	if !keep(u) {
		return nil, nil
	}
	return []model.Unit{u}, nil
}

// ExecuteTarget picks the add closest to death under 20% health that is
// not carrying Havoc, falling back to the current target.
func ExecuteTarget(env RuleEnv, keep func(model.Unit) bool) ([]model.Unit, error) {
	snap := env.State
	rangeSq := snap.Spells[model.Shadowburn].MaxRangeSq()
	var dying []model.Unit
	for _, a := range snap.Adds {
		if a.HealthFraction() > 0.2 || a.HasAura(model.Havoc) || !a.InLoS {
			continue
		}
		if rangeSq > 0 && snap.Me.DistanceSquaredTo(a) > rangeSq {
			continue
		}
		if keep(a) {
			dying = append(dying, a)
		}
	}
	if u, ok := target.LowestHealth(dying); ok {
		return []model.Unit{u}, nil
	}
	if snap.Target != nil && keep(*snap.Target) {
		return []model.Unit{*snap.Target}, nil
	}
	return nil, nil
}
