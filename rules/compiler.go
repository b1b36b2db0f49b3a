package rules

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/model"
)

// Spec names a Warlock specialization.
type Spec string

const (
	Affliction  Spec = "affliction"
	Destruction Spec = "destruction"
	Demonology  Spec = "demonology"
)

func ParseSpec(s string) (Spec, error) {
	switch sp := Spec(strings.ToLower(strings.TrimSpace(s))); sp {
	case Affliction, Destruction, Demonology:
		return sp, nil
	}
	return "", fmt.Errorf("unknown specialization %q", s)
}

// CompileRotation builds the rule tables for spec from settings and compiles
// every condition. Thresholds are interpolated with fmt.Sprintf and feature
// toggles decide which rules exist at all, so a settings change means a new
// rotation rather than runtime branching.
func CompileRotation(spec Spec, s config.Settings) (*Rotation, error) {
	var suffix []*Rule
	var prepare []Hook
	switch spec {
	case Affliction:
		suffix = afflictionRules(s)
	case Destruction:
		suffix = destructionRules(s)
	case Demonology:
		suffix = demonologyRules(s)
		prepare = append(prepare, Hook{Name: "demonology-modes", Run: syncDemonologyModes})
	default:
		return nil, fmt.Errorf("unknown specialization %q", spec)
	}

	combat := &Phase{
		Name:    "combat",
		HoldSrc: `Casting("Cataclysm")`,
		Prepare: append(sharedHooks(s), prepare...),
		Rules:   compose(sharedCombatRules(s), suffix),
	}
	resting := &Phase{
		Name:    "resting",
		HoldSrc: fmt.Sprintf(`%t && (Bot() == "Fish" || Bot() == "Auction")`, s.DisableOOCFishbot),
		Rules:   compose(restingRules(s), nil),
	}
	for _, p := range []*Phase{combat, resting} {
		if err := compilePhase(p); err != nil {
			return nil, err
		}
	}
	return &Rotation{Spec: spec, Combat: combat, Resting: resting}, nil
}

// compose orders each part by priority and keeps the shared prefix ahead of
// the spec suffix regardless of the numbers used.
func compose(prefix, suffix []*Rule) []*Rule {
	byPriority := func(a, b *Rule) int { return cmp.Compare(b.Priority, a.Priority) }
	slices.SortStableFunc(prefix, byPriority)
	slices.SortStableFunc(suffix, byPriority)
	return append(prefix, suffix...)
}

func compilePhase(p *Phase) error {
	if p.HoldSrc != "" {
		prog, err := compileCondition(p.HoldSrc)
		if err != nil {
			return fmt.Errorf("compile %s hold: %w", p.Name, err)
		}
		p.hold = prog
	}
	seen := make(map[string]bool, len(p.Rules))
	for _, r := range p.Rules {
		if seen[r.Name] {
			return fmt.Errorf("compile %s: duplicate rule %q", p.Name, r.Name)
		}
		seen[r.Name] = true
		if r.Spell != "" {
			if _, ok := model.KnownSpell(string(r.Spell)); !ok {
				return fmt.Errorf("compile rule %q: unknown spell %q", r.Name, r.Spell)
			}
		}
		src := r.ConditionSrc
		if src == "" {
			src = "true"
		}
		prog, err := compileCondition(src)
		if err != nil {
			return fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
		if r.FilterSrc != "" {
			filter, err := compileCondition(r.FilterSrc)
			if err != nil {
				return fmt.Errorf("compile rule %q filter: %w", r.Name, err)
			}
			r.filter = filter
		}
	}
	return nil
}

func compileCondition(src string) (*vm.Program, error) {
	check := &nameChecker{}
	prog, err := expr.Compile(src, expr.Env(RuleEnv{}), expr.AsBool(), expr.Patch(check))
	if err != nil {
		return nil, err
	}
	if check.err != nil {
		return nil, check.err
	}
	return prog, nil
}

func runBool(prog *vm.Program, env RuleEnv) (bool, error) {
	out, err := vm.Run(prog, env)
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}

// spellArgFuncs take a spell name as their first argument.
var spellArgFuncs = map[string]bool{
	"HasAura": true, "MyAuraStacks": true, "Casting": true, "HasSpell": true,
	"Cooldown": true, "Charges": true, "SpellRangeSq": true, "AoERadiusSq": true,
	"TargetHasAura": true, "TargetHasMyAura": true, "UnitHasAura": true,
	"UnitHasMyAura": true, "UnitRemaining": true, "AddsInAoE": true, "EnemiesInAoE": true,
}

// nameChecker rejects spell and pet name literals that do not resolve, so a
// typo fails at compile time instead of silently never matching.
type nameChecker struct {
	err error
}

func (c *nameChecker) Visit(node *ast.Node) {
	call, ok := (*node).(*ast.CallNode)
	if !ok || c.err != nil || len(call.Arguments) == 0 {
		return
	}
	var fn string
	switch callee := call.Callee.(type) {
	case *ast.IdentifierNode:
		fn = callee.Value
	case *ast.MemberNode:
		if p, ok := callee.Property.(*ast.StringNode); ok {
			fn = p.Value
		}
	}
	lit, ok := call.Arguments[0].(*ast.StringNode)
	if !ok {
		return
	}
	switch {
	case spellArgFuncs[fn]:
		sp, known := model.KnownSpell(lit.Value)
		if !known {
			c.err = fmt.Errorf("%s: unknown spell %q", fn, lit.Value)
		} else if string(sp) != lit.Value {
			c.err = fmt.Errorf("%s: spell %q must be written %q", fn, lit.Value, sp)
		}
	case fn == "PetActive":
		if _, known := petForms[config.Pet(lit.Value)]; !known {
			c.err = fmt.Errorf("PetActive: unknown pet %q", lit.Value)
		}
	}
}
