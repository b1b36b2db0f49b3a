package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nstehr/grimoire/clock"
	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/gate"
	"github.com/nstehr/grimoire/memory"
	"github.com/nstehr/grimoire/mode"
	"github.com/nstehr/grimoire/model"
)

// fearTrackingHook names the hook that maintains the fear ban-list. Fear
// rules stop firing once it is disabled.
const fearTrackingHook = "fear-tracking"

// handOfGuldanThresholds pool charges: start spending at two, stop at zero.
var handOfGuldanThresholds = mode.Thresholds{Entry: 2, Exit: 1}

// Result is the outcome of one tick.
type Result struct {
	Acted   bool
	Rule    string
	Command *Command
	Reason  string // why nothing fired: "hold" or "no rule fired"
}

// ruleError tags a failure with the stage of the rule it came from.
type ruleError struct {
	stage string
	err   error
}

func (e *ruleError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *ruleError) Unwrap() error { return e.err }

type ruleHealth struct {
	failures int
	disabled bool
	lastErr  error
}

// Engine evaluates a rotation against snapshots, one tick at a time.
// At most one rule fires per tick; rules that keep failing are disabled for
// the rest of the session while the others continue.
type Engine struct {
	mu       sync.Mutex
	spec     Spec
	settings config.Settings
	rotation *Rotation
	exec     Executor
	reporter Reporter
	clock    clock.Clock
	gate     *gate.Gate
	sess     *session
	health   map[string]*ruleHealth
	idleLog  rate.Sometimes
}

type Option func(*Engine)

// WithClock replaces the wall clock, e.g. with a clock.Manual in tests and
// simulations.
func WithClock(c clock.Clock) Option { return func(e *Engine) { e.clock = c } }

// WithReporter receives a Diagnostic whenever a rule is disabled.
func WithReporter(r Reporter) Option { return func(e *Engine) { e.reporter = r } }

// NewEngine compiles the rotation for spec and prepares the session state.
func NewEngine(spec Spec, settings config.Settings, exec Executor, opts ...Option) (*Engine, error) {
	rot, err := CompileRotation(spec, settings)
	if err != nil {
		return nil, err
	}
	morph, err := mode.New(settings.MorphThresholds())
	if err != nil {
		return nil, fmt.Errorf("metamorphosis thresholds: %w", err)
	}
	hog, err := mode.New(handOfGuldanThresholds)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		spec:     spec,
		settings: settings,
		rotation: rot,
		exec:     exec,
		clock:    clock.Real{},
		health:   make(map[string]*ruleHealth),
		idleLog:  rate.Sometimes{Interval: 10 * time.Second},
	}
	for _, o := range opts {
		o(e)
	}
	e.gate = gate.New(e.clock)
	e.sess = &session{
		memory: memory.New[string](e.clock),
		morph:  morph,
		hog:    hog,
	}
	return e, nil
}

// Evaluate runs one tick: the combat phase while in combat, the resting
// phase otherwise. The first rule whose condition, debounce and action all
// succeed wins the tick.
func (e *Engine) Evaluate(snap model.Snapshot) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer func() { tickDuration.Observe(time.Since(start).Seconds()) }()

	e.sess.memory.PurgeExpired()
	phase := e.rotation.Resting
	if snap.InCombat {
		phase = e.rotation.Combat
	}
	env := RuleEnv{State: snap, Settings: e.settings, s: e.sess}

	res := e.evaluatePhase(phase, env)
	switch {
	case res.Acted:
		ticksTotal.WithLabelValues("acted").Inc()
	case res.Reason == "hold":
		ticksTotal.WithLabelValues("hold").Inc()
	default:
		ticksTotal.WithLabelValues("idle").Inc()
		e.idleLog.Do(func() { e.logIdleDiagnostics(phase, env) })
	}
	return res
}

func (e *Engine) evaluatePhase(p *Phase, env RuleEnv) Result {
	for _, h := range p.Prepare {
		if e.disabled(h.Name) {
			continue
		}
		e.settle(p.Name, h.Name, env.State.Tick, runHook(h, env))
	}
	e.sess.fear = e.settings.FearDoFear && !e.disabled(fearTrackingHook)

	if p.hold != nil {
		held, err := runBool(p.hold, env)
		if err != nil {
			slog.Warn("hold condition error", "phase", p.Name, "error", err)
		} else if held {
			return Result{Reason: "hold"}
		}
	}

	for _, r := range p.Rules {
		if e.disabled(r.Name) {
			continue
		}
		cmd, err := e.try(r, env)
		e.settle(p.Name, r.Name, env.State.Tick, err)
		if cmd == nil {
			continue
		}
		rulesFired.WithLabelValues(r.Name).Inc()
		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "spell", cmd.Spell, "target", cmd.Target)
		return Result{Acted: true, Rule: r.Name, Command: cmd}
	}
	return Result{Reason: "no rule fired"}
}

func runHook(h Hook, env RuleEnv) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &ruleError{stage: "panic", err: fmt.Errorf("%v", rec)}
		}
	}()
	if err := h.Run(env); err != nil {
		return &ruleError{stage: "hook", err: err}
	}
	return nil
}

// try walks the rule's candidates until one passes the condition, the
// debounce lock and the usability check, and its command is accepted.
func (e *Engine) try(r *Rule, env RuleEnv) (cmd *Command, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cmd = nil
			err = &ruleError{stage: "panic", err: fmt.Errorf("%v", rec)}
		}
	}()

	spell, ok := r.spellFor(env)
	if !ok {
		return nil, nil
	}
	cands, err := e.candidates(r, env)
	if err != nil {
		return nil, &ruleError{stage: "target", err: err}
	}

	for _, u := range cands {
		uenv := env.withUnit(u)
		var issued Command
		fired, err := e.gate.Attempt(r.actionID(spell),
			func() (bool, error) {
				ok, err := runBool(r.program, uenv)
				if err != nil {
					return false, &ruleError{stage: "condition", err: err}
				}
				return ok, nil
			},
			r.Debounce,
			func() (bool, error) {
				c, ok := command(r, spell, uenv)
				if !ok {
					return false, nil
				}
				if err := e.exec.Execute(c); err != nil {
					return false, &ruleError{stage: "action", err: err}
				}
				issued = c
				return true, nil
			})
		if err != nil {
			return nil, err
		}
		if fired {
			if r.OnFire != nil {
				r.OnFire(uenv, u)
			}
			return &issued, nil
		}
	}
	return nil, nil
}

func (e *Engine) candidates(r *Rule, env RuleEnv) ([]model.Unit, error) {
	if r.Target == nil {
		return []model.Unit{env.State.Me}, nil
	}
	var filterErr error
	keep := func(u model.Unit) bool {
		if r.filter == nil {
			return true
		}
		ok, err := runBool(r.filter, env.withUnit(u))
		if err != nil && filterErr == nil {
			filterErr = err
		}
		return ok
	}
	units, err := r.Target(env, keep)
	if err != nil {
		return nil, err
	}
	return units, filterErr
}

// command checks the spell can actually be cast on the candidate and builds
// the command for it.
func command(r *Rule, spell model.Spell, env RuleEnv) (Command, bool) {
	snap, u := env.State, env.Unit
	switch r.Kind {
	case KindPetAttack:
		if !snap.HasAlivePet() || u.GUID == "" {
			return Command{}, false
		}
		return Command{Kind: CommandPetAttack, Target: u.GUID}, true
	case KindPetDismiss:
		if !snap.HasAlivePet() {
			return Command{}, false
		}
		return Command{Kind: CommandPetDismiss}, true
	}

	info, err := snap.SpellInfo(spell)
	if err != nil || !info.Ready() {
		return Command{}, false
	}
	self := u.GUID == snap.Me.GUID
	pet := snap.Pet != nil && u.GUID == snap.Pet.GUID
	if !self && !pet {
		if !u.InLoS {
			return Command{}, false
		}
		if info.MaxRange > 0 && snap.Me.DistanceSquaredTo(u) > info.MaxRangeSq() {
			return Command{}, false
		}
	}
	c := Command{Kind: CommandCast, Spell: spell, Target: u.GUID}
	if castOnTerrain(spell, snap) {
		pos := u.Position
		c.Kind = CommandCastOnTerrain
		c.Position = &pos
	}
	return c, true
}

// settle records the outcome of a rule or hook. Transient failures (data the
// host could not provide this tick) are logged but never count toward
// disabling.
func (e *Engine) settle(phase, name string, tick int, err error) {
	h := e.health[name]
	if h == nil {
		h = &ruleHealth{}
		e.health[name] = h
	}
	if err == nil {
		h.failures = 0
		return
	}
	if errors.Is(err, model.ErrUnavailable) {
		ruleErrors.WithLabelValues("transient").Inc()
		slog.Debug("rule skipped", "rule", name, "error", err)
		return
	}

	stage := "unknown"
	var re *ruleError
	if errors.As(err, &re) {
		stage = re.stage
	}
	ruleErrors.WithLabelValues(stage).Inc()
	h.failures++
	h.lastErr = err
	slog.Warn("rule error", "rule", name, "phase", phase, "failures", h.failures, "error", err)

	if h.failures < max(1, e.settings.RuleFailureLimit) {
		return
	}
	h.disabled = true
	rulesDisabled.Inc()
	slog.Error("rule disabled for session", "rule", name, "phase", phase, "failures", h.failures, "error", err)
	if e.reporter != nil {
		e.reporter.Report(Diagnostic{Rule: name, Phase: phase, Tick: tick, Failures: h.failures, Error: err.Error()})
	}
}

func (e *Engine) disabled(name string) bool {
	h := e.health[name]
	return h != nil && h.disabled
}

// Disabled lists the rules and hooks turned off this session.
func (e *Engine) Disabled() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disabledLocked()
}

func (e *Engine) disabledLocked() []string {
	var names []string
	for name, h := range e.health {
		if h.disabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SetSettings recompiles the rotation for new settings. If compilation fails
// the old rotation stays active. Mode state, memory and disabled rules carry
// over.
func (e *Engine) SetSettings(s config.Settings) error {
	rot, err := CompileRotation(e.spec, s)
	if err != nil {
		return err
	}
	th := s.MorphThresholds()
	if err := th.Validate(); err != nil {
		return fmt.Errorf("metamorphosis thresholds: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rotation = rot
	e.settings = s
	if th != e.sess.morph.Thresholds() {
		morph, _ := mode.New(th)
		morph.Set(e.sess.morph.State())
		e.sess.morph = morph
	}
	slog.Info("rule set swapped", "spec", e.spec, "combat", len(rot.Combat.Rules), "resting", len(rot.Resting.Rules))
	return nil
}

// Reset forgets timed facts, e.g. when combat ends.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess.memory.Reset()
}

// Rotation returns the compiled rotation currently in use.
func (e *Engine) Rotation() *Rotation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rotation
}

func (e *Engine) Spec() Spec { return e.spec }

// logIdleDiagnostics helps debug "why isn't it casting anything?". Called
// through rate.Sometimes so it never floods the log.
func (e *Engine) logIdleDiagnostics(p *Phase, env RuleEnv) {
	slog.Info("idle diagnostics",
		"tick", env.State.Tick,
		"phase", p.Name,
		"health", env.MyHealth(),
		"mana", env.Mana(),
		"shards", env.Shards(),
		"embers", env.Embers(),
		"fury", env.Fury(),
		"hasTarget", env.HasTarget(),
		"adds", env.AddCount(),
		"pet", env.HasAlivePet(),
		"facts", e.sess.memory.Len(),
		"immolateLock", e.sess.memory.Remaining(immolateLockKey),
		"disabled", e.disabledLocked(),
	)
}
