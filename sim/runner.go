package sim

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/nstehr/grimoire/clock"
	"github.com/nstehr/grimoire/model"
	"github.com/nstehr/grimoire/rules"
)

// epoch is where every simulated clock starts so traces are reproducible.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Frame is the outcome of one scripted tick.
type Frame struct {
	Tick    int            `json:"tick"`
	At      time.Duration  `json:"at"`
	Acted   bool           `json:"acted"`
	Rule    string         `json:"rule,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Command *rules.Command `json:"command,omitempty"`
	// Attempts lists every command handed to the host, including rejected ones.
	Attempts []rules.Command `json:"attempts,omitempty"`
	Expect   string          `json:"expect,omitempty"`
	Mismatch bool            `json:"mismatch,omitempty"`
}

// Trace is the full record of a run.
type Trace struct {
	Scenario    string             `json:"scenario"`
	Spec        rules.Spec         `json:"spec"`
	Frames      []Frame            `json:"frames"`
	Diagnostics []rules.Diagnostic `json:"diagnostics,omitempty"`
	Disabled    []string           `json:"disabled,omitempty"`
}

// Mismatches returns the frames whose outcome differed from the script.
func (t *Trace) Mismatches() []Frame {
	var out []Frame
	for _, f := range t.Frames {
		if f.Mismatch {
			out = append(out, f)
		}
	}
	return out
}

// recorder stands in for the host: it accepts every command except the
// spells the current step rejects.
type recorder struct {
	reject   []model.Spell
	attempts []rules.Command
	diags    []rules.Diagnostic
}

func (r *recorder) Execute(cmd rules.Command) error {
	r.attempts = append(r.attempts, cmd)
	if slices.Contains(r.reject, cmd.Spell) {
		return fmt.Errorf("host rejected %s", cmd.Spell)
	}
	return nil
}

func (r *recorder) Report(d rules.Diagnostic) {
	r.diags = append(r.diags, d)
}

// Run replays sc against a fresh engine on a manual clock.
func Run(sc *Scenario) (*Trace, error) {
	c := clock.NewManual(epoch)
	rec := &recorder{}
	engine, err := rules.NewEngine(sc.Spec, sc.Settings, rec, rules.WithClock(c), rules.WithReporter(rec))
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	trace := &Trace{Scenario: sc.Name, Spec: sc.Spec}
	for _, step := range sc.Steps {
		c.Advance(step.Advance)
		rec.reject = step.Reject
		rec.attempts = nil

		res := engine.Evaluate(step.State)
		f := Frame{
			Tick:     step.State.Tick,
			At:       c.Now().Sub(epoch),
			Acted:    res.Acted,
			Rule:     res.Rule,
			Reason:   res.Reason,
			Command:  res.Command,
			Attempts: rec.attempts,
			Expect:   step.Expect,
		}
		switch step.Expect {
		case "":
		case ExpectIdle:
			f.Mismatch = res.Acted
		default:
			f.Mismatch = res.Rule != step.Expect
		}
		if f.Mismatch {
			slog.Warn("unexpected tick outcome", "scenario", sc.Name, "tick", f.Tick, "expect", f.Expect, "rule", f.Rule, "reason", f.Reason)
		}
		trace.Frames = append(trace.Frames, f)
	}
	trace.Diagnostics = rec.diags
	trace.Disabled = engine.Disabled()
	return trace, nil
}
