package rules

import "github.com/nstehr/grimoire/model"

// CommandKind values are shared with the host bridge.
type CommandKind string

const (
	CommandCast          CommandKind = "cast"
	CommandCastOnTerrain CommandKind = "cast_on_terrain"
	CommandPetAttack     CommandKind = "pet_attack"
	CommandPetDismiss    CommandKind = "pet_dismiss"
)

// Command is the single action issued for a tick.
type Command struct {
	Kind     CommandKind `json:"kind"`
	Spell    model.Spell `json:"spell,omitempty"`
	Target   string      `json:"target,omitempty"`
	Position *model.Vec3 `json:"position,omitempty"`
}

//go:generate go tool mockgen -source=command.go -destination=mocks/mock_command.go -package=mocks

// Executor hands a command to the host. An error wrapping
// model.ErrUnavailable means the host could not resolve the target this tick.
type Executor interface {
	Execute(cmd Command) error
}

// Diagnostic reports a rule that was disabled after repeated failures.
type Diagnostic struct {
	Rule     string `json:"rule"`
	Phase    string `json:"phase"`
	Tick     int    `json:"tick"`
	Failures int    `json:"failures"`
	Error    string `json:"error"`
}

// Reporter receives diagnostics. Implementations must not block.
type Reporter interface {
	Report(d Diagnostic)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(cmd Command) error

func (f ExecutorFunc) Execute(cmd Command) error { return f(cmd) }

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }
