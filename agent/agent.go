package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nstehr/grimoire/config"
	"github.com/nstehr/grimoire/ipc"
	"github.com/nstehr/grimoire/model"
	"github.com/nstehr/grimoire/rules"
)

var errNoSession = errors.New("snapshot before hello")

// Agent owns the decision-making for a single character session.
type Agent struct {
	Conn   *ipc.Connection
	Player string

	store      *config.Store
	version    uint64
	engine     *rules.Engine
	engineOpts []rules.Option

	mu          sync.Mutex
	diagnostics []rules.Diagnostic

	prev *stateSnapshot
}

// New creates an agent for conn. Engine options are applied to every engine
// the agent builds.
func New(conn *ipc.Connection, store *config.Store, opts ...rules.Option) *Agent {
	return &Agent{Conn: conn, store: store, engineOpts: opts}
}

// Execute accepts the tick's command. The bridge applies it when the tick
// result arrives, so nothing can be rejected at this point.
func (a *Agent) Execute(rules.Command) error {
	return nil
}

// Report queues a diagnostic; it goes out after the tick that produced it.
func (a *Agent) Report(d rules.Diagnostic) {
	a.mu.Lock()
	a.diagnostics = append(a.diagnostics, d)
	a.mu.Unlock()
}

// HandleHello completes the handshake and builds the engine for the
// character's specialization.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}

	reject := func(err error) (*ipc.Envelope, error) {
		slog.Warn("hello rejected", "session", a.Conn.SessionID, "player", hello.Player, "error", err)
		ack, aerr := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "error", Session: a.Conn.SessionID, Error: err.Error()})
		if aerr != nil {
			return nil, aerr
		}
		return &ack, nil
	}

	if !strings.EqualFold(hello.Class, "warlock") {
		return reject(fmt.Errorf("unsupported class %q", hello.Class))
	}
	spec, err := rules.ParseSpec(hello.Spec)
	if err != nil {
		return reject(err)
	}
	settings, version := a.store.Load()
	opts := append([]rules.Option{rules.WithReporter(a)}, a.engineOpts...)
	engine, err := rules.NewEngine(spec, settings, a, opts...)
	if err != nil {
		return reject(err)
	}

	a.Player = hello.Player
	a.Conn.Player = hello.Player
	a.engine = engine
	a.version = version
	a.prev = nil
	slog.Info("player identified", "session", a.Conn.SessionID, "player", a.Player, "spec", spec)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: a.Conn.SessionID})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleSnapshot runs one tick and replies with its result.
func (a *Agent) HandleSnapshot(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.engine == nil {
		return nil, errNoSession
	}
	var snap ipc.SnapshotMessage
	if err := env.Decode(&snap); err != nil {
		return nil, err
	}

	a.syncSettings()
	a.handleEvents(snap)

	res := a.engine.Evaluate(snap)
	a.flushDiagnostics()

	out := ipc.TickResultMessage{
		Tick:    snap.Tick,
		Acted:   res.Acted,
		Rule:    res.Rule,
		Reason:  res.Reason,
		Command: res.Command,
	}
	reply, err := ipc.NewEnvelope(ipc.TypeTickResult, out)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// syncSettings swaps in new settings between ticks. A rejected update keeps
// the running rotation and is not retried until the store moves again.
func (a *Agent) syncSettings() {
	settings, version := a.store.Load()
	if version == a.version {
		return
	}
	a.version = version
	if err := a.engine.SetSettings(settings); err != nil {
		slog.Error("settings update rejected", "session", a.Conn.SessionID, "version", version, "error", err)
	}
}

func (a *Agent) handleEvents(snap model.Snapshot) {
	events := detectEvents(snap, a.prev)
	cur := takeSnapshot(snap)
	a.prev = &cur
	for _, ev := range events {
		slog.Info("session event", "session", a.Conn.SessionID, "kind", ev.Kind, "tick", ev.Tick, "detail", ev.Detail)
		if ev.Kind == EventCombatEnded {
			a.engine.Reset()
		}
	}
}

func (a *Agent) flushDiagnostics() {
	a.mu.Lock()
	pending := a.diagnostics
	a.diagnostics = nil
	a.mu.Unlock()

	for _, d := range pending {
		msg := ipc.DiagnosticMessage{Session: a.Conn.SessionID, Diagnostic: d}
		if err := a.Conn.Send(ipc.TypeDiagnostic, msg); err != nil {
			slog.Error("failed to send diagnostic", "session", a.Conn.SessionID, "rule", d.Rule, "error", err)
		}
	}
}
