package ipc

import (
	"github.com/nstehr/grimoire/model"
	"github.com/nstehr/grimoire/rules"
)

// These constants must stay in sync with the bridge plugin's message table.
const (
	TypeHello      = "hello"
	TypeAck        = "ack"
	TypeSnapshot   = "snapshot"
	TypeTickResult = "tick_result"
	TypeDiagnostic = "diagnostic"
)

// HelloMessage identifies the character driving this connection.
type HelloMessage struct {
	Player string `json:"player"`
	Class  string `json:"class"`
	Spec   string `json:"spec"`
}

type AckMessage struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SnapshotMessage is one tick of world state.
type SnapshotMessage = model.Snapshot

// TickResultMessage answers a snapshot. Command is nil when nothing fired.
type TickResultMessage struct {
	Tick    int            `json:"tick"`
	Acted   bool           `json:"acted"`
	Rule    string         `json:"rule,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Command *rules.Command `json:"command,omitempty"`
}

// DiagnosticMessage is pushed unsolicited when a rule gets disabled.
type DiagnosticMessage struct {
	Session string `json:"session"`
	rules.Diagnostic
}
