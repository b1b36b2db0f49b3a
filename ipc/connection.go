package ipc

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection represents a single bridge instance talking to the sidecar.
// Each character gets its own connection, identified after the hello handshake.
type Connection struct {
	conn      io.ReadWriteCloser
	handlers  map[string]Handler
	SessionID string
	Player    string

	// Replies and unsolicited diagnostics share the writer.
	writeMu sync.Mutex
}

func NewConnection(conn io.ReadWriteCloser, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		conn:      conn,
		handlers:  handlers,
		SessionID: uuid.NewString(),
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.write(env)
}

func (c *Connection) write(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteEnvelope(c.conn, env)
}

// Close ends the connection; a blocked ReadLoop returns.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// ReadLoop blocks until the connection closes or errors. It owns the conn lifetime
// so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()

	for {
		env, err := ReadEnvelope(c.conn)
		if err != nil {
			slog.Info("connection read ended", "session", c.SessionID, "player", c.Player, "error", err)
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "session", c.SessionID, "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "session", c.SessionID, "type", env.Type, "error", err)
			continue
		}

		if resp != nil {
			if err := c.write(*resp); err != nil {
				slog.Error("failed to send response", "session", c.SessionID, "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "session", c.SessionID)
		}
	}
}
