package ipc

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection is one bridge instance driving one agent. The agent is known
// after the hello handshake.
type Connection struct {
	conn     net.Conn
	handlers map[string]Handler
	log      *slog.Logger

	wmu   sync.Mutex
	Agent string
}

func NewConnection(conn net.Conn, handlers map[string]Handler, log *slog.Logger) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Connection{conn: conn, handlers: handlers, log: log}
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
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return WriteEnvelope(c.conn, env)
}

// Close unblocks ReadLoop.
func (c *Connection) Close() error { return c.conn.Close() }

// ReadLoop blocks until the connection closes or errors. It owns the conn
// lifetime.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()

	for {
		env, err := ReadEnvelope(c.conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.log.Info("connection closed", "agent", c.Agent)
			} else {
				c.log.Info("connection read ended", "agent", c.Agent, "error", err)
			}
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			c.log.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			c.log.Error("handler error", "type", env.Type, "agent", c.Agent, "error", err)
			continue
		}
		if resp != nil {
			if err := c.write(*resp); err != nil {
				c.log.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
		}
	}
}
