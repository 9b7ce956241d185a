package server

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/udisondev/gserver/internal/protocol"
)

// HandlerFunc handles one inbound message. The payload aliases the read buffer
// and is valid only until the handler returns.
type HandlerFunc func(ctx context.Context, c *Client, msg protocol.Message) error

// Dispatcher maps a message type to its handler. The table covers every uint8
// type, including the ones a GChar type byte cannot carry.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers [math.MaxUint8 + 1]HandlerFunc
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register sets the handler for t, replacing any previous one. A nil h unregisters.
func (d *Dispatcher) Register(t protocol.ClientType, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = h
}

// Handler returns the handler registered for t.
func (d *Dispatcher) Handler(t uint8) (HandlerFunc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h := d.handlers[t]
	return h, h != nil
}

// Dispatch runs the handler for msg. Unknown types and handler errors are logged
// and the message is dropped; neither is fatal to the connection.
func (d *Dispatcher) Dispatch(ctx context.Context, c *Client, msg protocol.Message) {
	h, ok := d.Handler(msg.Type)
	if !ok {
		slog.Warn("unknown packet type",
			"type", protocol.ClientType(msg.Type),
			"size", len(msg.Payload),
			"id", c.ID(),
			"client", c.IP())
		return
	}

	if err := h(ctx, c, msg); err != nil {
		slog.Warn("packet dropped",
			"type", protocol.ClientType(msg.Type),
			"error", err,
			"id", c.ID(),
			"client", c.IP())
	}
}
