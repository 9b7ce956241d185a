package testutil

import (
	"bytes"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/udisondev/gserver/internal/constants"
	"github.com/udisondev/gserver/internal/crypto"
	"github.com/udisondev/gserver/internal/login"
	"github.com/udisondev/gserver/internal/protocol"
)

// GameClient is a test helper speaking the client side of the protocol.
// Handles the login handshake, both crypto directions and message parsing.
type GameClient struct {
	t    testing.TB
	conn net.Conn
	out  *crypto.Pipeline // client → server
	in   *crypto.Pipeline // server → client

	timeout time.Duration
	pending []protocol.Message
}

// NewGameClient wraps an established connection.
func NewGameClient(t testing.TB, conn net.Conn) *GameClient {
	t.Helper()
	return &GameClient{t: t, conn: conn, timeout: constants.TestIOTimeout}
}

// DialGameClient connects to the server at addr.
func DialGameClient(t testing.TB, addr string) (*GameClient, error) {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, constants.TestIOTimeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewGameClient(t, conn), nil
}

// Conn returns the underlying connection.
func (c *GameClient) Conn() net.Conn {
	return c.conn
}

// Close closes the connection.
func (c *GameClient) Close() error {
	return c.conn.Close()
}

// Login sends the handshake. The login bundle is always deflated like
// generation 2; afterwards both directions switch to the role's generation.
func (c *GameClient) Login(req *login.Request) error {
	payload := login.AppendLoginRequest(nil, req)

	gen2, err := crypto.NewPipeline(crypto.Gen2, 0)
	if err != nil {
		return err
	}
	bundle, err := gen2.Encode(payload)
	if err != nil {
		return fmt.Errorf("encoding login: %w", err)
	}
	if err := c.writeBundle(bundle); err != nil {
		return fmt.Errorf("sending login: %w", err)
	}

	if c.out, err = crypto.NewPipeline(req.Generation(), req.Key); err != nil {
		return err
	}
	if c.in, err = crypto.NewPipeline(req.Generation(), req.Key); err != nil {
		return err
	}
	return nil
}

// Send encodes messages into one bundle and writes it.
func (c *GameClient) Send(msgs ...protocol.Message) error {
	payload, err := protocol.JoinMessages(msgs...)
	if err != nil {
		return err
	}
	return c.SendPayload(payload)
}

// SendPayload encodes a raw bundle payload with the negotiated generation.
func (c *GameClient) SendPayload(payload []byte) error {
	bundle, err := c.EncodePayload(payload)
	if err != nil {
		return err
	}
	return c.writeBundle(bundle)
}

// EncodePayload encodes a payload without sending it. The outbound iterator
// advances as if the bundle was sent, so a tampered copy can follow via
// SendRawBundle without desynchronising the stream.
func (c *GameClient) EncodePayload(payload []byte) ([]byte, error) {
	if c.out == nil {
		return nil, fmt.Errorf("send before login")
	}
	bundle, err := c.out.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding bundle: %w", err)
	}
	return bundle, nil
}

// SendRawBundle writes bytes as a bundle without any transform.
func (c *GameClient) SendRawBundle(bundle []byte) error {
	return c.writeBundle(bundle)
}

func (c *GameClient) writeBundle(bundle []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	return protocol.WriteBundle(c.conn, bundle)
}

// ReadBundle reads and decodes one bundle from the server.
func (c *GameClient) ReadBundle() ([]protocol.Message, error) {
	if c.in == nil {
		return nil, fmt.Errorf("read before login")
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	bundle, err := protocol.ReadBundle(c.conn, constants.MaxBundleSize, nil)
	if err != nil {
		return nil, err
	}
	payload, err := c.in.Decode(bundle)
	if err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	return protocol.SplitServerMessages(payload)
}

// Next returns the next server message, reading bundles as needed.
func (c *GameClient) Next() (protocol.Message, error) {
	for len(c.pending) == 0 {
		msgs, err := c.ReadBundle()
		if err != nil {
			return protocol.Message{}, err
		}
		c.pending = msgs
	}
	m := c.pending[0]
	c.pending = c.pending[1:]
	return m, nil
}

// WaitFor skips messages until one of type t arrives.
func (c *GameClient) WaitFor(t protocol.ServerType) (protocol.Message, error) {
	for {
		m, err := c.Next()
		if err != nil {
			return protocol.Message{}, fmt.Errorf("waiting for %v: %w", t, err)
		}
		if m.Type == uint8(t) {
			return m, nil
		}
	}
}

// WaitForRaw skips messages until a raw-data envelope whose inner type is t arrives
// and returns the inner body.
func (c *GameClient) WaitForRaw(t protocol.ServerType) ([]byte, error) {
	for {
		m, err := c.WaitFor(protocol.ServerRawData)
		if err != nil {
			return nil, err
		}
		if len(m.Payload) > 0 && m.Payload[0] == byte(t)+32 {
			return bytes.Clone(m.Payload[1:]), nil
		}
	}
}
