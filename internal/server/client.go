package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/gserver/internal/constants"
	"github.com/udisondev/gserver/internal/crypto"
	"github.com/udisondev/gserver/internal/login"
	"github.com/udisondev/gserver/internal/model"
	"github.com/udisondev/gserver/internal/protocol"
	"github.com/udisondev/gserver/internal/sendqueue"
)

var (
	// ErrClientClosed is returned by Send after the connection started disconnecting.
	ErrClientClosed = errors.New("client closed")
	// ErrIdleTimeout is the disconnect cause of a connection without traffic.
	ErrIdleTimeout = errors.New("idle timeout")
	// ErrReplaced is the disconnect cause of a connection whose account logged in again.
	ErrReplaced = errors.New("replaced by a newer login")
)

// Client is one game connection: the socket, the outbound queue, both crypto
// directions and the lifecycle state.
type Client struct {
	id          uint64
	conn        net.Conn
	ip          string
	connectedAt time.Time

	// state использует atomic.Int32 для lock-free reads в hot path
	state        atomic.Int32
	lastActivity atomic.Int64 // unix nanoseconds

	bytesRead      atomic.Uint64
	bytesWritten   atomic.Uint64
	bundlesRead    atomic.Uint64
	bundlesWritten atomic.Uint64
	msgsRead       atomic.Uint64
	msgsWritten    atomic.Uint64

	// in принадлежит read loop, блокировка не нужна
	in *crypto.Pipeline

	// sendMu защищает queue, out и запись в сокет: бандлы уходят в порядке шифрования
	sendMu       sync.Mutex
	queue        *sendqueue.Queue
	out          *crypto.Pipeline
	writeTimeout time.Duration

	// mu защищает только поля логина (редкие операции)
	mu       sync.Mutex
	account  *model.Account
	role     login.RoleInfo
	version  string
	language string

	cancel context.CancelCauseFunc
}

func newClient(id uint64, conn net.Conn, writeTimeout time.Duration, now time.Time) *Client {
	c := &Client{
		id:           id,
		conn:         conn,
		ip:           hostOf(conn.RemoteAddr()),
		connectedAt:  now,
		queue:        sendqueue.New(),
		writeTimeout: writeTimeout,
		cancel:       func(error) {},
	}
	c.state.Store(int32(login.StateConnected))
	c.lastActivity.Store(now.UnixNano())
	return c
}

func hostOf(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// ID returns the connection id.
func (c *Client) ID() uint64 {
	return c.id
}

// IP returns the client's remote IP address.
func (c *Client) IP() string {
	return c.ip
}

// State returns the lifecycle state.
func (c *Client) State() login.ConnectionState {
	return login.ConnectionState(c.state.Load())
}

// transition moves the state forward when the lifecycle allows it.
func (c *Client) transition(next login.ConnectionState) bool {
	for {
		cur := login.ConnectionState(c.state.Load())
		if !cur.CanTransition(next) {
			return false
		}
		if c.state.CompareAndSwap(int32(cur), int32(next)) {
			return true
		}
	}
}

// Account returns the logged-in account, nil before authentication.
func (c *Client) Account() *model.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

// AccountName returns the account name or "" before authentication.
func (c *Client) AccountName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.account == nil {
		return ""
	}
	return c.account.Name
}

// Role returns the role negotiated at login.
func (c *Client) Role() login.RoleInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// Language returns the language reported by the client.
func (c *Client) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// SetLanguage stores the language reported by the client.
func (c *Client) SetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = lang
}

// Generation returns the negotiated generation, 0 before login.
func (c *Client) Generation() crypto.Generation {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.out == nil {
		return 0
	}
	return c.out.Generation()
}

func (c *Client) setLogin(req *login.Request) error {
	in, err := crypto.NewPipeline(req.Generation(), req.Key)
	if err != nil {
		return fmt.Errorf("inbound pipeline: %w", err)
	}
	out, err := crypto.NewPipeline(req.Generation(), req.Key)
	if err != nil {
		return fmt.Errorf("outbound pipeline: %w", err)
	}

	c.in = in

	c.sendMu.Lock()
	c.out = out
	c.sendMu.Unlock()

	c.mu.Lock()
	c.role = req.Info
	c.version = req.Version
	c.mu.Unlock()
	return nil
}

func (c *Client) setAccount(acc *model.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.account = acc
}

func (c *Client) touch(now time.Time) {
	c.lastActivity.Store(now.UnixNano())
}

// LastActivity returns the time of the last inbound bundle or enqueued message.
func (c *Client) LastActivity() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

// idleExceeded reports whether the connection has been silent for longer than limit.
func (c *Client) idleExceeded(now time.Time, limit time.Duration) bool {
	return now.Sub(c.LastActivity()) > limit
}

// Send enqueues a message on the normal list.
func (c *Client) Send(msg protocol.Message) error {
	return c.enqueue(msg, false)
}

// SendBulk enqueues a bulk-transfer message on the file list.
func (c *Client) SendBulk(msg protocol.Message) error {
	return c.enqueue(msg, true)
}

func (c *Client) enqueue(msg protocol.Message, bulk bool) error {
	if c.State() >= login.StateDisconnecting {
		return ErrClientClosed
	}

	encoded, err := msg.Encode()
	if err != nil {
		return err
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.queue.Add(encoded, bulk)
	c.msgsWritten.Add(1)
	c.touch(time.Now())

	for c.out != nil && c.queue.ShouldFlush() && c.queue.Pending() {
		if err := c.flushOnceLocked(); err != nil {
			return err
		}
	}
	return nil
}

// flushTick is the periodic flush: one batch is forced, then batching continues
// while the thresholds still say so.
func (c *Client) flushTick() error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if err := c.flushOnceLocked(); err != nil {
		return err
	}
	for c.out != nil && c.queue.ShouldFlush() && c.queue.Pending() {
		if err := c.flushOnceLocked(); err != nil {
			return err
		}
	}
	return nil
}

// flushAll drains the queue completely.
func (c *Client) flushAll() error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	for c.out != nil && c.queue.Pending() {
		if err := c.flushOnceLocked(); err != nil {
			return err
		}
	}
	return nil
}

// flushOnceLocked sends at most one bundle. Before login there is no outbound
// pipeline and messages stay queued. Caller holds sendMu.
func (c *Client) flushOnceLocked() error {
	if c.out == nil {
		return nil
	}
	batch := c.queue.Next()
	if batch == nil {
		return nil
	}

	encoded, err := c.out.Encode(batch)
	if err != nil {
		return c.fail(fmt.Errorf("encoding bundle: %w", err))
	}

	if len(encoded) > constants.MaxBundleSize {
		// Итератор уже сдвинулся, но клиент этот бандл не увидит.
		// Для поколений 3-5 поток рассинхронизируется, поэтому соединение закрываем.
		if c.out.Generation().Encrypted() || c.out.Generation() == crypto.Gen3 {
			return c.fail(fmt.Errorf("%w: encoded bundle of %d bytes", protocol.ErrBundleTooLarge, len(encoded)))
		}
		slog.Warn("dropping oversized bundle", "id", c.id, "client", c.ip, "size", len(encoded))
		return nil
	}

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return c.fail(fmt.Errorf("setting write deadline: %w", err))
		}
	}
	if err := protocol.WriteBundle(c.conn, encoded); err != nil {
		return c.fail(fmt.Errorf("writing bundle: %w", err))
	}

	c.bundlesWritten.Add(1)
	c.bytesWritten.Add(uint64(len(encoded) + constants.BundleHeaderSize))
	slog.Debug("bundle sent", "id", c.id, "client", c.ip, "raw", len(batch), "encoded", len(encoded))
	return nil
}

// fail disconnects the client because of err and returns err.
func (c *Client) fail(err error) error {
	c.Disconnect(err)
	return err
}

// Disconnect moves the client to Disconnecting and stops its connection task.
// Safe to call multiple times and from any goroutine.
func (c *Client) Disconnect(cause error) {
	if cause == nil {
		cause = ErrClientClosed
	}
	c.transition(login.StateDisconnecting)
	c.cancel(cause)
}

// ClientInfo is a point-in-time view of a connection.
type ClientInfo struct {
	ID             uint64    `json:"id"`
	IP             string    `json:"ip"`
	Account        string    `json:"account,omitempty"`
	Role           string    `json:"role,omitempty"`
	Generation     string    `json:"generation,omitempty"`
	State          string    `json:"state"`
	Language       string    `json:"language,omitempty"`
	ConnectedAt    time.Time `json:"connected_at"`
	LastActivity   time.Time `json:"last_activity"`
	BytesRead      uint64    `json:"bytes_read"`
	BytesWritten   uint64    `json:"bytes_written"`
	BundlesRead    uint64    `json:"bundles_read"`
	BundlesWritten uint64    `json:"bundles_written"`
	MessagesRead   uint64    `json:"messages_read"`
	MessagesQueued uint64    `json:"messages_queued"`
}

// Info returns a snapshot of the connection.
func (c *Client) Info() ClientInfo {
	info := ClientInfo{
		ID:             c.id,
		IP:             c.ip,
		State:          c.State().String(),
		ConnectedAt:    c.connectedAt,
		LastActivity:   c.LastActivity(),
		BytesRead:      c.bytesRead.Load(),
		BytesWritten:   c.bytesWritten.Load(),
		BundlesRead:    c.bundlesRead.Load(),
		BundlesWritten: c.bundlesWritten.Load(),
		MessagesRead:   c.msgsRead.Load(),
		MessagesQueued: c.msgsWritten.Load(),
	}

	c.mu.Lock()
	if c.account != nil {
		info.Account = c.account.Name
	}
	if c.role.Name != "" {
		info.Role = c.role.Name
		info.Generation = c.role.Generation.String()
	}
	info.Language = c.language
	c.mu.Unlock()

	return info
}

func (c *Client) logValues() []any {
	return []any{
		"id", c.id,
		"client", c.ip,
		"account", c.AccountName(),
		"duration", time.Since(c.connectedAt).Round(time.Millisecond),
		"generation", c.Role().Generation,
		"bytes_read", c.bytesRead.Load(),
		"bytes_written", c.bytesWritten.Load(),
		"bundles_read", c.bundlesRead.Load(),
		"bundles_written", c.bundlesWritten.Load(),
		"messages_read", c.msgsRead.Load(),
		"messages_queued", c.msgsWritten.Load(),
	}
}
