package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/udisondev/gserver/internal/config"
	"github.com/udisondev/gserver/internal/constants"
	"github.com/udisondev/gserver/internal/crypto"
	"github.com/udisondev/gserver/internal/level"
	"github.com/udisondev/gserver/internal/login"
	"github.com/udisondev/gserver/internal/model"
	"github.com/udisondev/gserver/internal/protocol"
	"golang.org/x/sync/errgroup"
)

// ErrServerShutdown is the disconnect cause of connections closed by Close or
// by cancelling the Serve context.
var ErrServerShutdown = errors.New("server shutdown")

// Authenticator resolves and authorizes the account of a login request.
type Authenticator interface {
	Authenticate(ctx context.Context, req *login.Request, ip string) (*model.Account, error)
}

// Server accepts game connections and runs one connection task per client.
type Server struct {
	cfg    config.GameServer
	auth   Authenticator
	levels level.Provider

	dispatcher    *Dispatcher
	clientManager *ClientManager
	readPool      *bundlePool

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a new game server.
func NewServer(cfg config.GameServer, auth Authenticator, levels level.Provider) *Server {
	return &Server{
		cfg:           cfg,
		auth:          auth,
		levels:        levels,
		dispatcher:    NewDispatcher(),
		clientManager: NewClientManager(),
		readPool:      newBundlePool(constants.DefaultReadBufSize),
	}
}

// Dispatcher returns the packet dispatcher, the place where game logic registers handlers.
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// ClientManager returns the registry of live connections.
func (s *Server) ClientManager() *ClientManager {
	return s.clientManager
}

// Addr returns the address the server is listening on.
// Returns nil if the server hasn't started yet.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close closes the listener and disconnects every client.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	s.clientManager.DisconnectAll(ErrServerShutdown)
	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
	}
	return nil
}

// Run begins listening for game client connections.
// Creates a listener on cfg.BindAddress:cfg.Port and starts the accept loop.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.BindAddress, fmt.Sprint(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled or ln is closed, then
// waits for every connection task to finish its cleanup.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	slog.Info("game server started", "address", ln.Addr())

	var wg sync.WaitGroup
	err := s.acceptLoop(ctx, &wg, ln)

	s.clientManager.DisconnectAll(ErrServerShutdown)
	wg.Wait()
	slog.Info("game server stopped", "address", ln.Addr())
	return err
}

func (s *Server) acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				slog.Warn("accept timeout", "error", err)
				continue
			}
			return fmt.Errorf("accepting connection: %w", err)
		}

		// Enable TCP keepalive (detect dead connections)
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetKeepAlive(true); err != nil {
				slog.Warn("set keepalive failed", "error", err)
			}
			if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
				slog.Warn("set keepalive period failed", "error", err)
			}
		}

		wg.Go(func() {
			s.handleConnection(ctx, conn)
		})
	}
}

// handleConnection owns one connection from accept to Disconnected.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	client := newClient(s.clientManager.NextID(), conn, s.cfg.WriteTimeout, time.Now())

	// cancel назначается до публикации клиента в реестре: Disconnect может прийти из другой горутины
	connCtx, cancel := context.WithCancelCause(ctx)
	client.cancel = cancel

	if !s.clientManager.Register(client, s.cfg.MaxConnectionPerIP) {
		cancel(nil)
		slog.Warn("too many connections from ip", "client", client.IP(), "limit", s.cfg.MaxConnectionPerIP)
		conn.Close()
		return
	}

	slog.Info("new game client connection", "id", client.ID(), "client", client.IP())

	var err error
	defer func() {
		cancel(nil)
		s.cleanup(connCtx, client, err)
	}()

	g, gctx := errgroup.WithContext(connCtx)
	// Блокирующее чтение прерывается только закрытием сокета.
	stopClose := context.AfterFunc(gctx, func() {
		conn.Close()
	})
	defer stopClose()

	g.Go(func() error {
		return s.readLoop(gctx, client)
	})
	g.Go(func() error {
		return s.timerLoop(gctx, client)
	})
	err = g.Wait()
}

// cleanup runs on every exit path of a connection.
func (s *Server) cleanup(ctx context.Context, c *Client, err error) {
	c.transition(login.StateDisconnecting)
	_ = c.conn.Close()
	s.clientManager.Unregister(c)

	reason := disconnectReason(ctx, err)
	attrs := append(c.logValues(), "reason", reason, "state", c.State().String())
	slog.Info("client disconnected", attrs...)

	c.transition(login.StateDisconnected)
}

func disconnectReason(ctx context.Context, err error) string {
	// Причина, переданная через Disconnect, важнее ошибки чтения закрытого сокета.
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause.Error()
	}
	switch {
	case err == nil:
		return "closed"
	case errors.Is(err, io.EOF):
		return "closed by peer"
	default:
		return err.Error()
	}
}

// readLoop reads bundles until the peer closes, an error occurs or ctx ends.
func (s *Server) readLoop(ctx context.Context, c *Client) error {
	bufp := s.readPool.get()
	defer s.readPool.put(bufp)

	for {
		bundle, err := protocol.ReadBundle(c.conn, s.cfg.MaxBundleSize, *bufp)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return fmt.Errorf("reading bundle: %w", err)
		}
		if cap(bundle) > cap(*bufp) {
			*bufp = bundle[:0]
		}

		c.bundlesRead.Add(1)
		c.bytesRead.Add(uint64(len(bundle) + constants.BundleHeaderSize))
		c.touch(time.Now())

		if c.State() == login.StateConnected {
			if err := s.handleLogin(ctx, c, bundle); err != nil {
				return err
			}
			continue
		}

		if err := s.handleBundle(ctx, c, bundle); err != nil {
			return err
		}
	}
}

// handleBundle decodes one post-login bundle and dispatches its messages in order.
func (s *Server) handleBundle(ctx context.Context, c *Client, bundle []byte) error {
	payload, err := c.in.Decode(bundle)
	if err != nil {
		if c.in.Generation() == crypto.Gen3 && errors.Is(err, crypto.ErrDecompress) {
			slog.Warn("dropping undecodable bundle", "id", c.ID(), "client", c.IP(), "error", err)
			return nil
		}
		return fmt.Errorf("decoding bundle: %w", err)
	}

	for _, line := range protocol.SplitLines(payload) {
		msg, err := protocol.ParseLine(line)
		if err != nil {
			slog.Warn("dropping message", "id", c.ID(), "client", c.IP(), "error", err)
			continue
		}
		c.msgsRead.Add(1)
		s.dispatcher.Dispatch(ctx, c, msg)

		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

// timerLoop drives the periodic flush and the idle check.
func (s *Server) timerLoop(ctx context.Context, c *Client) error {
	flush := time.NewTicker(s.cfg.FlushInterval)
	defer flush.Stop()
	idle := time.NewTicker(s.cfg.TimeoutCheckInterval)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-flush.C:
			if err := c.flushTick(); err != nil {
				return err
			}
		case now := <-idle.C:
			if c.idleExceeded(now, s.cfg.IdleTimeout) {
				slog.Info("idle timeout", "id", c.ID(), "client", c.IP(), "last_activity", c.LastActivity())
				c.Disconnect(ErrIdleTimeout)
				return ErrIdleTimeout
			}
		}
	}
}
