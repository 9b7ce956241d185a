package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/gserver/internal/crypto"
	"github.com/udisondev/gserver/internal/level"
	"github.com/udisondev/gserver/internal/login"
	"github.com/udisondev/gserver/internal/model"
	"github.com/udisondev/gserver/internal/protocol"
)

// handleLogin treats the first bundle of a connection as the login handshake.
// Any returned error ends the connection.
func (s *Server) handleLogin(ctx context.Context, c *Client, bundle []byte) error {
	c.transition(login.StateLoggingIn)

	req, err := login.ParseLoginRequest(crypto.DecodeLogin(bundle))
	if err != nil {
		slog.Warn("malformed login", "id", c.ID(), "client", c.IP(), "error", err)
		return fmt.Errorf("login: %w", err)
	}

	if err := c.setLogin(req); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	slog.Debug("login request",
		"id", c.ID(),
		"client", c.IP(),
		"account", req.Account,
		"role", req.Info.Name,
		"generation", req.Generation(),
		"version", req.Version)

	acc, err := s.auth.Authenticate(ctx, req, c.IP())
	if err != nil {
		var denied *login.DeniedError
		if errors.As(err, &denied) {
			slog.Warn("login denied",
				"id", c.ID(),
				"client", c.IP(),
				"account", req.Account,
				"role", req.Info.Name,
				"reason", denied.Reason)
			s.deny(c, denied.Reason.Message())
		}
		return fmt.Errorf("login %q: %w", req.Account, err)
	}

	c.setAccount(acc)
	if prev := s.clientManager.BindAccount(acc.Name, c); prev != nil {
		slog.Info("account logged in again, dropping old connection",
			"account", acc.Name, "old_id", prev.ID(), "id", c.ID())
		prev.Disconnect(ErrReplaced)
	}

	if !c.transition(login.StateAuthenticated) {
		return fmt.Errorf("login %q: %w", acc.Name, ErrClientClosed)
	}

	slog.Info("client logged in",
		"id", c.ID(),
		"client", c.IP(),
		"account", acc.Name,
		"role", req.Info.Name,
		"generation", req.Generation())

	return s.sendInitialState(ctx, c, acc)
}

// deny sends the disconnect message and flushes it before the socket goes away.
func (s *Server) deny(c *Client, reason string) {
	if err := c.Send(discMessage(reason)); err != nil {
		slog.Debug("queueing denial failed", "id", c.ID(), "error", err)
		return
	}
	if err := c.flushAll(); err != nil {
		slog.Debug("flushing denial failed", "id", c.ID(), "error", err)
	}
}

// sendInitialState queues the messages a client expects right after login.
func (s *Server) sendInitialState(ctx context.Context, c *Client, acc *model.Account) error {
	levelName := acc.LevelName
	if levelName == "" {
		levelName = s.cfg.StartLevel
	}

	initial := []protocol.Message{
		signatureMessage(),
		playerPropsMessage(acc),
		levelNameMessage(levelName),
	}
	for _, msg := range initial {
		if err := c.Send(msg); err != nil {
			return fmt.Errorf("sending initial state: %w", err)
		}
	}

	if s.levels == nil {
		return nil
	}
	board, err := s.levels.Board(ctx, levelName)
	if err != nil {
		if errors.Is(err, level.ErrNotFound) {
			slog.Warn("level not found, board skipped", "id", c.ID(), "account", acc.Name, "level", levelName)
		} else {
			slog.Warn("loading board failed", "id", c.ID(), "account", acc.Name, "level", levelName, "error", err)
		}
		return nil
	}
	if err := c.Send(boardMessage(board)); err != nil {
		return fmt.Errorf("sending board: %w", err)
	}
	return nil
}
