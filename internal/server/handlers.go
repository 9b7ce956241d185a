package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/gserver/internal/constants"
	"github.com/udisondev/gserver/internal/level"
	"github.com/udisondev/gserver/internal/protocol"
)

// RegisterDefaultHandlers registers the handlers the connection layer answers
// itself. Game logic registers the rest on Dispatcher.
func (s *Server) RegisterDefaultHandlers() {
	s.dispatcher.Register(protocol.ClientLanguage, handleLanguage)
	s.dispatcher.Register(protocol.ClientWantFile, s.handleWantFile)
}

func handleLanguage(_ context.Context, c *Client, msg protocol.Message) error {
	lang := strings.TrimSpace(string(msg.Payload))
	c.SetLanguage(lang)
	slog.Debug("client language", "id", c.ID(), "language", lang)
	return nil
}

// handleWantFile answers a file request with a bulk File message, or
// FileSendFailed when the file cannot be served.
func (s *Server) handleWantFile(ctx context.Context, c *Client, msg protocol.Message) error {
	name := strings.TrimSpace(string(msg.Payload))
	if s.levels == nil || name == "" {
		return c.Send(fileSendFailedMessage(name))
	}

	f, err := s.levels.File(ctx, name)
	if err != nil {
		if !errors.Is(err, level.ErrNotFound) && !errors.Is(err, level.ErrInvalidName) {
			slog.Warn("loading file failed", "id", c.ID(), "file", name, "error", err)
		}
		return c.Send(fileSendFailedMessage(name))
	}

	// Файл должен поместиться в один бандл.
	if len(f.Data)+fileMessageOverhead > constants.MaxBatchSize {
		slog.Warn("file too large for a single bundle", "id", c.ID(), "file", name, "size", len(f.Data))
		return c.Send(fileSendFailedMessage(name))
	}

	if err := c.SendBulk(fileMessage(f.Name, uint32(f.ModTime.Unix()), f.Data)); err != nil {
		return fmt.Errorf("sending file %q: %w", name, err)
	}
	slog.Debug("file queued", "id", c.ID(), "file", name, "size", len(f.Data))
	return nil
}
