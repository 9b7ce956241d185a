package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gserver/internal/api"
	"github.com/udisondev/gserver/internal/config"
	"github.com/udisondev/gserver/internal/db"
	"github.com/udisondev/gserver/internal/level"
	"github.com/udisondev/gserver/internal/login"
	"github.com/udisondev/gserver/internal/server"
)

const ConfigPath = "config/gserver.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("GSERVER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadGameServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	slog.Info("gserver starting",
		"config", cfgPath,
		"bind", cfg.BindAddress,
		"port", cfg.Port,
		"auto_create", cfg.AutoCreateAccounts)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	accounts := db.NewPostgresAccountRepository(database.Pool())
	auth := login.NewAuthenticator(accounts, cfg.AutoCreateAccounts)
	levels := level.NewFileProvider(cfg.LevelsDir, cfg.LevelCacheTTL)

	gameServer := server.NewServer(cfg, auth, levels)
	gameServer.RegisterDefaultHandlers()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gameServer.Run(gctx); err != nil {
			return fmt.Errorf("game server: %w", err)
		}
		return nil
	})

	if cfg.StatusAPI.Enabled {
		status := api.NewServer(cfg.StatusAPI, gameServer.ClientManager(), cfg.LogLevel == "debug")
		g.Go(func() error {
			if err := status.Run(gctx); err != nil {
				return fmt.Errorf("status API: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("gserver stopped")
	return nil
}
