package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/udisondev/gserver/internal/constants"
	"gopkg.in/yaml.v3"
)

// GameServer holds all configuration for the game server.
type GameServer struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Connection timers
	IdleTimeout          time.Duration `yaml:"idle_timeout"`           // disconnect without traffic (default: 60s)
	TimeoutCheckInterval time.Duration `yaml:"timeout_check_interval"` // idle check period (default: 10s)
	FlushInterval        time.Duration `yaml:"flush_interval"`         // outbound queue timer (default: 50ms)
	WriteTimeout         time.Duration `yaml:"write_timeout"`          // per-write deadline (default: 5s)

	// Sanity ceiling for the declared length of an inbound bundle
	MaxBundleSize int `yaml:"max_bundle_size"`

	// Levels
	LevelsDir     string        `yaml:"levels_dir"`
	LevelCacheTTL time.Duration `yaml:"level_cache_ttl"`
	StartLevel    string        `yaml:"start_level"` // for accounts without a level

	// Accounts
	AutoCreateAccounts bool `yaml:"auto_create_accounts"`

	// Flood protection (0 disables)
	MaxConnectionPerIP int `yaml:"max_connection_per_ip"`

	StatusAPI StatusAPI      `yaml:"status_api"`
	Database  DatabaseConfig `yaml:"database"`
}

// DefaultGameServer returns GameServer config with sensible defaults.
func DefaultGameServer() GameServer {
	return GameServer{
		BindAddress:          "0.0.0.0",
		Port:                 14900,
		LogLevel:             "info",
		IdleTimeout:          constants.DefaultIdleTimeout,
		TimeoutCheckInterval: constants.DefaultTimeoutCheckInterval,
		FlushInterval:        constants.DefaultFlushInterval,
		WriteTimeout:         constants.DefaultWriteTimeout,
		MaxBundleSize:        constants.DefaultMaxInboundBundle,
		LevelsDir:            "levels",
		LevelCacheTTL:        5 * time.Minute,
		StartLevel:           "onlinestartlocal.nw",
		AutoCreateAccounts:   false,
		MaxConnectionPerIP:   50,
		StatusAPI: StatusAPI{
			Enabled: true,
			Address: "127.0.0.1:14901",
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "gserver",
			Password: "gserver",
			DBName:   "gserver",
			SSLMode:  "disable",
		},
	}
}

// LoadGameServer loads game server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGameServer(path string) (GameServer, error) {
	cfg := DefaultGameServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values a YAML file can get wrong.
func (c GameServer) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 0xFFFF {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.IdleTimeout <= 0 {
		errs = append(errs, errors.New("idle_timeout must be positive"))
	}
	if c.TimeoutCheckInterval <= 0 {
		errs = append(errs, errors.New("timeout_check_interval must be positive"))
	}
	if c.FlushInterval <= 0 {
		errs = append(errs, errors.New("flush_interval must be positive"))
	}
	if c.MaxBundleSize <= 0 || c.MaxBundleSize > constants.MaxBundleSize {
		errs = append(errs, fmt.Errorf("max_bundle_size must be in 1..%d", constants.MaxBundleSize))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level, info for unknown names.
func (c GameServer) SlogLevel() slog.Level {
	lvl, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLogLevel maps a config name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}
