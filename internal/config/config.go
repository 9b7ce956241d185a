package config

import "fmt"

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// StatusAPI holds the read-only HTTP status endpoint settings.
type StatusAPI struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	// AllowedOrigins для CORS; пустой список разрешает любой origin
	AllowedOrigins []string `yaml:"allowed_origins"`
}
