package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/gserver/internal/model"
)

// PostgresAccountRepository реализует login.AccountRepository для PostgreSQL.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountRepository создаёт новый PostgreSQL repository.
func NewPostgresAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

const selectAccount = `SELECT name, password, nickname, hit_points, max_hit_points, rupees,
       level_name, permissions, last_ip, COALESCE(last_login, 'epoch'::timestamptz)
FROM accounts WHERE name = $1`

// GetAccount возвращает аккаунт по имени.
// Возвращает nil, nil если аккаунт не найден.
func (r *PostgresAccountRepository) GetAccount(ctx context.Context, name string) (*model.Account, error) {
	name = strings.ToLower(name)
	var (
		acc   model.Account
		perms int64
	)
	err := r.pool.QueryRow(ctx, selectAccount, name).Scan(
		&acc.Name, &acc.PasswordHash, &acc.Nickname, &acc.HitPoints, &acc.MaxHitPoints,
		&acc.Rupees, &acc.LevelName, &perms, &acc.LastIP, &acc.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying account %q: %w", name, err)
	}
	acc.Permissions = uint32(perms)
	return &acc, nil
}

// CreateAccount вставляет новый аккаунт с bcrypt хэшем пароля.
// Повторное создание существующего имени не ошибка: возвращается существующая запись.
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, name, passwordHash, ip string) (*model.Account, error) {
	name = strings.ToLower(name)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (name, password, nickname, last_ip)
		 VALUES ($1, $2, $1, $3)
		 ON CONFLICT (name) DO NOTHING`,
		name, passwordHash, ip,
	)
	if err != nil {
		return nil, fmt.Errorf("creating account %q: %w", name, err)
	}
	slog.Info("auto-created account", "account", name)
	return r.GetAccount(ctx, name)
}

// UpdateLastLogin обновляет last_login и last_ip при успешном логине.
func (r *PostgresAccountRepository) UpdateLastLogin(ctx context.Context, name, ip string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET last_login = $1, last_ip = $2 WHERE name = $3`,
		time.Now(), ip, strings.ToLower(name),
	)
	if err != nil {
		return fmt.Errorf("updating last login for %q: %w", name, err)
	}
	return nil
}

// SetPermissions заменяет битовую маску прав аккаунта.
func (r *PostgresAccountRepository) SetPermissions(ctx context.Context, name string, perms uint32) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET permissions = $1 WHERE name = $2`,
		int64(perms), strings.ToLower(name),
	)
	if err != nil {
		return fmt.Errorf("updating permissions for %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating permissions for %q: account not found", name)
	}
	return nil
}
