package login

import (
	"context"

	"github.com/udisondev/gserver/internal/model"
)

// AccountRepository определяет интерфейс для работы с аккаунтами.
// Используется для dependency injection в тестах.
type AccountRepository interface {
	// GetAccount возвращает аккаунт по имени.
	// Возвращает nil, nil если аккаунт не найден.
	GetAccount(ctx context.Context, name string) (*model.Account, error)

	// CreateAccount создаёт аккаунт с указанным хэшем пароля и IP.
	// Если аккаунт уже существует, возвращает существующий.
	CreateAccount(ctx context.Context, name, passwordHash, ip string) (*model.Account, error)

	// UpdateLastLogin обновляет last_login и last_ip при успешном логине.
	UpdateLastLogin(ctx context.Context, name, ip string) error
}
