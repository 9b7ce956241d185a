package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/gserver/internal/db"
	"github.com/udisondev/gserver/internal/model"
)

// ErrAccessDenied is the sentinel behind every *DeniedError.
var ErrAccessDenied = errors.New("access denied")

// DenyReason classifies an authorization failure.
type DenyReason int

const (
	ReasonUnknownAccount DenyReason = iota
	ReasonBadPassword
	ReasonBanned
	ReasonRoleNotPermitted
	ReasonSystemError
)

// Message is the text sent to the client in the disconnect message.
func (r DenyReason) Message() string {
	switch r {
	case ReasonUnknownAccount:
		return "Account not found."
	case ReasonBadPassword:
		return "Invalid password."
	case ReasonBanned:
		return "Your account is banned."
	case ReasonRoleNotPermitted:
		return "You do not have access to this client type."
	default:
		return "Server error, try again later."
	}
}

func (r DenyReason) String() string {
	switch r {
	case ReasonUnknownAccount:
		return "UNKNOWN_ACCOUNT"
	case ReasonBadPassword:
		return "BAD_PASSWORD"
	case ReasonBanned:
		return "BANNED"
	case ReasonRoleNotPermitted:
		return "ROLE_NOT_PERMITTED"
	case ReasonSystemError:
		return "SYSTEM_ERROR"
	default:
		return "UNKNOWN"
	}
}

// DeniedError is returned by Authenticate for every rejected login.
type DeniedError struct {
	Reason DenyReason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%v: %v", ErrAccessDenied, e.Reason)
}

func (e *DeniedError) Unwrap() error {
	return ErrAccessDenied
}

func deny(reason DenyReason) error {
	return &DeniedError{Reason: reason}
}

// Authenticator resolves the account of a login request and authorizes its role.
type Authenticator struct {
	accounts   AccountRepository
	autoCreate bool
}

// NewAuthenticator creates an Authenticator. With autoCreate, unknown account
// names are created with the supplied password.
func NewAuthenticator(accounts AccountRepository, autoCreate bool) *Authenticator {
	return &Authenticator{accounts: accounts, autoCreate: autoCreate}
}

// Authenticate returns the account for req or a *DeniedError.
func (a *Authenticator) Authenticate(ctx context.Context, req *Request, ip string) (*model.Account, error) {
	name := strings.ToLower(strings.TrimSpace(req.Account))
	if name == "" {
		return nil, deny(ReasonUnknownAccount)
	}

	acc, err := a.accounts.GetAccount(ctx, name)
	if err != nil {
		slog.Error("database error during auth", "err", err, "account", name, "client", ip)
		return nil, deny(ReasonSystemError)
	}

	if acc == nil {
		if !a.autoCreate || req.Password == "" {
			return nil, deny(ReasonUnknownAccount)
		}
		hash, err := db.HashPassword(req.Password)
		if err != nil {
			slog.Error("hashing password", "err", err, "client", ip)
			return nil, deny(ReasonSystemError)
		}
		// Возвращает существующий аккаунт при гонке двух логинов: пароль проверяется ниже
		acc, err = a.accounts.CreateAccount(ctx, name, hash, ip)
		if err != nil || acc == nil {
			slog.Error("failed to create account", "err", err, "account", name, "client", ip)
			return nil, deny(ReasonSystemError)
		}
	}

	ok, err := db.CheckPassword(acc.PasswordHash, req.Password)
	if err != nil {
		slog.Error("stored password hash is invalid", "err", err, "account", name)
		return nil, deny(ReasonSystemError)
	}
	if !ok {
		return nil, deny(ReasonBadPassword)
	}

	if acc.Banned() {
		return nil, deny(ReasonBanned)
	}

	if perm := req.Info.RequiredPermission; perm != 0 && !acc.Has(perm) {
		return nil, deny(ReasonRoleNotPermitted)
	}

	if err := a.accounts.UpdateLastLogin(ctx, name, ip); err != nil {
		slog.Error("failed to update last login", "err", err, "account", name)
	}

	return acc, nil
}
