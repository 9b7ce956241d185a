package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udisondev/gserver/internal/model"
)

func TestPostgresAccountRepository_GetAccountMissing(t *testing.T) {
	repo := NewPostgresAccountRepository(setupTestDB(t))

	acc, err := repo.GetAccount(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestPostgresAccountRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresAccountRepository(setupTestDB(t))

	hash, err := HashPassword("secret")
	require.NoError(t, err)

	created, err := repo.CreateAccount(ctx, "Tester", hash, "127.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "tester", created.Name)
	assert.Equal(t, "tester", created.Nickname)
	assert.Equal(t, 3, created.MaxHitPoints)
	assert.InDelta(t, 3.0, created.HitPoints, 0.001)
	assert.Equal(t, "127.0.0.1", created.LastIP)

	ok, err := CheckPassword(created.PasswordHash, "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	// Повторное создание возвращает существующую запись.
	again, err := repo.CreateAccount(ctx, "tester", "other-hash", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, created.PasswordHash, again.PasswordHash)
}

func TestPostgresAccountRepository_Permissions(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresAccountRepository(setupTestDB(t))

	hash, err := HashPassword("pw")
	require.NoError(t, err)
	_, err = repo.CreateAccount(ctx, "admin", hash, "")
	require.NoError(t, err)

	perms := model.PermRemoteControl | model.PermBanned
	require.NoError(t, repo.SetPermissions(ctx, "admin", perms))

	acc, err := repo.GetAccount(ctx, "ADMIN")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, perms, acc.Permissions)
	assert.True(t, acc.Banned())

	assert.Error(t, repo.SetPermissions(ctx, "ghost", 0))
}

func TestPostgresAccountRepository_UpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresAccountRepository(setupTestDB(t))

	hash, err := HashPassword("pw")
	require.NoError(t, err)
	_, err = repo.CreateAccount(ctx, "player", hash, "")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateLastLogin(ctx, "player", "192.168.1.5"))

	acc, err := repo.GetAccount(ctx, "player")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.5", acc.LastIP)
	assert.False(t, acc.LastLogin.IsZero())
}
