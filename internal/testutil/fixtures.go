package testutil

import (
	"bytes"

	"github.com/udisondev/gserver/internal/constants"
	"github.com/udisondev/gserver/internal/login"
)

// Fixtures содержит предварительно сгенерированные тестовые данные
// для избежания дублирования в тестах.
var Fixtures = struct {
	ValidAccount  string
	ValidPassword string
	Version       string
	Key           byte
	LevelName     string
	Board         []byte
}{
	ValidAccount:  constants.TestAccountName,
	ValidPassword: constants.TestAccountPassword,
	Version:       constants.TestClientVersion,
	Key:           constants.TestEncryptionKey,
	LevelName:     constants.TestLevelName,
	Board:         bytes.Repeat([]byte{0x00, 0x0F}, constants.BoardSize/2),
}

// LoginRequest builds a login handshake for the role with the given shift.
// Panics on an unknown shift: it is a test bug.
func LoginRequest(shift int, account, password string) *login.Request {
	info, err := login.RoleFromShift(shift)
	if err != nil {
		panic(err)
	}
	return &login.Request{
		Info:     info,
		Key:      Fixtures.Key,
		Version:  Fixtures.Version,
		Account:  account,
		Password: password,
		Identity: "test-pc",
	}
}
