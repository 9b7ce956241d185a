package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udisondev/gserver/internal/crypto"
)

// buildLogin собирает login bundle вручную, без AppendLoginRequest.
func buildLogin(shift int, key *byte, version, account, password, identity string) []byte {
	b := []byte{byte(shift + 32)}
	if key != nil {
		b = append(b, *key+32)
	}
	b = append(b, version...)
	b = append(b, byte(len(account)+32))
	b = append(b, account...)
	b = append(b, byte(len(password)+32))
	b = append(b, password...)
	b = append(b, identity...)
	return append(b, 0)
}

func TestParseLoginRequest_NoKeyRole(t *testing.T) {
	data := buildLogin(ShiftClient, nil, "GNW03014", "tester", "secret", "PC-1234")

	req, err := ParseLoginRequest(data)
	require.NoError(t, err)

	assert.Equal(t, "CLIENT", req.Info.Name)
	assert.False(t, req.Info.HasKey)
	assert.Equal(t, crypto.Gen2, req.Generation())
	assert.Equal(t, byte(0), req.Key)
	// Если бы ключ читался, версия сдвинулась бы на один байт.
	assert.Equal(t, "GNW03014", req.Version)
	assert.Equal(t, "tester", req.Account)
	assert.Equal(t, "secret", req.Password)
	assert.Equal(t, "PC-1234", req.Identity)
}

func TestParseLoginRequest_NoKeyRoleExactLength(t *testing.T) {
	// 1 (shift) + 8 (version) + 1+1 (account) + 1+0 (password), без identity
	data := []byte{byte(ShiftWeb + 32)}
	data = append(data, "WEB00001"...)
	data = append(data, 1+32, 'a', 0+32)

	req, err := ParseLoginRequest(data)
	require.NoError(t, err)
	assert.Equal(t, crypto.Gen1, req.Generation())
	assert.Equal(t, "WEB00001", req.Version)
	assert.Equal(t, "a", req.Account)
	assert.Equal(t, "", req.Password)
	assert.Equal(t, "", req.Identity)
}

func TestParseLoginRequest_KeyRoles(t *testing.T) {
	for _, shift := range []int{ShiftNPCServer, ShiftNC, ShiftClient2, ShiftClient3, ShiftRC2} {
		key := byte(0x5A)
		data := buildLogin(shift, &key, "GNW22122", "admin", "pw", "")

		req, err := ParseLoginRequest(data)
		require.NoError(t, err, "shift %d", shift)
		assert.True(t, req.Info.HasKey)
		assert.Equal(t, key, req.Key)
		assert.Equal(t, "GNW22122", req.Version)
		assert.Equal(t, "admin", req.Account)
		assert.Equal(t, "pw", req.Password)
	}
}

func TestParseLoginRequest_KeyAboveGCharRange(t *testing.T) {
	key := byte(0xF0) // wire byte 0x10, декодируется с переполнением
	data := buildLogin(ShiftClient3, &key, "GNW22122", "x", "y", "")

	req, err := ParseLoginRequest(data)
	require.NoError(t, err)
	assert.Equal(t, key, req.Key)
}

func TestParseLoginRequest_LongAccountUsesUnsignedLength(t *testing.T) {
	account := make([]byte, 230) // длина > 223: байт длины 230+32 переполняется
	for i := range account {
		account[i] = 'a'
	}
	data := buildLogin(ShiftClient, nil, "GNW03014", string(account), "pw", "")

	req, err := ParseLoginRequest(data)
	require.NoError(t, err)
	assert.Len(t, req.Account, 230)
	assert.Equal(t, "pw", req.Password)
}

func TestParseLoginRequest_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrMalformedLogin},
		{"unknown role", []byte{byte(20 + 32)}, ErrUnknownRole},
		{"missing key", []byte{byte(ShiftClient3 + 32)}, ErrMalformedLogin},
		{"short version", append([]byte{byte(ShiftClient + 32)}, "GNW"...), ErrMalformedLogin},
		{"missing account", append([]byte{byte(ShiftClient + 32)}, "GNW03014"...), ErrMalformedLogin},
		{"truncated account", append(append([]byte{byte(ShiftClient + 32)}, "GNW03014"...), 10+32, 'a'), ErrMalformedLogin},
		{"missing password", append(append([]byte{byte(ShiftClient + 32)}, "GNW03014"...), 1+32, 'a'), ErrMalformedLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLoginRequest(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAppendLoginRequest_RoundTrip(t *testing.T) {
	for shift := range len(roleTable) {
		info, err := RoleFromShift(shift)
		require.NoError(t, err)

		in := &Request{
			Info:     info,
			Key:      0x33,
			Version:  "GNW03014",
			Account:  "tester",
			Password: "secret",
			Identity: "win,PC-1",
		}
		out, err := ParseLoginRequest(AppendLoginRequest(nil, in))
		require.NoError(t, err, info.Name)

		if !info.HasKey {
			in.Key = 0
		}
		assert.Equal(t, in, out, info.Name)
	}
}

func TestAppendLoginRequest_PadsVersion(t *testing.T) {
	info, _ := RoleFromShift(ShiftClient)
	data := AppendLoginRequest(nil, &Request{Info: info, Version: "G1", Account: "a", Password: "b"})

	req, err := ParseLoginRequest(data)
	require.NoError(t, err)
	assert.Equal(t, "G1\x00\x00\x00\x00\x00\x00", req.Version)
}
