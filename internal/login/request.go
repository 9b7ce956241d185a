package login

import (
	"errors"
	"fmt"

	"github.com/udisondev/gserver/internal/codec"
	"github.com/udisondev/gserver/internal/constants"
	"github.com/udisondev/gserver/internal/crypto"
)

// ErrMalformedLogin is returned when the login bundle ends before a mandatory field.
var ErrMalformedLogin = errors.New("malformed login request")

// Request is a parsed login handshake.
type Request struct {
	Info     RoleInfo
	Key      byte // only meaningful when Info.HasKey
	Version  string
	Account  string
	Password string
	Identity string
}

// Generation returns the generation negotiated by the role shift.
func (r *Request) Generation() crypto.Generation {
	return r.Info.Generation
}

// ParseLoginRequest parses the first (decoded) bundle of a connection.
//
// Layout: GChar shift, [GChar key], 8-byte version, unsigned-length account,
// unsigned-length password, NUL-terminated identity up to the end of the bundle.
func ParseLoginRequest(data []byte) (*Request, error) {
	r := codec.NewReader(data)

	shift, err := r.ReadGChar()
	if err != nil {
		return nil, fmt.Errorf("%w: reading role shift: %w", ErrMalformedLogin, err)
	}
	info, err := RoleFromShift(shift)
	if err != nil {
		return nil, err
	}

	req := &Request{Info: info}
	if info.HasKey {
		key, err := r.ReadGChar()
		if err != nil {
			return nil, fmt.Errorf("%w: reading key: %w", ErrMalformedLogin, err)
		}
		req.Key = byte(key)
	}

	version, err := r.ReadBytes(constants.LoginVersionSize)
	if err != nil {
		return nil, fmt.Errorf("%w: reading version: %w", ErrMalformedLogin, err)
	}
	req.Version = string(version)

	if req.Account, err = r.ReadGUString(); err != nil {
		return nil, fmt.Errorf("%w: reading account: %w", ErrMalformedLogin, err)
	}
	if req.Password, err = r.ReadGUString(); err != nil {
		return nil, fmt.Errorf("%w: reading password: %w", ErrMalformedLogin, err)
	}
	req.Identity = r.ReadCString()

	return req, nil
}

// AppendLoginRequest serializes a login handshake the way a client sends it.
// Version is padded or cut to 8 bytes. Account and password longer than the
// unsigned GChar range are truncated.
func AppendLoginRequest(dst []byte, req *Request) []byte {
	dst = codec.AppendGChar(dst, req.Info.Shift)
	if req.Info.HasKey {
		dst = append(dst, req.Key+32)
	}

	var version [constants.LoginVersionSize]byte
	copy(version[:], req.Version)
	dst = append(dst, version[:]...)

	dst = appendGUString(dst, req.Account)
	dst = appendGUString(dst, req.Password)
	dst = append(dst, req.Identity...)
	return append(dst, 0)
}

func appendGUString(dst []byte, s string) []byte {
	if len(s) > 0xFF {
		s = s[:0xFF]
	}
	dst = append(dst, byte(len(s)+32))
	return append(dst, s...)
}
