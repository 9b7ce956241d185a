package model

import "time"

// Permission bits of an account.
const (
	PermRemoteControl uint32 = 1 << 0
	PermNPCControl    uint32 = 1 << 1
	PermNPCServer     uint32 = 1 << 2
	PermBanned        uint32 = 1 << 31
)

// Account is the record the account store hands to the protocol engine after login.
type Account struct {
	Name         string
	PasswordHash string
	Nickname     string
	HitPoints    float64 // hearts, half-heart resolution
	MaxHitPoints int
	Rupees       int
	LevelName    string
	Permissions  uint32
	LastIP       string
	LastLogin    time.Time
}

// Has reports whether every bit of perm is granted.
func (a *Account) Has(perm uint32) bool {
	return a.Permissions&perm == perm
}

// Banned reports whether the account is banned.
func (a *Account) Banned() bool {
	return a.Permissions&PermBanned != 0
}
