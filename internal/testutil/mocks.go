package testutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/udisondev/gserver/internal/db"
	"github.com/udisondev/gserver/internal/level"
	"github.com/udisondev/gserver/internal/model"
)

// ErrSimulated is what mocks return when a test injects a failure.
var ErrSimulated = errors.New("simulated failure")

// AccountStore: in-memory имплементация login.AccountRepository для unit тестов.
// Не требует реального PostgreSQL.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*model.Account
	logins   map[string]string // name → last ip
}

// NewAccountStore создаёт новый AccountStore экземпляр.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*model.Account),
		logins:   make(map[string]string),
	}
}

// Add создаёт аккаунт с bcrypt хэшем пароля. Panics if hashing fails.
func (m *AccountStore) Add(name, password string, perms uint32) *model.Account {
	hash, err := db.HashPassword(password)
	if err != nil {
		panic(err)
	}
	name = strings.ToLower(name)
	acc := &model.Account{
		Name:         name,
		PasswordHash: hash,
		Nickname:     name,
		HitPoints:    3,
		MaxHitPoints: 3,
		Permissions:  perms,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[name] = acc
	return acc
}

// GetAccount получает аккаунт по имени.
func (m *AccountStore) GetAccount(_ context.Context, name string) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, exists := m.accounts[strings.ToLower(name)]
	if !exists {
		return nil, nil // account not found
	}

	// Возвращаем копию чтобы избежать race conditions
	cp := *acc
	return &cp, nil
}

// CreateAccount создаёт новый аккаунт или возвращает существующий.
func (m *AccountStore) CreateAccount(_ context.Context, name, passwordHash, ip string) (*model.Account, error) {
	name = strings.ToLower(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if acc, exists := m.accounts[name]; exists {
		cp := *acc
		return &cp, nil
	}
	acc := &model.Account{Name: name, PasswordHash: passwordHash, Nickname: name, LastIP: ip}
	m.accounts[name] = acc
	cp := *acc
	return &cp, nil
}

// UpdateLastLogin обновляет IP последнего логина.
func (m *AccountStore) UpdateLastLogin(_ context.Context, name, ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, exists := m.accounts[strings.ToLower(name)]
	if !exists {
		return fmt.Errorf("account %q not found", name)
	}
	acc.LastIP = ip
	acc.LastLogin = time.Now()
	m.logins[acc.Name] = ip
	return nil
}

// LastIP возвращает IP последнего успешного логина.
func (m *AccountStore) LastIP(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ip, ok := m.logins[strings.ToLower(name)]
	return ip, ok
}

// LevelStore: in-memory имплементация level.Provider.
type LevelStore struct {
	mu     sync.RWMutex
	boards map[string][]byte
	files  map[string]*level.File
}

// NewLevelStore создаёт пустой LevelStore.
func NewLevelStore() *LevelStore {
	return &LevelStore{
		boards: make(map[string][]byte),
		files:  make(map[string]*level.File),
	}
}

// SetBoard задаёт board уровня.
func (s *LevelStore) SetBoard(name string, board []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[name] = board
}

// SetFile задаёт файл для WantFile.
func (s *LevelStore) SetFile(name string, data []byte, modTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = &level.File{Name: name, ModTime: modTime, Data: data}
}

// Board возвращает board или level.ErrNotFound.
func (s *LevelStore) Board(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", level.ErrNotFound, name)
	}
	return b, nil
}

// File возвращает файл или level.ErrNotFound.
func (s *LevelStore) File(_ context.Context, name string) (*level.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", level.ErrNotFound, name)
	}
	return f, nil
}

// MockConn: mock для net.Conn, используется в unit тестах.
// Записи накапливаются, чтение возвращает заранее заданные данные.
type MockConn struct {
	mu         sync.Mutex
	readBuf    []byte
	writeBuf   []byte
	writeCount int
	writeErr   error
	closed     bool
	remote     string
}

// NewMockConn создаёт новый MockConn экземпляр.
func NewMockConn() *MockConn {
	return &MockConn{remote: "192.168.1.100:12345"}
}

// SetRemoteAddr задаёт адрес, который вернёт RemoteAddr.
func (m *MockConn) SetRemoteAddr(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remote = addr
}

// FailWrites заставляет все последующие Write возвращать err.
func (m *MockConn) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Read читает данные из readBuf.
func (m *MockConn) Read(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := copy(b, m.readBuf)
	m.readBuf = m.readBuf[n:]
	return n, nil
}

// Write записывает данные в writeBuf.
func (m *MockConn) Write(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.writeBuf = append(m.writeBuf, b...)
	m.writeCount++
	return len(b), nil
}

// Written returns a copy of everything written so far.
func (m *MockConn) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.writeBuf...)
}

// WriteCount returns the number of Write() calls since creation.
func (m *MockConn) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeCount
}

// Closed reports whether Close was called.
func (m *MockConn) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close закрывает соединение.
func (m *MockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// LocalAddr возвращает локальный адрес (mock).
func (m *MockConn) LocalAddr() net.Addr {
	return TCPAddr("127.0.0.1:14900")
}

// RemoteAddr возвращает удалённый адрес (mock).
func (m *MockConn) RemoteAddr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return TCPAddr(m.remote)
}

// SetDeadline устанавливает deadline (no-op).
func (m *MockConn) SetDeadline(time.Time) error {
	return nil
}

// SetReadDeadline устанавливает read deadline (no-op).
func (m *MockConn) SetReadDeadline(time.Time) error {
	return nil
}

// SetWriteDeadline устанавливает write deadline (no-op).
func (m *MockConn) SetWriteDeadline(time.Time) error {
	return nil
}
