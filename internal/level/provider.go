// Package level loads level boards and downloadable files for connections.
package level

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/udisondev/gserver/internal/constants"
)

var (
	// ErrNotFound is returned when a level or file does not exist.
	ErrNotFound = errors.New("level: not found")
	// ErrInvalidName is returned for names that would escape the levels directory.
	ErrInvalidName = errors.New("level: invalid name")
)

// boardExt is appended to a level name to get its raw board file.
const boardExt = ".board"

// File is a downloadable file.
type File struct {
	Name    string
	ModTime time.Time
	Data    []byte
}

// Provider returns level boards and files by name.
type Provider interface {
	// Board returns the raw tile bytes of a level (constants.BoardSize bytes).
	Board(ctx context.Context, name string) ([]byte, error)
	// File returns a file requested by a client.
	File(ctx context.Context, name string) (*File, error)
}

// FileProvider serves boards and files from a directory and keeps them in an
// expiring cache. Cached slices are shared and must not be modified.
type FileProvider struct {
	dir   string
	cache *gocache.Cache
}

// NewFileProvider creates a provider rooted at dir. Entries expire after ttl;
// ttl <= 0 keeps them forever.
func NewFileProvider(dir string, ttl time.Duration) *FileProvider {
	cleanup := 10 * time.Second
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	} else if ttl < cleanup {
		cleanup = ttl
	}
	return &FileProvider{dir: dir, cache: gocache.New(ttl, cleanup)}
}

// Board returns the board of the named level.
func (p *FileProvider) Board(ctx context.Context, name string) ([]byte, error) {
	key := "board:" + name
	if v, ok := p.cache.Get(key); ok {
		return v.([]byte), nil
	}

	f, err := p.load(ctx, name+boardExt)
	if err != nil {
		return nil, err
	}
	if len(f.Data) != constants.BoardSize {
		return nil, fmt.Errorf("level %q: board has %d bytes, want %d", name, len(f.Data), constants.BoardSize)
	}

	p.cache.SetDefault(key, f.Data)
	return f.Data, nil
}

// File returns the named file.
func (p *FileProvider) File(ctx context.Context, name string) (*File, error) {
	key := "file:" + name
	if v, ok := p.cache.Get(key); ok {
		return v.(*File), nil
	}

	f, err := p.load(ctx, name)
	if err != nil {
		return nil, err
	}

	p.cache.SetDefault(key, f)
	return f, nil
}

// Invalidate drops a cached board and file of the same name.
func (p *FileProvider) Invalidate(name string) {
	p.cache.Delete("board:" + name)
	p.cache.Delete("file:" + name)
}

// Cached returns the number of cached entries (expired ones may be included until cleanup).
func (p *FileProvider) Cached() int {
	return p.cache.ItemCount()
}

func (p *FileProvider) load(ctx context.Context, name string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validName(name); err != nil {
		return nil, err
	}

	path := filepath.Join(p.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return &File{Name: name, ModTime: info.ModTime(), Data: data}, nil
}

// validName accepts plain file names only: no separators, no parent references.
func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
