package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
)

// FileCache keeps one JSON entry file per key under a directory. Entry files
// are spread over 256 subdirectories named after the first byte of the key
// hash.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens (creating if needed) a cache rooted at dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "create cache directory %s", dir)
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Dir returns the cache's root directory.
func (c *FileCache) Dir() string { return c.dir }

// Get reads the entry for key. Corrupt or expired entries are removed and
// reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "read cache entry")
	}

	var e fileEntry
	if json.Unmarshal(raw, &e) != nil || e.Key != key || c.expired(e) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

func (c *FileCache) expired(e fileEntry) bool {
	return !e.ExpiresAt.IsZero() && c.now().After(e.ExpiresAt)
}

// Set writes the entry atomically through a temporary file.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Key: key, Data: data}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeInternal, err, "encode cache entry")
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "create cache directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "write cache entry")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "write cache entry")
	}
	if err := tmp.Close(); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "write cache entry")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "write cache entry")
	}
	return nil
}

// Delete removes the entry for key.
func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "delete cache entry")
	}
	return nil
}

// Clear removes every entry and reports how many were removed. The root
// directory itself is kept.
func (c *FileCache) Clear() (int, error) {
	dirs, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "list cache directory")
	}
	removed := 0
	for _, d := range dirs {
		if !d.IsDir() || len(d.Name()) != 2 {
			continue
		}
		sub := filepath.Join(c.dir, d.Name())
		entries, _ := filepath.Glob(filepath.Join(sub, "*.json"))
		removed += len(entries)
		if err := os.RemoveAll(sub); err != nil {
			return removed, rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "clear cache")
		}
	}
	return removed, nil
}

// Close is a no-op.
func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
