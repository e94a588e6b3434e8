package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when a cached entry exists but has
// exceeded its time-to-live (TTL). The stale data is still on disk until the
// next [Cache.Set] for the same key.
var ErrExpired = errors.New("cache entry expired")

// Cache stores raw bodies as files in a directory, named by the SHA-256 of
// their key.
//
// Cache operations are not goroutine-safe. Multiple Cache instances, even in
// different processes, can share one directory because each Set replaces a
// whole file.
//
// Entries expire by file modification time. A TTL of 0 means entries never
// expire.
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a Cache that stores entries in dir with the given TTL.
//
// If dir is empty, NewCache uses ~/.cache/passrank/. The directory is created
// with mode 0755 if it doesn't exist.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "passrank")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the time-to-live for cache entries.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the body cached under key.
//
//   - (data, true, nil): cache hit
//   - (nil, false, nil): no entry
//   - (nil, false, ErrExpired): entry older than the TTL
//   - (nil, false, err): I/O error
func (c *Cache) Get(key string) ([]byte, bool, error) {
	path := c.keyPath(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key, replacing any existing entry and restarting its
// TTL. The file is written under a temporary name and renamed into place.
func (c *Cache) Set(key string, data []byte) error {
	path := c.keyPath(key)
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
