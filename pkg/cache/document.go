// Package cache stores specification documents fetched over HTTP.
//
// Entries are JSON files named by the SHA-256 of their key (typically the
// document URL) inside an XDG cache directory. Each entry keeps the ETag and
// Last-Modified headers of its response so the loader can revalidate it with
// a conditional request instead of refetching.
//
// # Example Usage
//
//	c, _ := cache.New(afero.NewOsFs(), cache.DefaultDir())
//	entry, err := c.Get(ctx, url)
//	if errors.Is(err, cache.ErrCacheMiss) || !c.IsValid(entry, 0) {
//	    // fetch and c.Set(ctx, url, &cache.Entry{...})
//	}
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// ErrCacheMiss is returned when a cache entry is not found.
var ErrCacheMiss = errors.New("cache miss")

// DocumentCache is an XDG cache of fetched documents.
type DocumentCache struct {
	fs afero.Fs
	// BaseDir is the cache directory
	BaseDir string
	// DefaultTTL applies when IsValid is given no TTL (default: 5 minutes)
	DefaultTTL time.Duration
}

// Entry is one cached document.
type Entry struct {
	// Data is the raw document
	Data []byte `json:"data"`
	// ETag is the HTTP ETag header value
	ETag string `json:"etag,omitempty"`
	// LastModified is the HTTP Last-Modified header value
	LastModified string `json:"last_modified,omitempty"`
	// FetchedAt is when the document was last fetched or revalidated
	FetchedAt time.Time `json:"fetched_at"`
	// URL is the source URL
	URL string `json:"url"`
}

// Stats summarizes the cache directory.
type Stats struct {
	Entries int
	Size    int64
}

// DefaultDir returns the XDG cache directory of remotecli documents.
func DefaultDir() string {
	return filepath.Join(xdg.CacheHome, "remotecli", "documents")
}

// New creates a cache in baseDir, creating the directory.
func New(fsys afero.Fs, baseDir string) (*DocumentCache, error) {
	if err := fsys.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DocumentCache{
		fs:         fsys,
		BaseDir:    baseDir,
		DefaultTTL: 5 * time.Minute,
	}, nil
}

// Get retrieves a cached entry by key.
func (c *DocumentCache) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := afero.ReadFile(c.fs, c.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	return &entry, nil
}

// Set stores an entry.
func (c *DocumentCache) Set(ctx context.Context, key string, entry *Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}
	if err := afero.WriteFile(c.fs, c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// Invalidate removes an entry.
func (c *DocumentCache) Invalidate(ctx context.Context, key string) error {
	if err := c.fs.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (c *DocumentCache) Clear(ctx context.Context) error {
	return c.each(func(path string, _ fs.FileInfo) error {
		if err := c.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(path), err)
		}
		return nil
	})
}

// IsValid reports whether an entry is younger than ttl. A zero ttl uses
// DefaultTTL.
func (c *DocumentCache) IsValid(entry *Entry, ttl time.Duration) bool {
	if entry == nil {
		return false
	}
	if ttl == 0 {
		ttl = c.DefaultTTL
	}
	return time.Since(entry.FetchedAt) < ttl
}

// Stats returns the number and total size of the entries.
func (c *DocumentCache) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := c.each(func(_ string, info fs.FileInfo) error {
		stats.Entries++
		stats.Size += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Prune removes entries older than ttl and returns how many were removed.
func (c *DocumentCache) Prune(ctx context.Context, ttl time.Duration) (int, error) {
	if ttl == 0 {
		ttl = c.DefaultTTL
	}

	pruned := 0
	err := c.each(func(path string, _ fs.FileInfo) error {
		data, err := afero.ReadFile(c.fs, path)
		if err != nil {
			return nil
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil
		}
		if time.Since(entry.FetchedAt) >= ttl {
			if err := c.fs.Remove(path); err == nil {
				pruned++
			}
		}
		return nil
	})
	return pruned, err
}

// each calls fn for every entry file.
func (c *DocumentCache) each(fn func(path string, info fs.FileInfo) error) error {
	infos, err := afero.ReadDir(c.fs, c.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, info := range infos {
		if info.IsDir() || filepath.Ext(info.Name()) != ".json" {
			continue
		}
		if err := fn(filepath.Join(c.BaseDir, info.Name()), info); err != nil {
			return err
		}
	}
	return nil
}

// path returns the entry file of a key.
func (c *DocumentCache) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.BaseDir, hex.EncodeToString(hash[:])+".json")
}
