package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Entry is one cached model response.
type Entry struct {
	Key       string    `json:"key"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

// Cache stores vision model responses as JSON files, one per key.
type Cache struct {
	dir        string
	ttlSeconds int
	enabled    bool
	now        func() time.Time
}

// New creates a new Cache. If dir is empty, uses the default cache directory.
// A disabled cache misses on every Get and drops every Put.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false, now: time.Now}, nil
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
		now:        time.Now,
	}, nil
}

// Get retrieves a cached response by key. Returns ("", false) on miss.
// Expired entries are removed.
func (c *Cache) Get(key string) (string, bool) {
	if c == nil || !c.enabled {
		return "", false
	}
	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if c.expired(entry) {
		os.Remove(path)
		return "", false
	}
	return entry.Response, true
}

// Put stores a response in the cache.
func (c *Cache) Put(key, response string) error {
	if c == nil || !c.enabled {
		return nil
	}
	entry := Entry{
		Key:       HashKey(key),
		Response:  response,
		CreatedAt: c.now(),
		TTL:       c.ttlSeconds,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.entryPath(key), data, 0o644)
}

// Clear removes all cache entries and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	if c == nil || !c.enabled || c.dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	var removed int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			if err := os.Remove(filepath.Join(c.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Stats describes the cache contents. Oldest and Newest are the creation
// times of the oldest and newest readable entries.
type Stats struct {
	Dir        string     `json:"dir"`
	TTLSeconds int        `json:"ttlSeconds"`
	Entries    int        `json:"entries"`
	TotalBytes int64      `json:"totalBytes"`
	Expired    int        `json:"expired"`
	Oldest     *time.Time `json:"oldest,omitempty"`
	Newest     *time.Time `json:"newest,omitempty"`
}

// GetStats returns cache statistics.
func (c *Cache) GetStats() (Stats, error) {
	if c == nil {
		return Stats{}, nil
	}
	stats := Stats{Dir: c.dir, TTLSeconds: c.ttlSeconds}
	err := c.walk(func(path string, size int64, entry *Entry) {
		stats.Entries++
		stats.TotalBytes += size
		if entry == nil {
			return
		}
		if c.expired(*entry) {
			stats.Expired++
		}
		created := entry.CreatedAt
		if stats.Oldest == nil || created.Before(*stats.Oldest) {
			stats.Oldest = &created
		}
		if stats.Newest == nil || created.After(*stats.Newest) {
			stats.Newest = &created
		}
	})
	return stats, err
}

// Prune removes expired and unreadable entries and returns how many were
// removed. Entries are kept forever when the TTL is zero.
func (c *Cache) Prune() (int, error) {
	if c == nil {
		return 0, nil
	}
	var removed int
	err := c.walk(func(path string, _ int64, entry *Entry) {
		if entry != nil && !c.expired(*entry) {
			return
		}
		if os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

// walk calls fn for every .json file in the cache directory. entry is nil
// when the file cannot be read or decoded.
func (c *Cache) walk(fn func(path string, size int64, entry *Entry)) error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(c.dir, e.Name())
		var entry *Entry
		if data, err := os.ReadFile(path); err == nil {
			var en Entry
			if json.Unmarshal(data, &en) == nil {
				entry = &en
			}
		}
		fn(path, info.Size(), entry)
	}
	return nil
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Cache) expired(e Entry) bool {
	return c.ttlSeconds > 0 && c.now().Sub(e.CreatedAt) > time.Duration(c.ttlSeconds)*time.Second
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// BuildCacheKey creates a cache key from the comparison inputs. Images are
// reduced to their digests so the key stays small.
func BuildCacheKey(provider, model, prompt string, images ...[]byte) string {
	parts := []string{provider, model, HashKey(prompt)}
	for _, img := range images {
		h := sha256.Sum256(img)
		parts = append(parts, hex.EncodeToString(h[:]))
	}
	return HashKey(strings.Join(parts, ":"))
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+".json")
}

// DefaultDir returns $XDG_CACHE_HOME/sitewatch or the OS-appropriate
// equivalent.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "sitewatch"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "sitewatch"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "sitewatch", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "sitewatch", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "sitewatch"), nil
	}
}
