package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/prayer-locator/internal/api"
	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
)

const (
	prayerCacheFile = "timings_%s.json" // keyed by hash
	geoCacheFile    = "geolocation.json"
)

// FileStore keeps cache entries as JSON files in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at the given directory.
// If dir is empty, it defaults to ~/.cache/prayer-locator/.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "prayer-locator")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &FileStore{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *FileStore) Dir() string { return c.dir }

// LoadTimings reads cached prayer times for k. It returns nil if the entry
// is missing, corrupt, or for another day.
func (c *FileStore) LoadTimings(_ context.Context, k TimingsKey) *TimingsEntry {
	path := filepath.Join(c.dir, fmt.Sprintf(prayerCacheFile, k.hash()))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var entry TimingsEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}

	// A hash collision across days is unlikely, but a stale entry is useless.
	if entry.Date != k.day() {
		return nil
	}

	return &entry
}

// SaveTimings writes prayer times to the cache.
func (c *FileStore) SaveTimings(_ context.Context, k TimingsKey, resp *api.Response) error {
	path := filepath.Join(c.dir, fmt.Sprintf(prayerCacheFile, k.hash()))

	data, err := json.Marshal(newTimingsEntry(k, resp))
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return writeAtomic(path, data)
}

// LoadGeo reads a cached geolocation result.
// Returns nil if the cache is missing or older than the TTL (24 hours).
func (c *FileStore) LoadGeo(_ context.Context) *geo.Location {
	path := filepath.Join(c.dir, geoCacheFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var entry GeoCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}

	if time.Since(entry.CachedAt) > geoTTL {
		return nil
	}

	return &entry.Location
}

// SaveGeo writes a geolocation result to the cache.
func (c *FileStore) SaveGeo(_ context.Context, loc *geo.Location) error {
	path := filepath.Join(c.dir, geoCacheFile)

	entry := GeoCacheEntry{
		Location: *loc,
		CachedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal geo cache: %w", err)
	}

	return writeAtomic(path, data)
}

// writeAtomic writes through a temp file so a concurrent reader never sees
// a half-written entry.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
