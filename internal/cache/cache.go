// Package cache stores fetched prayer timings and the last IP-detected
// location so repeated lookups and offline runs do not hit the network.
//
// Two backends share the Store interface: a directory of JSON files for the
// CLI and Redis for long-running deployments where several processes share
// state.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/prayer-locator/internal/api"
	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
)

const geoTTL = 24 * time.Hour

// Store is a cache backend. Load methods return nil on any miss, including
// unreadable or expired entries; callers fall back to the network.
type Store interface {
	LoadTimings(ctx context.Context, k TimingsKey) *TimingsEntry
	SaveTimings(ctx context.Context, k TimingsKey, resp *api.Response) error
	LoadGeo(ctx context.Context) *geo.Location
	SaveGeo(ctx context.Context, loc *geo.Location) error
}

// TimingsKey identifies one day of timings for one place and calculation setup.
type TimingsKey struct {
	Date      time.Time
	Latitude  float64
	Longitude float64
	City      string
	Country   string
	Method    int
	School    int
}

func (k TimingsKey) day() string {
	return k.Date.Format("2006-01-02")
}

func (k TimingsKey) hash() string {
	return cacheKey(k.day(), k.Latitude, k.Longitude, k.City, k.Country, k.Method, k.School)
}

// TimingsEntry stores a day's prayer times along with metadata for validation.
type TimingsEntry struct {
	Date     string       `json:"date"` // YYYY-MM-DD
	Method   int          `json:"method"`
	School   int          `json:"school"`
	Timings  api.Timings  `json:"timings"`
	Meta     api.Meta     `json:"meta"`
	DateInfo api.DateInfo `json:"date_info"`
}

// GeoCacheEntry stores a cached geolocation result with a timestamp.
type GeoCacheEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

func newTimingsEntry(k TimingsKey, resp *api.Response) TimingsEntry {
	return TimingsEntry{
		Date:     k.day(),
		Method:   k.Method,
		School:   k.School,
		Timings:  resp.Data.Timings,
		Meta:     resp.Data.Meta,
		DateInfo: resp.Data.Date,
	}
}

// cacheKey builds a deterministic hash from the parameters that affect prayer times.
// This ensures different locations/methods/schools get separate cache entries.
func cacheKey(date string, lat, lon float64, city, country string, method, school int) string {
	raw := fmt.Sprintf("%s|%.6f|%.6f|%s|%s|%d|%d", date, lat, lon, city, country, method, school)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8]) // 16 hex chars is plenty for uniqueness
}
