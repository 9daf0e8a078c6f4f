package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/smokyabdulrahman/prayer-locator/internal/api"
	"github.com/smokyabdulrahman/prayer-locator/internal/cache"
	"github.com/smokyabdulrahman/prayer-locator/internal/config"
	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
	"github.com/smokyabdulrahman/prayer-locator/internal/geocode"
	"github.com/smokyabdulrahman/prayer-locator/internal/prayer"
)

// openStore returns the configured cache backend. A file cache that cannot
// be created only disables caching; an unreachable Redis is an error since
// the user asked for it explicitly.
func openStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	rt := cfg.Runtime()
	switch rt.CacheBackend {
	case "file":
		fs, err := cache.NewFileStore(cfg.CacheDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
			return nil, func() {}, nil
		}
		return fs, func() {}, nil
	case "redis":
		rs, err := cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:     rt.RedisAddr,
			Password: os.Getenv(config.EnvPrefix + "REDIS_PASSWORD"),
		})
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	case "none":
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q: must be file, redis or none", rt.CacheBackend)
	}
}

// newProvider wires the Al Adhan client, the cache, and the prayer selection.
func newProvider(cfg *config.Config, store cache.Store, prayers []string) *prayer.AladhanProvider {
	rt := cfg.Runtime()
	return prayer.NewAladhanProvider(api.NewClient(rt.CallTimeout), prayer.AladhanOptions{
		Method: cfg.MethodOrDefault(-1),
		School: cfg.SchoolOrDefault(-1),
		Names:  prayers,
		Store:  store,
		Logger: logger,
	})
}

// newResolver builds the reverse-geocoding client with the configured
// field profile.
func newResolver(cfg *config.Config) (*geocode.Client, error) {
	rt := cfg.Runtime()
	profiles, err := geocode.LoadProfiles(rt.ProfilesFile)
	if err != nil {
		return nil, err
	}
	fields, err := profiles.Lookup(rt.GeocoderProfile)
	if err != nil {
		return nil, err
	}
	return geocode.NewClient(geocode.Options{
		BaseURL:  rt.GeocoderURL,
		Language: rt.Language,
		Timeout:  rt.CallTimeout,
		Fields:   &fields,
	}), nil
}

// detectLocation is swapped in tests.
var detectLocation = geo.DetectLocation

// resolveLocation determines the effective location.
// Priority: coordinates > city/country > cached geolocation > IP auto-detect.
func resolveLocation(ctx context.Context, cfg *config.Config, store cache.Store) (prayer.Location, error) {
	switch {
	case cfg.Latitude != 0 || cfg.Longitude != 0:
		c := geo.Coordinate{Latitude: cfg.Latitude, Longitude: cfg.Longitude}
		if err := c.Validate(); err != nil {
			return prayer.Location{}, err
		}
		return prayer.Location{Coordinate: c}, nil
	case cfg.City != "":
		if cfg.Country == "" {
			return prayer.Location{}, fmt.Errorf("--country is required when using --city")
		}
		return prayer.Location{City: cfg.City, Country: cfg.Country}, nil
	}

	if store != nil {
		if cached := store.LoadGeo(ctx); cached != nil {
			return fromDetected(cached), nil
		}
	}

	detected, err := detectLocation(ctx)
	if err != nil {
		return prayer.Location{}, fmt.Errorf("no location specified and auto-detection failed: %w", err)
	}
	if store != nil {
		if err := store.SaveGeo(ctx, detected); err != nil {
			logger.Debug().Err(err).Msg("failed to cache detected location")
		}
	}
	return fromDetected(detected), nil
}

func fromDetected(l *geo.Location) prayer.Location {
	return prayer.Location{
		Coordinate: l.Coordinate(),
		City:       l.City,
		Country:    l.Country,
		Timezone:   l.Timezone,
	}
}

// selectedPrayers splits a comma-separated override, falling back to the
// config and then to the default five.
func selectedPrayers(cfg *config.Config, override string) []string {
	raw := cfg.Prayers
	if override != "" {
		raw = override
	}
	if raw == "" {
		return prayer.DefaultPrayerNames
	}
	names := strings.Split(raw, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

// goTimeFormat maps the time_format setting onto a Go layout.
func goTimeFormat(cfg *config.Config) string {
	if cfg.TimeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}
