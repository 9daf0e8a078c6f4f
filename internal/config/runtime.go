package config

import (
	"os"
	"strconv"
	"time"
)

// Runtime is the fully defaulted view of the settings the long-running
// commands need. Values in Config were validated by Set, so parsing here
// only falls back on hand-edited files.
type Runtime struct {
	Language        string
	GeocoderURL     string
	GeocoderProfile string
	ProfilesFile    string
	RefreshCron     string
	MinDistance     float64 // metres
	RetryBackoff    time.Duration
	CallTimeout     time.Duration
	FreshFor        time.Duration
	CacheBackend    string
	RedisAddr       string
	MQTTBroker      string
	MQTTTopic       string
	DeviceID        string
	Listen          string
	LogLevel        string
}

// Runtime applies defaults to every unset runtime key.
func (c *Config) Runtime() Runtime {
	return Runtime{
		Language:        or(c.Language, "en"),
		GeocoderURL:     c.GeocoderURL,
		GeocoderProfile: or(c.GeocoderProfile, "nominatim"),
		ProfilesFile:    c.ProfilesFile,
		RefreshCron:     or(c.RefreshCron, "@every 15m"),
		MinDistance:     floatOr(c.MinDistance, 500),
		RetryBackoff:    durationOr(c.RetryBackoff, 5*time.Second),
		CallTimeout:     durationOr(c.CallTimeout, 10*time.Second),
		FreshFor:        durationOr(c.FreshFor, 10*time.Minute),
		CacheBackend:    or(c.CacheBackend, "file"),
		RedisAddr:       or(c.RedisAddr, "localhost:6379"),
		MQTTBroker:      c.MQTTBroker,
		MQTTTopic:       or(c.MQTTTopic, "prayer-locator"),
		DeviceID:        or(c.DeviceID, hostname()),
		Listen:          or(c.Listen, ":8080"),
		LogLevel:        or(c.LogLevel, "info"),
	}
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func floatOr(v string, def float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func durationOr(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "default"
	}
	return h
}
