package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// key binds a config name to its field. set validates before storing.
type key struct {
	name string
	set  func(c *Config, v string) error
	get  func(c *Config) string
}

// keys is ordered the way `config` prints them.
var keys = []key{
	text("city", func(c *Config) *string { return &c.City }),
	text("country", func(c *Config) *string { return &c.Country }),
	degrees("latitude", 90, func(c *Config) *float64 { return &c.Latitude }),
	degrees("longitude", 180, func(c *Config) *float64 { return &c.Longitude }),
	{
		name: "method",
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid method %q: must be an integer", v)
			}
			if n < 0 || n > 23 {
				return fmt.Errorf("invalid method %q: must be between 0 and 23", v)
			}
			c.Method = &n
			return nil
		},
		get: func(c *Config) string { return optInt(c.Method) },
	},
	{
		name: "school",
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid school %q: must be an integer", v)
			}
			if n != 0 && n != 1 {
				return fmt.Errorf("invalid school %q: must be 0 (Shafi) or 1 (Hanafi)", v)
			}
			c.School = &n
			return nil
		},
		get: func(c *Config) string { return optInt(c.School) },
	},
	oneOf("time_format", []string{"12h", "24h"}, func(c *Config) *string { return &c.TimeFormat }),
	checked("prayers", checkPrayers, func(c *Config) *string { return &c.Prayers }),
	text("cache_dir", func(c *Config) *string { return &c.CacheDir }),
	text("language", func(c *Config) *string { return &c.Language }),
	checked("geocoder_url", checkURL, func(c *Config) *string { return &c.GeocoderURL }),
	text("geocoder_profile", func(c *Config) *string { return &c.GeocoderProfile }),
	text("profiles_file", func(c *Config) *string { return &c.ProfilesFile }),
	checked("refresh_cron", checkCron, func(c *Config) *string { return &c.RefreshCron }),
	checked("min_distance_m", checkDistance, func(c *Config) *string { return &c.MinDistance }),
	checked("retry_backoff", checkDuration, func(c *Config) *string { return &c.RetryBackoff }),
	checked("call_timeout", checkDuration, func(c *Config) *string { return &c.CallTimeout }),
	checked("fresh_for", checkDuration, func(c *Config) *string { return &c.FreshFor }),
	oneOf("cache_backend", []string{"file", "redis", "none"}, func(c *Config) *string { return &c.CacheBackend }),
	text("redis_addr", func(c *Config) *string { return &c.RedisAddr }),
	text("mqtt_broker", func(c *Config) *string { return &c.MQTTBroker }),
	{
		name: "mqtt_topic",
		set:  func(c *Config, v string) error { c.MQTTTopic = strings.Trim(v, "/"); return nil },
		get:  func(c *Config) string { return c.MQTTTopic },
	},
	text("device_id", func(c *Config) *string { return &c.DeviceID }),
	text("listen", func(c *Config) *string { return &c.Listen }),
	{
		name: "log_level",
		set: func(c *Config, v string) error {
			v = strings.ToLower(v)
			if err := checkOneOf("log_level", v, []string{"debug", "info", "warn", "error", "off"}); err != nil {
				return err
			}
			c.LogLevel = v
			return nil
		},
		get: func(c *Config) string { return c.LogLevel },
	},
}

// ValidKeys lists all config keys that can be set via `config set` or the
// environment.
var ValidKeys = func() []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.name
	}
	return names
}()

func lookup(name string) (key, bool) {
	for _, k := range keys {
		if k.name == name {
			return k, true
		}
	}
	return key{}, false
}

// Set validates value and stores it under name.
func (c *Config) Set(name, value string) error {
	k, ok := lookup(name)
	if !ok {
		return fmt.Errorf("unknown config key %q; valid keys: %s", name, strings.Join(ValidKeys, ", "))
	}
	return k.set(c, value)
}

// Get returns the string form of name, or "" when unset.
func (c *Config) Get(name string) (string, error) {
	k, ok := lookup(name)
	if !ok {
		return "", fmt.Errorf("unknown config key %q", name)
	}
	return k.get(c), nil
}

func text(name string, field func(*Config) *string) key {
	return checked(name, nil, field)
}

func checked(name string, check func(name, v string) error, field func(*Config) *string) key {
	return key{
		name: name,
		set: func(c *Config, v string) error {
			if check != nil {
				if err := check(name, v); err != nil {
					return err
				}
			}
			*field(c) = v
			return nil
		},
		get: func(c *Config) string { return *field(c) },
	}
}

func oneOf(name string, allowed []string, field func(*Config) *string) key {
	return checked(name, func(name, v string) error { return checkOneOf(name, v, allowed) }, field)
}

func degrees(name string, limit float64, field func(*Config) *float64) key {
	return key{
		name: name,
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: must be a number", name, v)
			}
			if f < -limit || f > limit {
				return fmt.Errorf("invalid %s %q: must be between %g and %g", name, v, -limit, limit)
			}
			*field(c) = f
			return nil
		},
		get: func(c *Config) string {
			if f := *field(c); f != 0 {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
			return ""
		},
	}
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func checkOneOf(name, v string, allowed []string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q: must be one of %s", name, v, strings.Join(allowed, ", "))
}

// validPrayerNames are the timings the Al Adhan API returns.
var validPrayerNames = map[string]bool{
	"Fajr": true, "Sunrise": true, "Dhuhr": true, "Asr": true,
	"Sunset": true, "Maghrib": true, "Isha": true,
	"Imsak": true, "Midnight": true, "Firstthird": true, "Lastthird": true,
}

func checkPrayers(_, v string) error {
	for _, n := range strings.Split(v, ",") {
		if n = strings.TrimSpace(n); !validPrayerNames[n] {
			return fmt.Errorf("invalid prayer name %q in prayers list", n)
		}
	}
	return nil
}

func checkURL(name, v string) error {
	if v != "" && !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		return fmt.Errorf("invalid %s %q: must start with http:// or https://", name, v)
	}
	return nil
}

func checkCron(name, v string) error {
	if _, err := cron.ParseStandard(v); err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return nil
}

func checkDistance(name, v string) error {
	if f, err := strconv.ParseFloat(v, 64); err != nil || f < 0 {
		return fmt.Errorf("invalid %s %q: must be a non-negative number of metres", name, v)
	}
	return nil
}

func checkDuration(name, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: must be a duration like 5s or 10m", name, v)
	}
	if d < 0 {
		return fmt.Errorf("invalid %s %q: must not be negative", name, v)
	}
	return nil
}
