package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Method == nil || *d.Method != -1 {
		t.Errorf("Method = %v, want -1", d.Method)
	}
	if d.School == nil || *d.School != -1 {
		t.Errorf("School = %v, want -1", d.School)
	}
	if d.TimeFormat != "24h" {
		t.Errorf("TimeFormat = %q, want 24h", d.TimeFormat)
	}
	if d.City != "" || d.Latitude != 0 || d.Prayers != "" || d.CacheBackend != "" {
		t.Errorf("unexpected non-zero defaults: %+v", d)
	}
}

func TestDirAndPath(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		dir, err := Dir()
		if err != nil {
			t.Fatal(err)
		}
		if dir != "/tmp/xdg/prayer-locator" {
			t.Errorf("Dir() = %q", dir)
		}
		p, _ := Path()
		if p != "/tmp/xdg/prayer-locator/config.json" {
			t.Errorf("Path() = %q", p)
		}
	})
	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, _ := os.UserHomeDir()
		dir, err := Dir()
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(home, ".config", "prayer-locator"); dir != want {
			t.Errorf("Dir() = %q, want %q", dir, want)
		}
	})
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	t.Run("missing file is empty config", func(t *testing.T) {
		cfg, err := LoadFrom(filepath.Join(dir, "nope.json"))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.City != "" || cfg.Method != nil {
			t.Errorf("got %+v, want empty", cfg)
		}
	})

	t.Run("fields", func(t *testing.T) {
		p := write("full.json", `{"city":"Jakarta","country":"Indonesia","method":20,"time_format":"12h","geocoder_profile":"nominatim","fresh_for":"5m"}`)
		cfg, err := LoadFrom(p)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.City != "Jakarta" || cfg.Country != "Indonesia" || cfg.TimeFormat != "12h" {
			t.Errorf("got %+v", cfg)
		}
		if cfg.Method == nil || *cfg.Method != 20 {
			t.Errorf("Method = %v, want 20", cfg.Method)
		}
		if cfg.GeocoderProfile != "nominatim" || cfg.FreshFor != "5m" {
			t.Errorf("runtime keys not loaded: %+v", cfg)
		}
	})

	t.Run("method zero is kept", func(t *testing.T) {
		cfg, err := LoadFrom(write("zero.json", `{"method":0}`))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Method == nil || *cfg.Method != 0 {
			t.Errorf("Method = %v, want 0", cfg.Method)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := LoadFrom(write("bad.json", `{city`)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestSaveLoadReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	original := &Config{
		City:         "Bandung",
		Latitude:     -6.9175,
		Longitude:    107.6191,
		Method:       intPtr(0),
		School:       intPtr(1),
		Prayers:      "Fajr,Maghrib",
		CacheBackend: "redis",
		MQTTTopic:    "home/prayer",
	}
	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "}\n") {
		t.Error("saved file should end with a newline")
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range ValidKeys {
		want, _ := original.Get(k)
		got, _ := loaded.Get(k)
		if got != want {
			t.Errorf("%s = %q after reload, want %q", k, got, want)
		}
	}

	if err := ResetAt(path); err != nil {
		t.Fatalf("ResetAt: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("config file should be gone")
	}
	if err := ResetAt(path); err != nil {
		t.Errorf("second ResetAt should be a no-op, got %v", err)
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    string
	}{
		{"city", "Makkah", ""},
		{"latitude", "21.4225", ""},
		{"latitude", "-90", ""},
		{"latitude", "91", "between -90 and 90"},
		{"latitude", "north", "must be a number"},
		{"longitude", "180", ""},
		{"longitude", "-180.5", "between -180 and 180"},
		{"method", "0", ""},
		{"method", "23", ""},
		{"method", "24", "must be between 0 and 23"},
		{"method", "mwl", "must be an integer"},
		{"school", "1", ""},
		{"school", "2", "0 (Shafi) or 1 (Hanafi)"},
		{"time_format", "12h", ""},
		{"time_format", "am", "must be one of 12h, 24h"},
		{"prayers", "Fajr, Isha", ""},
		{"prayers", "Fajr,fajr", `invalid prayer name "fajr"`},
		{"geocoder_url", "https://nominatim.example.org", ""},
		{"geocoder_url", "ftp://x", "must start with http"},
		{"refresh_cron", "*/10 * * * *", ""},
		{"refresh_cron", "@every 5m", ""},
		{"refresh_cron", "sometimes", "invalid refresh_cron"},
		{"min_distance_m", "250.5", ""},
		{"min_distance_m", "-1", "non-negative"},
		{"retry_backoff", "2s", ""},
		{"call_timeout", "soon", "must be a duration"},
		{"fresh_for", "-1m", "must not be negative"},
		{"cache_backend", "none", ""},
		{"cache_backend", "memcached", "must be one of file, redis, none"},
		{"log_level", "DEBUG", ""},
		{"log_level", "trace", "must be one of"},
		{"colour", "blue", "unknown config key"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.Set(tt.key, tt.value)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSetThenGet(t *testing.T) {
	tests := map[string][2]string{
		"city":         {"Jakarta", "Jakarta"},
		"latitude":     {"-6.200", "-6.2"},
		"method":       {"0", "0"},
		"school":       {"1", "1"},
		"prayers":      {"Fajr,Isha", "Fajr,Isha"},
		"mqtt_topic":   {"/home/prayer/", "home/prayer"},
		"log_level":    {"WARN", "warn"},
		"refresh_cron": {"@hourly", "@hourly"},
	}
	for key, io := range tests {
		cfg := &Config{}
		if err := cfg.Set(key, io[0]); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
		got, err := cfg.Get(key)
		if err != nil {
			t.Fatal(err)
		}
		if got != io[1] {
			t.Errorf("Get(%s) = %q, want %q", key, got, io[1])
		}
	}
}

func TestGet_Unset(t *testing.T) {
	cfg := &Config{}
	for _, k := range ValidKeys {
		if v, err := cfg.Get(k); err != nil || v != "" {
			t.Errorf("Get(%s) = %q, %v; want empty", k, v, err)
		}
	}
	if _, err := cfg.Get("colour"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestFailedSetLeavesValue(t *testing.T) {
	cfg := &Config{Latitude: 1.5, Method: intPtr(3)}
	_ = cfg.Set("latitude", "200")
	_ = cfg.Set("method", "-1")
	if cfg.Latitude != 1.5 || *cfg.Method != 3 {
		t.Errorf("rejected values were stored: %+v", cfg)
	}
}

func TestOrDefault(t *testing.T) {
	cfg := &Config{}
	if cfg.MethodOrDefault(4) != 4 || cfg.SchoolOrDefault(1) != 1 {
		t.Error("nil values should fall back")
	}
	cfg.Method, cfg.School = intPtr(0), intPtr(0)
	if cfg.MethodOrDefault(4) != 0 || cfg.SchoolOrDefault(1) != 0 {
		t.Error("explicit zero should win over the default")
	}
}

func TestValidKeys_Order(t *testing.T) {
	want := []string{"city", "country", "latitude", "longitude", "method", "school", "time_format", "prayers", "cache_dir"}
	for i, k := range want {
		if ValidKeys[i] != k {
			t.Errorf("ValidKeys[%d] = %q, want %q", i, ValidKeys[i], k)
		}
	}
	seen := map[string]bool{}
	for _, k := range ValidKeys {
		if seen[k] {
			t.Errorf("duplicate key %q", k)
		}
		seen[k] = true
	}
}

func TestConfig_OmitEmpty(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("empty config = %s, want {}", data)
	}

	data, _ = json.Marshal(&Config{Method: intPtr(0)})
	if string(data) != `{"method":0}` {
		t.Errorf("method zero = %s", data)
	}
}

func TestSaveTo_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	for _, city := range []string{"Depok", "Bogor"} {
		if err := (&Config{City: city}).SaveTo(path); err != nil {
			t.Fatal(err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "config.json" {
		t.Errorf("dir contains %v, want only config.json", entries)
	}
	cfg, _ := LoadFrom(path)
	if cfg.City != "Bogor" {
		t.Errorf("City = %q, want the last write", cfg.City)
	}
}
