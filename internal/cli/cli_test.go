package cli

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smokyabdulrahman/prayer-locator/internal/config"
)

// run executes the root command in-process against an empty config home.
func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, k := range config.ValidKeys {
		t.Setenv(config.EnvName(k), "")
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	var out bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", filepath.Join(home, "none.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "prayer-locator")
	build := exec.Command("go", "build", "-ldflags", "-X main.version=v1.2.3-test", "-o", bin, "../../cmd/prayer-locator")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}

	out, err := exec.Command(bin, "--version").Output()
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "prayer-locator version v1.2.3-test" {
		t.Errorf("--version = %q", got)
	}

	bad := exec.Command(bin, "address", "--city", "Riyadh", "--country", "Saudi Arabia")
	bad.Env = append(os.Environ(), "HOME="+t.TempDir(), "XDG_CONFIG_HOME="+t.TempDir())
	if out, err := bad.CombinedOutput(); err == nil {
		t.Errorf("expected non-zero exit, got success:\n%s", out)
	} else if !strings.HasPrefix(string(out), "error: ") {
		t.Errorf("errors should go to stderr with an error: prefix, got %q", out)
	}
}

func TestHelp_ListsSubcommands(t *testing.T) {
	out, err := run(t, nil, "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"today", "next", "address", "watch", "serve", "config", "methods"} {
		if !strings.Contains(out, sub) {
			t.Errorf("--help output missing %q", sub)
		}
	}
}

func TestMethods(t *testing.T) {
	out, err := run(t, nil, "methods", "--method", "20")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range []string{"Jafari", "ISNA", "Umm Al-Qura", "KEMENAG (Indonesia)", "Ministry of Awqaf, Jordan"} {
		if !strings.Contains(out, m) {
			t.Errorf("methods output missing %q", m)
		}
	}
}

func TestConfig_SetShowPath(t *testing.T) {
	home := t.TempDir()
	xdg := filepath.Join(home, ".config")
	env := map[string]string{"HOME": home, "XDG_CONFIG_HOME": xdg}

	out, err := run(t, env, "config", "set", "mqtt_topic", "/home/prayer/")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "Set mqtt_topic = home/prayer" {
		t.Errorf("set output = %q", out)
	}

	out, err = run(t, env, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(xdg, "prayer-locator", "config.json"); strings.TrimSpace(out) != want {
		t.Errorf("path = %q, want %q", out, want)
	}

	out, err = run(t, env, "config")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "home/prayer") {
		t.Errorf("config show should include the saved topic:\n%s", out)
	}

	if _, err := run(t, env, "config", "set", "method", "99"); err == nil {
		t.Error("expected validation error")
	}
	if _, err := run(t, env, "config", "reset"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(xdg, "prayer-locator", "config.json")); !os.IsNotExist(err) {
		t.Error("reset should delete the config file")
	}
}

func TestInvalidEnvOverride(t *testing.T) {
	_, err := run(t, map[string]string{"PRAYER_LOCATOR_METHOD": "99"}, "methods")
	if err == nil || !strings.Contains(err.Error(), "PRAYER_LOCATOR_METHOD") {
		t.Fatalf("expected error naming the variable, got %v", err)
	}
}

func TestAddress_NeedsCoordinates(t *testing.T) {
	_, err := run(t, nil, "address", "--city", "Riyadh", "--country", "Saudi Arabia", "--cache-dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "needs coordinates") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCityWithoutCountry(t *testing.T) {
	_, err := run(t, nil, "next", "--city", "Makkah", "--cache-dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "--country is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCalculationMethods(t *testing.T) {
	seen := map[int]bool{}
	for _, m := range CalculationMethods {
		if seen[m.ID] {
			t.Errorf("duplicate method ID %d", m.ID)
		}
		seen[m.ID] = true
		if m.ID < 0 || m.ID > 23 || m.Name == "" {
			t.Errorf("bad method entry %+v", m)
		}
	}
}
