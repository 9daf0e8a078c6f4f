package display

import (
	"os"
	"testing"
)

func TestStyles(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"bold", Bold, "\033[1mx\033[0m"},
		{"dim", Dim, "\033[2mx\033[0m"},
		{"muted", Muted, "\033[90mx\033[0m"},
		{"warn", Warn, "\033[33mx\033[0m"},
		{"accent", Accent, "\033[1m\033[36mx\033[0m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn("x"); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStyles_Disabled(t *testing.T) {
	SetEnabled(false)
	for _, fn := range []func(string) string{Bold, Dim, Muted, Warn, Accent} {
		if got := fn("plain"); got != "plain" {
			t.Errorf("disabled style returned %q", got)
		}
	}
}

func TestStyles_EmptyTextStaysEmpty(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)
	if got := Accent(""); got != "" {
		t.Errorf("Accent(\"\") = %q", got)
	}
}

func TestDetect(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// Setenv registers the restore; Unsetenv then clears for this test.
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "")
	os.Unsetenv("NO_COLOR")
	os.Unsetenv("FORCE_COLOR")
	if Detect(f) {
		t.Error("a regular file is not a terminal")
	}

	t.Setenv("FORCE_COLOR", "1")
	if !Detect(f) {
		t.Error("FORCE_COLOR should enable styling")
	}

	t.Setenv("NO_COLOR", "1")
	if Detect(f) {
		t.Error("NO_COLOR should win over FORCE_COLOR")
	}
}
