// Package display styles terminal output. Styling is off when stdout is not
// a terminal or NO_COLOR is set, so piped output stays plain.
package display

import (
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	gray   = "\033[90m"
)

var enabled atomic.Bool

func init() {
	enabled.Store(Detect(os.Stdout))
}

// Detect reports whether output to f should be styled. NO_COLOR wins over
// FORCE_COLOR, which wins over terminal detection.
func Detect(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetEnabled overrides detection, e.g. for --json or tests.
func SetEnabled(b bool) {
	enabled.Store(b)
}

// Enabled reports whether styling is active.
func Enabled() bool {
	return enabled.Load()
}

func wrap(code, text string) string {
	if !enabled.Load() || text == "" {
		return text
	}
	return code + text + reset
}

func Bold(text string) string { return wrap(bold, text) }

func Dim(text string) string { return wrap(dim, text) }

// Muted is for secondary details such as coordinates.
func Muted(text string) string { return wrap(gray, text) }

// Warn is for degraded or failed states.
func Warn(text string) string { return wrap(yellow, text) }

// Accent highlights the next prayer.
func Accent(text string) string { return wrap(bold+cyan, text) }
