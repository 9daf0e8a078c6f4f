package prayer

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"
)

// Built-in display modes for the next event.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
)

// presets are the built-in modes written as templates over FormatData.
var presets = map[string]string{
	FormatTimeRemaining:      "{{.Remaining}}",
	FormatNextPrayerTime:     "{{.Time}}",
	FormatNameAndTime:        "{{.Name}} {{.Time}}",
	FormatNameAndRemaining:   "{{.Name}} {{.Remaining}}",
	FormatShortNameAndTime:   "{{.ShortName}} {{.Time}}",
	FormatShortNameAndRemain: "{{.ShortName}} {{.Remaining}}",
	FormatFull:               "{{.Name}} {{.Time}} ({{.Remaining}})",
}

// Modes returns the built-in mode names, sorted.
func Modes() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatData is what a display template sees.
type FormatData struct {
	Name      string // "Asr"
	ShortName string // "A"
	Time      string // "15:02" or "3:02 PM"
	Remaining string // "2h 15m"
	Hours     int
	Minutes   int // minutes past Hours
	Date      string
}

func newFormatData(n Next, timeFormat string) FormatData {
	d := n.Remaining
	if d < 0 {
		d = 0
	}
	return FormatData{
		Name:      n.Event.Name,
		ShortName: ShortNames[n.Event.Name],
		Time:      n.Event.Time.Format(timeFormat),
		Remaining: FormatRemaining(d),
		Hours:     int(d / time.Hour),
		Minutes:   int(d%time.Hour) / int(time.Minute),
		Date:      n.Event.Time.Format("2006-01-02"),
	}
}

// Format renders n in the given mode. A mode containing "{{" is a custom
// template over FormatData; an unknown name falls back to name-and-time.
// timeFormat is a Go layout such as "15:04" or "3:04 PM".
func Format(n Next, mode, timeFormat string) (string, error) {
	text, ok := presets[mode]
	if !ok {
		if strings.Contains(mode, "{{") {
			text = mode
		} else {
			text = presets[FormatNameAndTime]
		}
	}

	t, err := template.New("next").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("invalid format template: %w", err)
	}
	var b strings.Builder
	if err := t.Execute(&b, newFormatData(n, timeFormat)); err != nil {
		return "", fmt.Errorf("invalid format template: %w", err)
	}
	return b.String(), nil
}
