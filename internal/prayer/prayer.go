// Package prayer models daily prayer-time events, picks the next one
// relative to a clock, and defines the calculator contract the locator
// depends on.
package prayer

import (
	"fmt"
	"strings"
	"time"

	"github.com/smokyabdulrahman/prayer-locator/internal/api"
)

// Event is a single named prayer time on a specific date.
type Event struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
}

// AllPrayerNames lists every prayer/event the API can return, in chronological order.
var AllPrayerNames = []string{
	"Fajr", "Sunrise", "Dhuhr", "Asr", "Sunset", "Maghrib", "Isha",
	"Imsak", "Midnight", "Firstthird", "Lastthird",
}

// DefaultPrayerNames are the prayers tracked by default.
var DefaultPrayerNames = []string{
	"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha",
}

// ShortNames maps full prayer names to single-character abbreviations.
var ShortNames = map[string]string{
	"Fajr":       "F",
	"Sunrise":    "S",
	"Dhuhr":      "D",
	"Asr":        "A",
	"Sunset":     "St",
	"Maghrib":    "M",
	"Isha":       "I",
	"Imsak":      "Im",
	"Midnight":   "Mi",
	"Firstthird": "F3",
	"Lastthird":  "L3",
}

// ParseTimings converts API timings into events for the given date, keeping
// only the selected names in the order given.
// The location is used to construct proper time.Time values in the correct timezone.
func ParseTimings(timings api.Timings, date time.Time, loc *time.Location, selected []string) ([]Event, error) {
	timingMap := map[string]string{
		"Fajr":       timings.Fajr,
		"Sunrise":    timings.Sunrise,
		"Dhuhr":      timings.Dhuhr,
		"Asr":        timings.Asr,
		"Sunset":     timings.Sunset,
		"Maghrib":    timings.Maghrib,
		"Isha":       timings.Isha,
		"Imsak":      timings.Imsak,
		"Midnight":   timings.Midnight,
		"Firstthird": timings.Firstthird,
		"Lastthird":  timings.Lastthird,
	}

	var events []Event
	for _, name := range selected {
		raw, ok := timingMap[name]
		if !ok {
			return nil, fmt.Errorf("unknown prayer name: %s", name)
		}

		t, err := parseTimeStr(raw, date, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time for %s (%q): %w", name, raw, err)
		}

		events = append(events, Event{Name: name, Time: t})
	}

	return events, nil
}

// ValidateOrder checks that events are strictly increasing in time and that
// no name appears twice.
func ValidateOrder(events []Event) error {
	seen := make(map[string]bool, len(events))
	for i, e := range events {
		if seen[e.Name] {
			return fmt.Errorf("duplicate event %s", e.Name)
		}
		seen[e.Name] = true
		if i > 0 && !e.Time.After(events[i-1].Time) {
			return fmt.Errorf("%s (%s) is not after %s (%s)",
				e.Name, e.Time.Format("15:04"), events[i-1].Name, events[i-1].Time.Format("15:04"))
		}
	}
	return nil
}

// NextEvent finds the next upcoming event from the given slice, relative to now.
// If all events have passed, it returns nil; SelectNext handles the rollover.
func NextEvent(events []Event, now time.Time) *Event {
	for i := range events {
		if events[i].Time.After(now) {
			return &events[i]
		}
	}
	return nil
}

// CurrentEvent returns the latest event at or before now, or nil when now
// precedes the first one.
func CurrentEvent(events []Event, now time.Time) *Event {
	var cur *Event
	for i := range events {
		if events[i].Time.After(now) {
			break
		}
		cur = &events[i]
	}
	return cur
}

// TimeRemaining returns the duration until the given event.
func TimeRemaining(e Event, now time.Time) time.Duration {
	return e.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// parseTimeStr parses a time string like "15:02" or "15:02 (BST)" into a time.Time
// on the given date in the given location.
func parseTimeStr(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	// Strip timezone suffix like " (BST)" that the API sometimes appends.
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
	}

	var hour, min int
	if _, err := fmt.Sscanf(parts[0], "%d", &hour); err != nil {
		return time.Time{}, fmt.Errorf("invalid hour in %q: %w", raw, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &min); err != nil {
		return time.Time{}, fmt.Errorf("invalid minute in %q: %w", raw, err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, loc), nil
}
