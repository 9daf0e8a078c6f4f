// Package notify hands upcoming prayer events to whatever delivers alerts:
// in-process timers, an MQTT broker feeding other devices, or both.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/smokyabdulrahman/prayer-locator/internal/prayer"
)

// Alert is one scheduled notification.
type Alert struct {
	ID     string       `json:"id"`
	Event  prayer.Event `json:"event"`
	FireAt time.Time    `json:"fire_at"`
}

// Scheduler accepts the full alert list for one day. Every call replaces
// whatever was previously scheduled for that day, so a refresh never leaves
// duplicate or stale alerts behind. An empty list clears the day.
type Scheduler interface {
	ScheduleAlerts(ctx context.Context, day time.Time, alerts []Alert) error
}

// BuildAlerts turns events into alerts firing lead before each event,
// keeping only those that fire after now.
func BuildAlerts(events []prayer.Event, now time.Time, lead time.Duration) []Alert {
	alerts := make([]Alert, 0, len(events))
	for _, e := range events {
		fireAt := e.Time.Add(-lead)
		if !fireAt.After(now) {
			continue
		}
		alerts = append(alerts, Alert{ID: uuid.NewString(), Event: e, FireAt: fireAt})
	}
	return alerts
}

// DayKey is the calendar day an alert list belongs to.
func DayKey(day time.Time) string {
	return day.Format("2006-01-02")
}

// Multi fans a schedule out to several schedulers. Every scheduler is
// called even if an earlier one fails.
type Multi []Scheduler

func (m Multi) ScheduleAlerts(ctx context.Context, day time.Time, alerts []Alert) error {
	var errs []error
	for _, s := range m {
		if err := s.ScheduleAlerts(ctx, day, alerts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards every schedule.
type Nop struct{}

func (Nop) ScheduleAlerts(context.Context, time.Time, []Alert) error { return nil }
