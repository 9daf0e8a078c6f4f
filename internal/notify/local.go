package notify

import (
	"context"
	"sync"
	"time"
)

// LocalScheduler fires alerts from in-process timers.
type LocalScheduler struct {
	fire func(Alert)
	now  func() time.Time

	mu     sync.Mutex
	timers map[string][]*time.Timer
}

// NewLocalScheduler calls fire from its own goroutine when each alert is due.
func NewLocalScheduler(fire func(Alert)) *LocalScheduler {
	return &LocalScheduler{
		fire:   fire,
		now:    time.Now,
		timers: make(map[string][]*time.Timer),
	}
}

// ScheduleAlerts stops the day's existing timers before arming new ones.
// Alerts already due fire immediately.
func (s *LocalScheduler) ScheduleAlerts(_ context.Context, day time.Time, alerts []Alert) error {
	key := DayKey(day)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers[key] {
		t.Stop()
	}
	delete(s.timers, key)

	now := s.now()
	timers := make([]*time.Timer, 0, len(alerts))
	for _, a := range alerts {
		a := a
		timers = append(timers, time.AfterFunc(a.FireAt.Sub(now), func() { s.fire(a) }))
	}
	if len(timers) > 0 {
		s.timers[key] = timers
	}
	return nil
}

// Pending returns how many timers are armed for day.
func (s *LocalScheduler) Pending(day time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers[DayKey(day)])
}

// Stop cancels every armed timer.
func (s *LocalScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ts := range s.timers {
		for _, t := range ts {
			t.Stop()
		}
		delete(s.timers, key)
	}
}
