package prayer

import (
	"testing"
	"time"
)

func at(day, hour, min int) time.Time {
	return time.Date(2026, 3, day, hour, min, 0, 0, time.UTC)
}

func sampleDay(day int) []Event {
	return []Event{
		{Name: "Fajr", Time: at(day, 4, 45)},
		{Name: "Dhuhr", Time: at(day, 12, 5)},
		{Name: "Asr", Time: at(day, 15, 20)},
		{Name: "Maghrib", Time: at(day, 18, 2)},
		{Name: "Isha", Time: at(day, 19, 15)},
	}
}

func TestSelectNext(t *testing.T) {
	today, tomorrow := sampleDay(10), sampleDay(11)

	tests := []struct {
		name          string
		now           time.Time
		wantName      string
		wantTime      time.Time
		wantRemaining time.Duration
	}{
		{"before first event", at(10, 3, 0), "Fajr", at(10, 4, 45), time.Hour + 45*time.Minute},
		{"midday", at(10, 13, 0), "Asr", at(10, 15, 20), 2*time.Hour + 20*time.Minute},
		{"exactly at maghrib", at(10, 18, 2), "Isha", at(10, 19, 15), time.Hour + 13*time.Minute},
		{"one second before maghrib", at(10, 18, 2).Add(-time.Second), "Maghrib", at(10, 18, 2), time.Second},
		{"after isha rolls over", at(10, 22, 30), "Fajr", at(11, 4, 45), 6*time.Hour + 15*time.Minute},
		{"exactly at isha rolls over", at(10, 19, 15), "Fajr", at(11, 4, 45), 9*time.Hour + 30*time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectNext(today, tomorrow, tt.now)
			if !ok {
				t.Fatal("expected a next event")
			}
			if got.Event.Name != tt.wantName {
				t.Errorf("Name = %s, want %s", got.Event.Name, tt.wantName)
			}
			if !got.Event.Time.Equal(tt.wantTime) {
				t.Errorf("Time = %v, want %v", got.Event.Time, tt.wantTime)
			}
			if got.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %v, want %v", got.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestSelectNext_Deterministic(t *testing.T) {
	today, tomorrow := sampleDay(10), sampleDay(11)
	now := at(10, 16, 0)

	first, _ := SelectNext(today, tomorrow, now)
	for i := 0; i < 10; i++ {
		got, _ := SelectNext(today, tomorrow, now)
		if got != first {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
}

func TestSelectNext_NoCandidate(t *testing.T) {
	if _, ok := SelectNext(nil, nil, at(10, 12, 0)); ok {
		t.Error("expected ok=false for empty days")
	}
	if _, ok := SelectNext(sampleDay(10), nil, at(10, 23, 0)); ok {
		t.Error("expected ok=false when tomorrow is unknown and today has passed")
	}
}

func TestSelectNext_DoesNotMutateInput(t *testing.T) {
	today := sampleDay(10)
	before := append([]Event(nil), today...)
	SelectNext(today, nil, at(10, 12, 0))
	for i := range today {
		if today[i] != before[i] {
			t.Fatalf("event %d mutated: %+v", i, today[i])
		}
	}
}

func TestValidateOrder(t *testing.T) {
	if err := ValidateOrder(sampleDay(10)); err != nil {
		t.Errorf("sample day should be valid: %v", err)
	}

	dup := append(sampleDay(10), Event{Name: "Fajr", Time: at(10, 23, 0)})
	if err := ValidateOrder(dup); err == nil {
		t.Error("expected error for duplicate name")
	}

	swapped := sampleDay(10)
	swapped[1], swapped[2] = swapped[2], swapped[1]
	if err := ValidateOrder(swapped); err == nil {
		t.Error("expected error for out-of-order events")
	}

	tied := sampleDay(10)
	tied[4].Time = tied[3].Time
	if err := ValidateOrder(tied); err == nil {
		t.Error("expected error for equal times")
	}

	if err := ValidateOrder(nil); err != nil {
		t.Errorf("empty set should be valid: %v", err)
	}
}

func TestCurrentEvent(t *testing.T) {
	day := sampleDay(10)

	if cur := CurrentEvent(day, at(10, 3, 0)); cur != nil {
		t.Errorf("expected nil before Fajr, got %s", cur.Name)
	}
	if cur := CurrentEvent(day, at(10, 18, 2)); cur == nil || cur.Name != "Maghrib" {
		t.Errorf("expected Maghrib at its own time, got %v", cur)
	}
	if cur := CurrentEvent(day, at(10, 23, 0)); cur == nil || cur.Name != "Isha" {
		t.Errorf("expected Isha late at night, got %v", cur)
	}
}
