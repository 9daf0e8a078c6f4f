package prayer

import "time"

// Next is the upcoming event and how long until it starts. It is derived
// from a clock reading and must not be cached past that reading.
type Next struct {
	Event     Event         `json:"event"`
	Remaining time.Duration `json:"remaining"`
}

// SelectNext returns the first event of today strictly after now. When every
// event of today has passed it rolls over to the first event of tomorrow
// that is after now, so Remaining spans midnight. An event equal to now is
// already occurring and is skipped.
//
// ok is false only when neither day offers a candidate.
func SelectNext(today, tomorrow []Event, now time.Time) (Next, bool) {
	if e := NextEvent(today, now); e != nil {
		return Next{Event: *e, Remaining: e.Time.Sub(now)}, true
	}
	if e := NextEvent(tomorrow, now); e != nil {
		return Next{Event: *e, Remaining: e.Time.Sub(now)}, true
	}
	return Next{}, false
}
