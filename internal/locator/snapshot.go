package locator

import (
	"fmt"
	"time"

	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
	"github.com/smokyabdulrahman/prayer-locator/internal/geocode"
	"github.com/smokyabdulrahman/prayer-locator/internal/prayer"
)

// Status is the resolution state of a snapshot or one of its facets.
type Status int

const (
	Idle Status = iota
	Resolving
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText lets Status render as its name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AddressFacet tracks reverse geocoding. After a retryable failure Address
// keeps the last value resolved for this generation; after a terminal one
// it is nil.
type AddressFacet struct {
	Status  Status
	Address *geocode.Address
	Err     error
}

// TimesFacet tracks the prayer-time computation. A failed refresh keeps the
// events from the previous successful one within the same generation.
type TimesFacet struct {
	Status   Status
	Today    []prayer.Event
	Tomorrow []prayer.Event
	Err      error
}

// Snapshot is an immutable view of the coordinator's state. A new value is
// built for every transition.
type Snapshot struct {
	Generation    uint64
	Coordinate    geo.Coordinate
	HasCoordinate bool
	Status        Status
	Loading       bool
	Address       AddressFacet
	Times         TimesFacet
	// Next is computed against the clock each time a snapshot is read.
	Next      *prayer.Next
	Err       error
	SensorErr error
	UpdatedAt time.Time
}

// PermissionDenied reports whether automatic refresh is paused because the
// location sensor was refused.
func (s Snapshot) PermissionDenied() bool {
	return geo.IsPermissionDenied(s.SensorErr)
}

// settle derives the overall status and error from the two facets.
func (s *Snapshot) settle() {
	s.Loading = false
	s.Err = nil
	switch {
	case s.Address.Status == Failed && geocode.KindOf(s.Address.Err).Retryable():
		s.Status = Failed
		s.Err = s.Address.Err
	case s.Address.Status == Failed && s.Times.Status == Failed:
		s.Status = Failed
		s.Err = s.Address.Err
	default:
		s.Status = Ready
		if s.Address.Err != nil {
			s.Err = s.Address.Err
		} else if s.Times.Err != nil {
			s.Err = s.Times.Err
		}
	}
}

func (s Snapshot) withNext(now time.Time) Snapshot {
	s.Next = nil
	if n, ok := prayer.SelectNext(s.Times.Today, s.Times.Tomorrow, now); ok {
		s.Next = &n
	}
	return s
}
