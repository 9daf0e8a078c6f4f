package geo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SensorErrorKind classifies location sensor failures.
type SensorErrorKind int

const (
	// Unavailable means the sensor could not produce a fix right now.
	Unavailable SensorErrorKind = iota
	// PermissionDenied means the user refused location access. Automatic
	// refresh must stop until the user grants it.
	PermissionDenied
)

func (k SensorErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	default:
		return "unavailable"
	}
}

// SensorError is returned by sensors when no coordinate can be produced.
type SensorError struct {
	Kind SensorErrorKind
	Err  error
}

func (e *SensorError) Error() string {
	if e.Err == nil {
		return "location sensor " + e.Kind.String()
	}
	return fmt.Sprintf("location sensor %s: %v", e.Kind, e.Err)
}

func (e *SensorError) Unwrap() error { return e.Err }

// IsPermissionDenied reports whether err is a SensorError of kind PermissionDenied.
func IsPermissionDenied(err error) bool {
	var se *SensorError
	return errors.As(err, &se) && se.Kind == PermissionDenied
}

// Fix is one sensor reading. Exactly one of Coordinate or Err is meaningful.
type Fix struct {
	Coordinate Coordinate
	Err        error
}

// Sensor supplies coordinate updates until ctx is done. The returned channel
// is closed when the sensor stops.
type Sensor interface {
	Watch(ctx context.Context) <-chan Fix
}

// StaticSensor reports a single fixed coordinate, e.g. one given on the
// command line or stored in the config file.
type StaticSensor struct {
	Coordinate Coordinate
}

// Watch emits the configured coordinate once.
func (s StaticSensor) Watch(ctx context.Context) <-chan Fix {
	ch := make(chan Fix, 1)
	if err := s.Coordinate.Validate(); err != nil {
		ch <- Fix{Err: &SensorError{Kind: Unavailable, Err: err}}
	} else {
		ch <- Fix{Coordinate: s.Coordinate}
	}
	close(ch)
	return ch
}

// IPSensor polls IP-based geolocation on an interval and emits a fix only
// when the position moved at least MinDistance meters.
type IPSensor struct {
	Interval    time.Duration
	MinDistance float64

	// detect is swapped in tests.
	detect func(context.Context) (*Location, error)
}

// NewIPSensor returns an IPSensor backed by ip-api.com.
func NewIPSensor(interval time.Duration, minDistance float64) *IPSensor {
	return &IPSensor{Interval: interval, MinDistance: minDistance, detect: DetectLocation}
}

// Watch polls until ctx is cancelled.
func (s *IPSensor) Watch(ctx context.Context) <-chan Fix {
	ch := make(chan Fix, 1)
	interval := s.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	go func() {
		defer close(ch)
		tracker := Tracker{MinDistance: s.MinDistance}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			loc, err := s.detect(ctx)
			var (
				fix  Fix
				emit bool
			)
			switch {
			case err != nil:
				fix, emit = Fix{Err: err}, true
			case tracker.Moved(loc.Coordinate()):
				fix, emit = Fix{Coordinate: loc.Coordinate()}, true
			}
			if emit {
				select {
				case ch <- fix:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return ch
}
