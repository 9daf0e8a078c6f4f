package prayer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
)

// Location is what a Provider needs to compute a day of events. Coordinate
// takes precedence; City and Country are used when it is zero.
type Location struct {
	Coordinate geo.Coordinate
	City       string
	Country    string
	// Timezone is an IANA name. Empty means the provider decides.
	Timezone string
}

func (l Location) String() string {
	if !l.Coordinate.IsZero() {
		return l.Coordinate.String()
	}
	return l.City + ", " + l.Country
}

// Provider returns the ordered events for one civil date at a location.
// Implementations must return events strictly ordered by time with one
// event per name.
type Provider interface {
	Events(ctx context.Context, loc Location, date time.Time) ([]Event, error)
}

// Reason classifies a CalculationError.
type Reason int

const (
	// UnsupportedLocation means the provider cannot compute times for the
	// location or date, for example at high latitudes in summer.
	UnsupportedLocation Reason = iota
	// Unavailable means the calculator could not be reached. It is transient.
	Unavailable
)

func (r Reason) String() string {
	switch r {
	case UnsupportedLocation:
		return "unsupported location"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// CalculationError is returned by providers.
type CalculationError struct {
	Reason   Reason
	Location Location
	Err      error
}

func (e *CalculationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("prayer times %s for %s", e.Reason, e.Location)
	}
	return fmt.Sprintf("prayer times %s for %s: %v", e.Reason, e.Location, e.Err)
}

func (e *CalculationError) Unwrap() error { return e.Err }

// IsUnsupported reports whether err is a CalculationError for a location
// outside the provider's domain.
func IsUnsupported(err error) bool {
	var ce *CalculationError
	return errors.As(err, &ce) && ce.Reason == UnsupportedLocation
}
