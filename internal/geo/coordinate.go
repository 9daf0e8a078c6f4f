package geo

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the mean Earth radius used for haversine distances.
const earthRadiusMeters = 6371000.0

// Coordinate is a WGS84 position reported by a location sensor.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports whether the coordinate lies within valid lat/long ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Longitude)
	}
	return nil
}

// IsZero reports whether c is the zero value (no fix yet).
func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// String formats the coordinate with four decimal places, e.g. "-6.2000, 106.8000".
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Tracker remembers the last accepted coordinate and filters out sensor
// noise below a minimum distance. The zero value accepts the first fix.
type Tracker struct {
	MinDistance float64 // meters

	last     Coordinate
	haveLast bool
}

// Moved reports whether c is far enough from the last accepted coordinate
// to count as a new position. It records c when it does. The same point
// never counts, even with a zero MinDistance.
func (t *Tracker) Moved(c Coordinate) bool {
	if t.haveLast {
		if d := Distance(t.last, c); d == 0 || d < t.MinDistance {
			return false
		}
	}
	t.last = c
	t.haveLast = true
	return true
}

// Last returns the last accepted coordinate, if any.
func (t *Tracker) Last() (Coordinate, bool) {
	return t.last, t.haveLast
}
