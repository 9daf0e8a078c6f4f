package locator

import (
	"context"

	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
)

// Follow feeds every fix from sensor into c until ctx ends or the sensor
// stops. Sensor errors go to SensorFailed; invalid coordinates are logged
// and skipped.
func Follow(ctx context.Context, c *Coordinator, sensor geo.Sensor) {
	for fix := range sensor.Watch(ctx) {
		if fix.Err != nil {
			c.SensorFailed(fix.Err)
			continue
		}
		if err := c.UpdateCoordinate(fix.Coordinate); err != nil {
			c.log.Warn().Err(err).Stringer("coordinate", fix.Coordinate).Msg("ignoring invalid fix")
		}
	}
}
