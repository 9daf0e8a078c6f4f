package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smokyabdulrahman/prayer-locator/internal/display"
	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
	"github.com/smokyabdulrahman/prayer-locator/internal/geocode"
	"github.com/smokyabdulrahman/prayer-locator/internal/locator"
	"github.com/smokyabdulrahman/prayer-locator/internal/prayer"
)

func TestRenderSnapshot(t *testing.T) {
	display.SetEnabled(false)
	t.Cleanup(func() { display.SetEnabled(false) })

	jakarta := geo.Coordinate{Latitude: -6.2, Longitude: 106.8}
	asr := prayer.Event{Name: "Asr", Time: time.Date(2026, 3, 10, 15, 20, 0, 0, time.UTC)}
	menteng := &geocode.Address{District: "Menteng", City: "Jakarta"}

	tests := []struct {
		name string
		snap locator.Snapshot
		want []string
	}{
		{
			name: "waiting",
			snap: locator.Snapshot{},
			want: []string{"waiting for location"},
		},
		{
			name: "sensor failed before first fix",
			snap: locator.Snapshot{SensorErr: &geo.SensorError{Kind: geo.Unavailable, Err: errors.New("no network")}},
			want: []string{"location unavailable"},
		},
		{
			name: "first resolution",
			snap: locator.Snapshot{HasCoordinate: true, Coordinate: jakarta, Loading: true, Status: locator.Resolving},
			want: []string{"resolving", jakarta.String()},
		},
		{
			name: "ready",
			snap: locator.Snapshot{
				HasCoordinate: true, Coordinate: jakarta, Status: locator.Ready,
				Address: locator.AddressFacet{Status: locator.Ready, Address: menteng},
				Next:    &prayer.Next{Event: asr, Remaining: 2*time.Hour + 20*time.Minute},
			},
			want: []string{"Menteng, Jakarta", "Asr 15:20", "in 2h 20m"},
		},
		{
			name: "degraded address falls back to coordinate",
			snap: locator.Snapshot{
				HasCoordinate: true, Coordinate: jakarta, Status: locator.Ready,
				Err:  &geocode.Error{Kind: geocode.NoResult},
				Next: &prayer.Next{Event: asr, Remaining: time.Hour},
			},
			want: []string{jakarta.String(), "warning:", "Asr 15:20"},
		},
		{
			name: "failed",
			snap: locator.Snapshot{
				HasCoordinate: true, Coordinate: jakarta, Status: locator.Failed,
				Err: &geocode.Error{Kind: geocode.Network},
			},
			want: []string{"failed:"},
		},
		{
			name: "permission denied",
			snap: locator.Snapshot{
				HasCoordinate: true, Coordinate: jakarta, Status: locator.Ready,
				SensorErr: &geo.SensorError{Kind: geo.PermissionDenied},
			},
			want: []string{"permission denied", "press Enter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSnapshot(tt.snap, "15:04")
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("renderSnapshot() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestAddressRows_SkipsEmpty(t *testing.T) {
	rows := addressRows(geocode.Address{City: "Jakarta", Country: "Indonesia"})
	if len(rows) != 2 || rows[0][0] != "City" || rows[1][1] != "Indonesia" {
		t.Errorf("rows = %v", rows)
	}
	if got := addressHeadline(geocode.Address{FullAddress: "Somewhere"}); got != "Somewhere" {
		t.Errorf("headline = %q", got)
	}
}
