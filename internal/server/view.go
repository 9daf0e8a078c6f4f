package server

import (
	"errors"
	"time"

	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
	"github.com/smokyabdulrahman/prayer-locator/internal/geocode"
	"github.com/smokyabdulrahman/prayer-locator/internal/locator"
	"github.com/smokyabdulrahman/prayer-locator/internal/prayer"
)

// View is the JSON form of a snapshot. Errors are flattened to strings.
type View struct {
	Generation       uint64          `json:"generation"`
	Coordinate       *geo.Coordinate `json:"coordinate,omitempty"`
	Status           locator.Status  `json:"status"`
	Loading          bool            `json:"loading"`
	Address          AddressView     `json:"address"`
	Times            TimesView       `json:"times"`
	Next             *NextView       `json:"next,omitempty"`
	Error            string          `json:"error,omitempty"`
	ErrorKind        string          `json:"error_kind,omitempty"`
	SensorError      string          `json:"sensor_error,omitempty"`
	PermissionDenied bool            `json:"permission_denied"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}

type AddressView struct {
	Status  locator.Status   `json:"status"`
	Address *geocode.Address `json:"address,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type TimesView struct {
	Status   locator.Status `json:"status"`
	Today    []prayer.Event `json:"today,omitempty"`
	Tomorrow []prayer.Event `json:"tomorrow,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type NextView struct {
	Name             string    `json:"name"`
	Time             time.Time `json:"time"`
	Remaining        string    `json:"remaining"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// NewView flattens s for the wire.
func NewView(s locator.Snapshot) View {
	v := View{
		Generation:       s.Generation,
		Status:           s.Status,
		Loading:          s.Loading,
		Address:          AddressView{Status: s.Address.Status, Address: s.Address.Address, Error: errString(s.Address.Err)},
		Times:            TimesView{Status: s.Times.Status, Today: s.Times.Today, Tomorrow: s.Times.Tomorrow, Error: errString(s.Times.Err)},
		Error:            errString(s.Err),
		SensorError:      errString(s.SensorErr),
		PermissionDenied: s.PermissionDenied(),
	}
	if s.HasCoordinate {
		c := s.Coordinate
		v.Coordinate = &c
	}
	if s.Next != nil {
		v.Next = &NextView{
			Name:             s.Next.Event.Name,
			Time:             s.Next.Event.Time,
			Remaining:        prayer.FormatRemaining(s.Next.Remaining),
			RemainingSeconds: int64(s.Next.Remaining / time.Second),
		}
	}
	if s.Err != nil {
		v.ErrorKind = errorKind(s.Err)
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		v.UpdatedAt = &t
	}
	return v
}

func errorKind(err error) string {
	var ge *geocode.Error
	if errors.As(err, &ge) {
		return "geocode." + ge.Kind.String()
	}
	var ce *prayer.CalculationError
	if errors.As(err, &ce) {
		return "prayer." + ce.Reason.String()
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
