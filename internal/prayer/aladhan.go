package prayer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-locator/internal/api"
	"github.com/smokyabdulrahman/prayer-locator/internal/cache"
)

// Day is one date of events plus the calendar details the API returns.
type Day struct {
	Date   time.Time
	Events []Event
	// Gregorian and Hijri are the API's own date labels; either may be empty.
	Gregorian string
	Hijri     string
	Timezone  string
	Method    string
}

// AladhanOptions configures an AladhanProvider.
type AladhanOptions struct {
	Method int // -1 for the API default
	School int // -1 for the API default
	// Names selects and orders the events; nil means DefaultPrayerNames.
	Names []string
	// Store is optional. When nil every call hits the API.
	Store  cache.Store
	Logger zerolog.Logger
}

// AladhanProvider computes events through the Al Adhan API, reading and
// filling the cache on the way.
type AladhanProvider struct {
	client *api.Client
	opts   AladhanOptions
}

// NewAladhanProvider returns a Provider backed by client.
func NewAladhanProvider(client *api.Client, opts AladhanOptions) *AladhanProvider {
	if len(opts.Names) == 0 {
		opts.Names = DefaultPrayerNames
	}
	return &AladhanProvider{client: client, opts: opts}
}

// Events implements Provider.
func (p *AladhanProvider) Events(ctx context.Context, loc Location, date time.Time) ([]Event, error) {
	day, err := p.Day(ctx, loc, date)
	if err != nil {
		return nil, err
	}
	return day.Events, nil
}

// Day fetches the full day for loc, including the Hijri date.
func (p *AladhanProvider) Day(ctx context.Context, loc Location, date time.Time) (*Day, error) {
	if loc.Coordinate.IsZero() && (loc.City == "" || loc.Country == "") {
		return nil, &CalculationError{Reason: UnsupportedLocation, Location: loc, Err: errors.New("no coordinate or city/country")}
	}
	if !loc.Coordinate.IsZero() {
		if err := loc.Coordinate.Validate(); err != nil {
			return nil, &CalculationError{Reason: UnsupportedLocation, Location: loc, Err: err}
		}
	}

	key := cache.TimingsKey{
		Date:      date,
		Latitude:  loc.Coordinate.Latitude,
		Longitude: loc.Coordinate.Longitude,
		City:      loc.City,
		Country:   loc.Country,
		Method:    p.opts.Method,
		School:    p.opts.School,
	}
	log := p.opts.Logger.With().Str("location", loc.String()).Str("date", date.Format("2006-01-02")).Logger()

	var entry *cache.TimingsEntry
	if p.opts.Store != nil {
		entry = p.opts.Store.LoadTimings(ctx, key)
	}
	if entry == nil {
		resp, err := p.fetch(ctx, loc, date)
		if err != nil {
			return nil, classify(loc, err)
		}
		if p.opts.Store != nil {
			if err := p.opts.Store.SaveTimings(ctx, key, resp); err != nil {
				log.Warn().Err(err).Msg("failed to cache timings")
			}
		}
		entry = &cache.TimingsEntry{Timings: resp.Data.Timings, Meta: resp.Data.Meta, DateInfo: resp.Data.Date}
	} else {
		log.Debug().Msg("timings served from cache")
	}

	tz := resolveTimezone(loc.Timezone, entry.Meta.Timezone)
	events, err := ParseTimings(entry.Timings, date, tz, p.opts.Names)
	if err != nil {
		return nil, &CalculationError{Reason: UnsupportedLocation, Location: loc, Err: err}
	}
	if err := ValidateOrder(events); err != nil {
		return nil, &CalculationError{Reason: UnsupportedLocation, Location: loc, Err: err}
	}

	return &Day{
		Date:      date,
		Events:    events,
		Gregorian: entry.DateInfo.Gregorian.Format(),
		Hijri:     entry.DateInfo.Hijri.Format(),
		Timezone:  tz.String(),
		Method:    entry.Meta.Method.Name,
	}, nil
}

func (p *AladhanProvider) fetch(ctx context.Context, loc Location, date time.Time) (*api.Response, error) {
	if !loc.Coordinate.IsZero() {
		return p.client.FetchByCoordinates(ctx, date, loc.Coordinate.Latitude, loc.Coordinate.Longitude, p.opts.Method, p.opts.School)
	}
	return p.client.FetchByCity(ctx, date, loc.City, loc.Country, p.opts.Method, p.opts.School)
}

// classify maps API failures onto CalculationError reasons. A 400 means the
// API rejected the location; anything else is treated as transient.
func classify(loc Location, err error) error {
	var se *api.StatusError
	if errors.As(err, &se) && se.Code == http.StatusBadRequest {
		return &CalculationError{Reason: UnsupportedLocation, Location: loc, Err: err}
	}
	return &CalculationError{Reason: Unavailable, Location: loc, Err: fmt.Errorf("fetching timings: %w", err)}
}

// resolveTimezone prefers the caller's zone, then the API's, then local time.
func resolveTimezone(names ...string) *time.Location {
	for _, name := range names {
		if name == "" {
			continue
		}
		if tz, err := time.LoadLocation(name); err == nil {
			return tz
		}
	}
	return time.Local
}
