package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Location is a position estimated from the public IP address.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

// Coordinate returns the detected position as a Coordinate.
func (l Location) Coordinate() Coordinate {
	return Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// DefaultIPLocatorURL is ip-api.com's free endpoint. It needs no key.
const DefaultIPLocatorURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country,timezone"

// IPLocator looks up the caller's position by public IP.
type IPLocator struct {
	URL    string
	Client *http.Client
}

var defaultLocator = &IPLocator{URL: DefaultIPLocatorURL, Client: &http.Client{Timeout: 5 * time.Second}}

// DetectLocation asks ip-api.com where the caller is.
func DetectLocation(ctx context.Context) (*Location, error) {
	return defaultLocator.Detect(ctx)
}

// Detect performs one lookup. Every failure is a SensorError of kind
// Unavailable; IP lookups cannot be refused by the user.
func (l *IPLocator) Detect(ctx context.Context) (*Location, error) {
	url := l.URL
	if url == "" {
		url = DefaultIPLocatorURL
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building geolocation request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, unavailable("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("geolocation API returned status %d", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Location
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, unavailable("failed to decode geolocation response: %w", err)
	}
	if body.Status != "success" {
		return nil, unavailable("geolocation failed: %s", body.Message)
	}
	if err := body.Coordinate().Validate(); err != nil {
		return nil, unavailable("geolocation returned %w", err)
	}

	loc := body.Location
	return &loc, nil
}

func unavailable(format string, args ...any) error {
	return &SensorError{Kind: Unavailable, Err: fmt.Errorf(format, args...)}
}
