// Package geocode turns coordinates into civil addresses through a
// Nominatim-compatible reverse-geocoding endpoint.
//
// Each Resolve call issues exactly one HTTP request and never retries;
// retry policy belongs to the caller. Field extraction is table-driven so the
// same client works against providers that name address fields differently.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "prayer-locator (+https://github.com/smokyabdulrahman/prayer-locator)"
	defaultTimeout   = 10 * time.Second
)

// Resolver converts a coordinate into an Address.
type Resolver interface {
	Resolve(ctx context.Context, c geo.Coordinate) (Address, error)
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	Language  string // Accept-Language, e.g. "id" or "en"
	UserAgent string
	Timeout   time.Duration
	Fields    *FieldTable
}

// Client talks to a Nominatim-compatible /reverse endpoint.
type Client struct {
	httpClient *http.Client
	// BaseURL is the provider base URL. Exported for testing with httptest.
	BaseURL   string
	language  string
	userAgent string
	fields    FieldTable
}

// NewClient creates a reverse-geocoding client.
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		BaseURL:    strings.TrimRight(opts.BaseURL, "/"),
		language:   opts.Language,
		userAgent:  opts.UserAgent,
		fields:     NominatimFields,
	}
	if c.httpClient.Timeout <= 0 {
		c.httpClient.Timeout = defaultTimeout
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if opts.Fields != nil {
		c.fields = *opts.Fields
	}
	return c
}

// reverseResponse maps the jsonv2 /reverse payload. Address values are kept
// loose because providers mix strings with other JSON types.
type reverseResponse struct {
	DisplayName string         `json:"display_name"`
	Address     map[string]any `json:"address"`
	Error       string         `json:"error"`
}

func (r reverseResponse) record() Record {
	rec := make(Record, len(r.Address))
	for k, v := range r.Address {
		if s, ok := v.(string); ok {
			rec[k] = s
		}
	}
	return rec
}

// Resolve reverse-geocodes c. All failures are *Error.
func (c *Client) Resolve(ctx context.Context, coord geo.Coordinate) (Address, error) {
	if err := coord.Validate(); err != nil {
		return Address{}, &Error{Kind: Malformed, Err: err}
	}

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(coord.Latitude, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(coord.Longitude, 'f', 6, 64))
	params.Set("addressdetails", "1")
	if c.language != "" {
		params.Set("accept-language", c.language)
	}
	reqURL := fmt.Sprintf("%s/reverse?%s", c.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Address{}, newError(Malformed, "building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Address{}, newError(Network, "reverse geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Address{}, newError(RateLimited, "provider returned status %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return Address{}, newError(Network, "provider returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Address{}, newError(Malformed, "provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rr reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return Address{}, newError(Malformed, "failed to decode reverse geocoding response: %w", err)
	}

	if rr.Error != "" {
		return Address{}, newError(NoResult, "%s", rr.Error)
	}
	rec := rr.record()
	if strings.TrimSpace(rr.DisplayName) == "" && rec.empty() {
		return Address{}, newError(NoResult, "empty address for %s", coord)
	}

	return c.fields.Extract(rec, rr.DisplayName), nil
}
