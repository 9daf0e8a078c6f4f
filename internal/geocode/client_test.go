package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
)

// mentengResponse mirrors what Nominatim returns for central Jakarta.
func mentengResponse() map[string]any {
	return map[string]any{
		"display_name": "Menteng, Jakarta Pusat, Daerah Khusus Ibukota Jakarta, Indonesia",
		"address": map[string]any{
			"city_district":  "Menteng",
			"city":           "Jakarta",
			"state":          "Daerah Khusus Ibukota Jakarta",
			"country":        "Indonesia",
			"country_code":   "id",
			"ISO3166-2-lvl4": "ID-JK",
			"place_rank":     18,
		},
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(Options{BaseURL: server.URL, Language: "id", Timeout: 2 * time.Second})
}

func TestResolve_Menteng(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "-6.200000" || q.Get("lon") != "106.800000" {
			t.Errorf("lat/lon = %q/%q", q.Get("lat"), q.Get("lon"))
		}
		if q.Get("format") != "jsonv2" {
			t.Errorf("format = %q, want jsonv2", q.Get("format"))
		}
		if got := r.Header.Get("Accept-Language"); got != "id" {
			t.Errorf("Accept-Language = %q, want %q", got, "id")
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mentengResponse())
	})

	addr, err := c.Resolve(context.Background(), geo.Coordinate{Latitude: -6.2, Longitude: 106.8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.District != "Menteng" {
		t.Errorf("District = %q, want %q", addr.District, "Menteng")
	}
	if addr.City != "Jakarta" {
		t.Errorf("City = %q, want %q", addr.City, "Jakarta")
	}
	if addr.Street != "" {
		t.Errorf("Street = %q, want empty", addr.Street)
	}
	if addr.Province != "Daerah Khusus Ibukota Jakarta" {
		t.Errorf("Province = %q", addr.Province)
	}
	if addr.Country != "Indonesia" {
		t.Errorf("Country = %q", addr.Country)
	}
	if addr.FullAddress == "" {
		t.Error("FullAddress should carry the display name")
	}
}

func TestResolve_InvalidCoordinateMakesNoCall(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := c.Resolve(context.Background(), geo.Coordinate{Latitude: 95, Longitude: 0})
	if KindOf(err) != Malformed {
		t.Fatalf("expected Malformed, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("provider called %d times, want 0", calls)
	}
}

func TestResolve_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    Kind
	}{
		{
			"rate limited",
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "slow down", http.StatusTooManyRequests)
			},
			RateLimited,
		},
		{
			"server error",
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "oops", http.StatusBadGateway)
			},
			Network,
		},
		{
			"bad request",
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad lat", http.StatusBadRequest)
			},
			Malformed,
		},
		{
			"invalid json",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			Malformed,
		},
		{
			"provider error body",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":"Unable to geocode"}`))
			},
			NoResult,
		},
		{
			"empty record",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"display_name":"  ","address":{}}`))
			},
			NoResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Resolve(context.Background(), geo.Coordinate{Latitude: 1, Longitude: 1})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var ge *Error
			if !errors.As(err, &ge) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if ge.Kind != tt.want {
				t.Errorf("Kind = %v, want %v (err: %v)", ge.Kind, tt.want, err)
			}
		})
	}
}

func TestResolve_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := NewClient(Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Resolve(context.Background(), geo.Coordinate{Latitude: 1, Longitude: 1})
	if KindOf(err) != Network {
		t.Fatalf("expected Network on timeout, got %v", err)
	}
}

func TestResolve_ConnectionRefused(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://127.0.0.1:1"})
	_, err := c.Resolve(context.Background(), geo.Coordinate{Latitude: 1, Longitude: 1})
	if KindOf(err) != Network {
		t.Fatalf("expected Network, got %v", err)
	}
}

func TestResolve_CustomFieldTable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"display_name":"x","address":{"name":"Jalan Sudirman","town":"Bogor"}}`))
	})
	c.fields = FieldTable{Street: []string{"name"}, City: []string{"town"}}

	addr, err := c.Resolve(context.Background(), geo.Coordinate{Latitude: -6.6, Longitude: 106.8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Street != "Jalan Sudirman" || addr.City != "Bogor" {
		t.Errorf("got %+v", addr)
	}
}

func TestKind_Retryable(t *testing.T) {
	for k, want := range map[Kind]bool{Network: true, RateLimited: true, NoResult: false, Malformed: false} {
		if got := k.Retryable(); got != want {
			t.Errorf("%v.Retryable() = %v, want %v", k, got, want)
		}
	}
}
