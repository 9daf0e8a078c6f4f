package geocode

import (
	"strings"
)

// Address is a structured civil address. Any field may be empty.
type Address struct {
	Street      string `json:"street"`
	City        string `json:"city"`
	District    string `json:"district"`
	Province    string `json:"province"`
	Country     string `json:"country"`
	FullAddress string `json:"full_address"`
}

// Short returns "District, City" or whichever of the two is present,
// falling back to the country.
func (a Address) Short() string {
	var parts []string
	if a.District != "" {
		parts = append(parts, a.District)
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if len(parts) == 0 && a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// Record is the loosely structured address a provider returns,
// keyed by provider-specific field names.
type Record map[string]string

// empty reports whether no field carries a non-blank value.
func (r Record) empty() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// first returns the value of the first key in keys that is present and non-blank.
func (r Record) first(keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// FieldTable lists, per logical address attribute, the provider keys to try
// in order of preference.
type FieldTable struct {
	Street   []string `yaml:"street"`
	City     []string `yaml:"city"`
	District []string `yaml:"district"`
	Province []string `yaml:"province"`
	Country  []string `yaml:"country"`
}

// NominatimFields is the preference table for OpenStreetMap Nominatim.
var NominatimFields = FieldTable{
	Street:   []string{"road", "pedestrian", "footway", "street", "residential", "path"},
	City:     []string{"city", "town", "village", "municipality", "county"},
	District: []string{"city_district", "district", "suburb", "borough", "quarter", "neighbourhood"},
	Province: []string{"state", "province", "region"},
	Country:  []string{"country"},
}

// Extract builds an Address from rec using the table. display becomes
// FullAddress; when it is blank, the extracted parts are joined instead.
// Missing attributes yield empty strings.
func (t FieldTable) Extract(rec Record, display string) Address {
	a := Address{
		Street:   rec.first(t.Street),
		City:     rec.first(t.City),
		District: rec.first(t.District),
		Province: rec.first(t.Province),
		Country:  rec.first(t.Country),
	}

	a.FullAddress = strings.TrimSpace(display)
	if a.FullAddress == "" {
		var parts []string
		for _, p := range []string{a.Street, a.District, a.City, a.Province, a.Country} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		a.FullAddress = strings.Join(parts, ", ")
	}
	return a
}
