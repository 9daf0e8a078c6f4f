package geocode

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var defaultProfiles []byte

// Profiles maps a provider name to its field preference table.
type Profiles map[string]FieldTable

// DefaultProfiles returns the profiles shipped with the binary.
func DefaultProfiles() (Profiles, error) {
	return ParseProfiles(defaultProfiles)
}

// ParseProfiles decodes a YAML document of the form:
//
//	nominatim:
//	  street: [road, pedestrian]
//	  city: [city, town]
func ParseProfiles(data []byte) (Profiles, error) {
	var p Profiles
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid geocoder profiles: %w", err)
	}
	for name, t := range p {
		if len(t.Street)+len(t.City)+len(t.District)+len(t.Province)+len(t.Country) == 0 {
			return nil, fmt.Errorf("geocoder profile %q has no fields", name)
		}
	}
	return p, nil
}

// LoadProfiles merges the profiles in path over the defaults. A missing
// file is not an error; an empty path returns the defaults.
func LoadProfiles(path string) (Profiles, error) {
	p, err := DefaultProfiles()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read geocoder profiles: %w", err)
	}

	custom, err := ParseProfiles(data)
	if err != nil {
		return nil, err
	}
	for name, t := range custom {
		p[name] = t
	}
	return p, nil
}

// Lookup returns the table for name.
func (p Profiles) Lookup(name string) (FieldTable, error) {
	t, ok := p[name]
	if !ok {
		return FieldTable{}, fmt.Errorf("unknown geocoder profile %q; available: %v", name, p.Names())
	}
	return t, nil
}

// Names returns the profile names in sorted order.
func (p Profiles) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
