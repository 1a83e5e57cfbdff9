package notify

import (
	"fmt"
	"html/template"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Venue is a rink the league plays at
type Venue struct {
	Key     string `yaml:"key"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
}

func (v Venue) GoogleMapsURL() string {
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(v.Address)
}

func (v Venue) WazeURL() string {
	return "https://www.waze.com/ul?q=" + url.QueryEscape(v.Address)
}

func (v Venue) AppleMapsURL() string {
	return "https://maps.apple.com/?address=" + url.QueryEscape(v.Address)
}

// PhoneURL is a tel: link holding only the digits of Phone
func (v Venue) PhoneURL() template.URL {
	var digits strings.Builder
	for _, r := range v.Phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return template.URL("tel:" + digits.String())
}

// Venues maps venue keys to venues
type Venues map[string]Venue

type venuesFile struct {
	Venues []Venue `yaml:"venues"`
}

// LoadVenues reads the venue directory from a yaml file.
func LoadVenues(path string) (Venues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read venues file: %w", err)
	}
	return ParseVenues(data)
}

func ParseVenues(data []byte) (Venues, error) {
	var file venuesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse venues: %w", err)
	}

	venues := make(Venues, len(file.Venues))
	for i, v := range file.Venues {
		if v.Key == "" {
			return nil, fmt.Errorf("venue %d: key is required", i)
		}
		if _, dup := venues[v.Key]; dup {
			return nil, fmt.Errorf("venue %q: duplicate key", v.Key)
		}
		venues[v.Key] = v
	}
	return venues, nil
}

// Lookup returns the venue for key, or nil when the key is empty or unknown.
func (vs Venues) Lookup(key *string) *Venue {
	if key == nil || *key == "" {
		return nil
	}
	v, ok := vs[*key]
	if !ok {
		return nil
	}
	return &v
}
