package geo

import (
	"context"
	"math"
	"strings"
)

// Place is a single geocoding match.
type Place struct {
	PlaceID     string  `json:"placeId"`
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Geocoder turns free text into ranked place matches.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]Place, error)
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair is finite and inside the WGS84 ranges.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Coordinates returns the place position.
func (p Place) Coordinates() Coordinates {
	return Coordinates{Lat: p.Lat, Lon: p.Lon}
}

// MainText is the provider's short name, or the first comma segment of the
// display name when no short name is given.
func (p Place) MainText() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	head, _, _ := strings.Cut(p.DisplayName, ",")
	return strings.TrimSpace(head)
}

// SecondaryText is everything after the first comma of the display name.
func (p Place) SecondaryText() string {
	_, tail, found := strings.Cut(p.DisplayName, ",")
	if !found {
		return ""
	}
	return strings.TrimSpace(tail)
}
