package autocomplete

import (
	"context"
	"time"

	"github.com/yanqian/weather-records/internal/domain/geo"
)

// Config tunes suggestion composition.
type Config struct {
	MaxResults     int
	MinQueryLength int
	CacheTTL       time.Duration
}

// StructuredFormatting splits a suggestion into a headline and context line.
type StructuredFormatting struct {
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

// Suggestion is one autocomplete prediction.
type Suggestion struct {
	Description          string               `json:"description"`
	StructuredFormatting StructuredFormatting `json:"structured_formatting"`
	IsLandmark           bool                 `json:"is_landmark,omitempty"`
	OriginalQuery        string               `json:"original_query,omitempty"`
	Lat                  *float64             `json:"lat,omitempty"`
	Lon                  *float64             `json:"lon,omitempty"`
	PlaceID              string               `json:"place_id,omitempty"`
}

// Landmarks maps landmark queries to "City,CC" strings.
type Landmarks interface {
	Resolve(query string) (string, bool)
}

// Cache stores geocoding search results keyed by normalized query.
type Cache interface {
	Get(ctx context.Context, key string) ([]geo.Place, bool, error)
	Set(ctx context.Context, key string, places []geo.Place, ttl time.Duration) error
}
