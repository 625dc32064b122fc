package autocomplete

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/yanqian/weather-records/internal/domain/geo"
	apperrors "github.com/yanqian/weather-records/pkg/errors"
)

const (
	defaultMaxResults     = 5
	defaultMinQueryLength = 2
)

// Service composes landmark and geocoding suggestions.
type Service interface {
	Suggest(ctx context.Context, query string) ([]Suggestion, error)
}

type service struct {
	cfg       Config
	landmarks Landmarks
	geocoder  geo.Geocoder
	cache     Cache
	logger    *slog.Logger
}

// NewService builds the composer. cache may be nil.
func NewService(cfg Config, landmarks Landmarks, geocoder geo.Geocoder, cache Cache, logger *slog.Logger) Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = defaultMinQueryLength
	}
	return &service{
		cfg:       cfg,
		landmarks: landmarks,
		geocoder:  geocoder,
		cache:     cache,
		logger:    logger.With("component", "autocomplete.service"),
	}
}

func (s *service) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < s.cfg.MinQueryLength {
		return []Suggestion{}, nil
	}

	if city, ok := s.landmarks.Resolve(query); ok {
		out := []Suggestion{landmarkSuggestion(query, city)}
		places, err := s.search(ctx, query, s.cfg.MaxResults-1)
		if err != nil {
			s.logger.Warn("landmark geocoding enrichment failed", "query", query, "error", err)
			return out, nil
		}
		return append(out, placeSuggestions(places, s.cfg.MaxResults-1)...), nil
	}

	places, err := s.search(ctx, query, s.cfg.MaxResults)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "Autocomplete service temporarily unavailable", err)
	}
	return placeSuggestions(places, s.cfg.MaxResults), nil
}

func (s *service) search(ctx context.Context, query string, limit int) ([]geo.Place, error) {
	if limit <= 0 {
		return nil, nil
	}
	key := cacheKey(query, limit)
	if s.cache != nil {
		places, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("suggestion cache read failed", "key", key, "error", err)
		} else if ok {
			return places, nil
		}
	}

	places, err := s.geocoder.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Set(ctx, key, places, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("suggestion cache write failed", "key", key, "error", err)
		}
	}
	return places, nil
}

func cacheKey(query string, limit int) string {
	return fmt.Sprintf("%d:%s", limit, strings.ToLower(query))
}

func landmarkSuggestion(query, city string) Suggestion {
	return Suggestion{
		Description: fmt.Sprintf("%s (%s)", query, city),
		StructuredFormatting: StructuredFormatting{
			MainText:      query,
			SecondaryText: city,
		},
		IsLandmark:    true,
		OriginalQuery: query,
	}
}

func placeSuggestions(places []geo.Place, limit int) []Suggestion {
	out := make([]Suggestion, 0, len(places))
	for _, p := range places {
		if len(out) == limit {
			break
		}
		lat, lon := p.Lat, p.Lon
		out = append(out, Suggestion{
			Description: p.DisplayName,
			StructuredFormatting: StructuredFormatting{
				MainText:      p.MainText(),
				SecondaryText: p.SecondaryText(),
			},
			Lat:     &lat,
			Lon:     &lon,
			PlaceID: p.PlaceID,
		})
	}
	return out
}
