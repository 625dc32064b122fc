package autocomplete

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/weather-records/internal/domain/geo"
	apperrors "github.com/yanqian/weather-records/pkg/errors"
)

func TestSuggestShortQuerySkipsUpstream(t *testing.T) {
	geocoder := &stubGeocoder{searchFn: func(string, int) ([]geo.Place, error) {
		t.Fatalf("geocoder must not be called")
		return nil, nil
	}}
	svc := newServiceUnderTest(geocoder, nil)

	for _, q := range []string{"", "p", "  p  "} {
		got, err := svc.Suggest(context.Background(), q)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got)
	}
}

func TestSuggestLandmarkFirst(t *testing.T) {
	geocoder := &stubGeocoder{searchFn: func(q string, limit int) ([]geo.Place, error) {
		require.Equal(t, 4, limit)
		return places(6), nil
	}}
	svc := newServiceUnderTest(geocoder, nil)

	got, err := svc.Suggest(context.Background(), "Eiffel Tower")
	require.NoError(t, err)
	require.Len(t, got, 5)
	require.True(t, got[0].IsLandmark)
	require.Equal(t, "Eiffel Tower (Paris,FR)", got[0].Description)
	require.Equal(t, "Eiffel Tower", got[0].StructuredFormatting.MainText)
	require.Equal(t, "Paris,FR", got[0].StructuredFormatting.SecondaryText)
	require.Equal(t, "Eiffel Tower", got[0].OriginalQuery)
	for _, s := range got[1:] {
		require.False(t, s.IsLandmark)
	}
}

func TestSuggestLandmarkSurvivesGeocoderFailure(t *testing.T) {
	geocoder := &stubGeocoder{searchFn: func(string, int) ([]geo.Place, error) {
		return nil, errors.New("503 service unavailable")
	}}
	svc := newServiceUnderTest(geocoder, nil)

	got, err := svc.Suggest(context.Background(), "eiffel tower")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].IsLandmark)
}

func TestSuggestGeocodingOnly(t *testing.T) {
	geocoder := &stubGeocoder{searchFn: func(q string, limit int) ([]geo.Place, error) {
		require.Equal(t, "spring", q)
		require.Equal(t, 5, limit)
		return []geo.Place{
			{PlaceID: "1", DisplayName: "Springfield, Illinois, United States", Lat: 39.8, Lon: -89.6},
			{PlaceID: "2", Name: "Spring", DisplayName: "Spring, Texas, United States", Lat: 30.1, Lon: -95.4},
		}, nil
	}}
	svc := newServiceUnderTest(geocoder, nil)

	got, err := svc.Suggest(context.Background(), "spring")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Springfield", got[0].StructuredFormatting.MainText)
	require.Equal(t, "Illinois, United States", got[0].StructuredFormatting.SecondaryText)
	require.Equal(t, "Spring", got[1].StructuredFormatting.MainText)
	require.NotNil(t, got[0].Lat)
	require.Equal(t, 39.8, *got[0].Lat)
	require.Equal(t, "1", got[0].PlaceID)
}

func TestSuggestCapsGeocodingResults(t *testing.T) {
	geocoder := &stubGeocoder{searchFn: func(string, int) ([]geo.Place, error) {
		return places(9), nil
	}}
	svc := newServiceUnderTest(geocoder, nil)

	got, err := svc.Suggest(context.Background(), "river")
	require.NoError(t, err)
	require.Len(t, got, 5)
}

func TestSuggestPrimaryFailureIsUpstreamUnavailable(t *testing.T) {
	geocoder := &stubGeocoder{searchFn: func(string, int) ([]geo.Place, error) {
		return nil, errors.New("timeout")
	}}
	svc := newServiceUnderTest(geocoder, nil)

	got, err := svc.Suggest(context.Background(), "river")
	require.Nil(t, got)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamUnavailable))
	require.Contains(t, err.Error(), "Autocomplete service temporarily unavailable")
}

func TestSuggestUsesCache(t *testing.T) {
	calls := 0
	geocoder := &stubGeocoder{searchFn: func(string, int) ([]geo.Place, error) {
		calls++
		return places(2), nil
	}}
	cache := newMapCache()
	svc := newServiceUnderTest(geocoder, cache)

	first, err := svc.Suggest(context.Background(), "River")
	require.NoError(t, err)
	second, err := svc.Suggest(context.Background(), "river")
	require.NoError(t, err)

	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
	require.Contains(t, cache.items, "5:river")
}

func TestSuggestCacheErrorsDoNotFail(t *testing.T) {
	geocoder := &stubGeocoder{searchFn: func(string, int) ([]geo.Place, error) {
		return places(1), nil
	}}
	cache := newMapCache()
	cache.err = errors.New("valkey down")
	svc := newServiceUnderTest(geocoder, cache)

	got, err := svc.Suggest(context.Background(), "river")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func newServiceUnderTest(geocoder geo.Geocoder, cache Cache) Service {
	cfg := Config{MaxResults: 5, MinQueryLength: 2, CacheTTL: time.Minute}
	return NewService(cfg, stubLandmarks{"eiffel tower": "Paris,FR"}, geocoder, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func places(n int) []geo.Place {
	out := make([]geo.Place, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, geo.Place{
			PlaceID:     fmt.Sprint(i),
			DisplayName: fmt.Sprintf("Place %d, Region, Country", i),
			Lat:         float64(i),
			Lon:         float64(i),
		})
	}
	return out
}

type stubLandmarks map[string]string

func (s stubLandmarks) Resolve(query string) (string, bool) {
	city, ok := s[strings.ToLower(strings.TrimSpace(query))]
	return city, ok
}

type stubGeocoder struct {
	searchFn func(query string, limit int) ([]geo.Place, error)
}

func (s *stubGeocoder) Search(_ context.Context, query string, limit int) ([]geo.Place, error) {
	return s.searchFn(query, limit)
}

type mapCache struct {
	items map[string][]geo.Place
	err   error
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string][]geo.Place)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]geo.Place, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	p, ok := c.items[key]
	return p, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, places []geo.Place, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.items[key] = places
	return nil
}
