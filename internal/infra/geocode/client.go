package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/weather-records/internal/domain/enrichment"
	"github.com/yanqian/weather-records/internal/domain/geo"
	"github.com/yanqian/weather-records/pkg/metrics"
)

const (
	defaultBaseURL = "https://geocode.maps.co"
	providerName   = "geocode"
	embedSpan      = 0.01
)

// Client searches the maps.co forward geocoding API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Collector
}

// NewClient builds an API client. collector may be nil.
func NewClient(apiKey, baseURL string, timeout time.Duration, collector *metrics.Collector) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    collector,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search returns up to limit matches, best first.
func (c *Client) Search(ctx context.Context, query string, limit int) (places []geo.Place, err error) {
	defer func() { c.metrics.RecordUpstream(providerName, err) }()

	values := url.Values{}
	values.Set("q", query)
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if c.apiKey != "" {
		values.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("geocode request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	places = normalizeResults(raw)
	if limit > 0 && len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}

// Locate resolves map metadata for a place using the best geocoding match.
func (c *Client) Locate(ctx context.Context, place string) (*enrichment.MapData, error) {
	places, err := c.Search(ctx, place, 1)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, nil
	}
	best := places[0]
	coords := best.Coordinates()
	return &enrichment.MapData{
		Address:     best.DisplayName,
		PlaceID:     best.PlaceID,
		Coordinates: &coords,
		EmbedURL:    embedURL(coords),
	}, nil
}

type searchResult struct {
	PlaceID     flexString `json:"place_id"`
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Lat         flexString `json:"lat"`
	Lon         flexString `json:"lon"`
}

// flexString accepts either a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(data)
	return nil
}

func normalizeResults(raw []searchResult) []geo.Place {
	places := make([]geo.Place, 0, len(raw))
	for _, r := range raw {
		lat, latErr := strconv.ParseFloat(string(r.Lat), 64)
		lon, lonErr := strconv.ParseFloat(string(r.Lon), 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		place := geo.Place{
			PlaceID:     string(r.PlaceID),
			Name:        strings.TrimSpace(r.Name),
			DisplayName: strings.TrimSpace(r.DisplayName),
			Lat:         lat,
			Lon:         lon,
		}
		if !place.Coordinates().Valid() {
			continue
		}
		places = append(places, place)
	}
	return places
}

func embedURL(c geo.Coordinates) string {
	bbox := fmt.Sprintf("%s,%s,%s,%s",
		formatCoord(c.Lon-embedSpan), formatCoord(c.Lat-embedSpan),
		formatCoord(c.Lon+embedSpan), formatCoord(c.Lat+embedSpan))
	values := url.Values{}
	values.Set("bbox", bbox)
	values.Set("layer", "mapnik")
	values.Set("marker", formatCoord(c.Lat)+","+formatCoord(c.Lon))
	return "https://www.openstreetmap.org/export/embed.html?" + values.Encode()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

var (
	_ geo.Geocoder          = (*Client)(nil)
	_ enrichment.MapLocator = (*Client)(nil)
)
