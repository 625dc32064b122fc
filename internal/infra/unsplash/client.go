package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/weather-records/internal/domain/enrichment"
	"github.com/yanqian/weather-records/pkg/metrics"
)

const (
	defaultBaseURL = "https://api.unsplash.com"
	providerName   = "unsplash"
)

var errMissingKey = errors.New("unsplash access key not configured")

// Client searches Unsplash for photos of a place.
type Client struct {
	accessKey  string
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Collector
}

// NewClient builds an Unsplash search client.
func NewClient(accessKey, baseURL string, timeout time.Duration, collector *metrics.Collector) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		accessKey:  strings.TrimSpace(accessKey),
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    collector,
	}
}

// Configured reports whether an access key is present.
func (c *Client) Configured() bool {
	return c.accessKey != ""
}

// SearchPhotos returns up to limit photos matching place.
func (c *Client) SearchPhotos(ctx context.Context, place string, limit int) (photos []enrichment.Photo, err error) {
	if c.accessKey == "" {
		return nil, errMissingKey
	}
	defer func() { c.metrics.RecordUpstream(providerName, err) }()

	values := url.Values{}
	values.Set("query", place)
	values.Set("per_page", strconv.Itoa(limit))
	values.Set("client_id", c.accessKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build unsplash request: %w", err)
	}
	req.Header.Set("Accept-Version", "v1")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("unsplash request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode unsplash response: %w", err)
	}
	return normalizePhotos(decoded, place), nil
}

type searchResponse struct {
	Results []struct {
		Description    *string `json:"description"`
		AltDescription *string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
			Thumb   string `json:"thumb"`
		} `json:"urls"`
	} `json:"results"`
}

func normalizePhotos(resp searchResponse, place string) []enrichment.Photo {
	photos := make([]enrichment.Photo, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.URLs.Regular == "" {
			continue
		}
		caption := place
		switch {
		case r.AltDescription != nil && strings.TrimSpace(*r.AltDescription) != "":
			caption = strings.TrimSpace(*r.AltDescription)
		case r.Description != nil && strings.TrimSpace(*r.Description) != "":
			caption = strings.TrimSpace(*r.Description)
		}
		photos = append(photos, enrichment.Photo{
			URL:          r.URLs.Regular,
			ThumbnailURL: r.URLs.Thumb,
			Caption:      caption,
		})
	}
	return photos
}

var _ enrichment.PhotoSearcher = (*Client)(nil)
