package youtube

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
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"
	providerName   = "youtube"
	watchBaseURL   = "https://www.youtube.com/watch?v="
)

var errMissingKey = errors.New("youtube api key not configured")

// Client searches YouTube for travel videos about a place.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Collector
}

// NewClient builds a YouTube Data API client.
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

// SearchVideos returns up to limit videos for "<place> travel weather".
func (c *Client) SearchVideos(ctx context.Context, place string, limit int) (videos []enrichment.Video, err error) {
	if c.apiKey == "" {
		return nil, errMissingKey
	}
	defer func() { c.metrics.RecordUpstream(providerName, err) }()

	values := url.Values{}
	values.Set("part", "snippet")
	values.Set("type", "video")
	values.Set("q", place+" travel weather")
	values.Set("maxResults", strconv.Itoa(limit))
	values.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build youtube request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("youtube request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode youtube response: %w", err)
	}
	return normalizeVideos(decoded), nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func normalizeVideos(resp searchResponse) []enrichment.Video {
	videos := make([]enrichment.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, enrichment.Video{
			Title:     item.Snippet.Title,
			VideoID:   item.ID.VideoID,
			Thumbnail: pickThumbnail(item.Snippet.Thumbnails),
			WatchURL:  watchBaseURL + item.ID.VideoID,
		})
	}
	return videos
}

func pickThumbnail(thumbs map[string]struct {
	URL string `json:"url"`
}) string {
	for _, size := range []string{"medium", "high", "default"} {
		if t, ok := thumbs[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

var _ enrichment.VideoSearcher = (*Client)(nil)
