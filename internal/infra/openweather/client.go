package openweather

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

	"github.com/yanqian/weather-records/internal/domain/geo"
	"github.com/yanqian/weather-records/internal/domain/weather"
	"github.com/yanqian/weather-records/pkg/metrics"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"
	providerName   = "openweather"
)

var errMissingKey = errors.New("openweather api key is not configured")

// Client queries the OpenWeatherMap current and forecast endpoints in metric units.
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

// Current fetches current conditions for a place.
func (c *Client) Current(ctx context.Context, ref weather.PlaceRef) (weather.Observation, error) {
	var raw currentResponse
	if err := c.get(ctx, "/weather", ref, &raw); err != nil {
		return weather.Observation{}, err
	}
	return normalizeCurrent(raw), nil
}

// Forecast fetches the 3-hourly forecast for a place.
func (c *Client) Forecast(ctx context.Context, ref weather.PlaceRef) (weather.ForecastSeries, error) {
	var raw forecastResponse
	if err := c.get(ctx, "/forecast", ref, &raw); err != nil {
		return weather.ForecastSeries{}, err
	}
	return normalizeForecast(raw), nil
}

func (c *Client) get(ctx context.Context, path string, ref weather.PlaceRef, out any) (err error) {
	defer func() { c.metrics.RecordUpstream(providerName, err) }()
	if c.apiKey == "" {
		return errMissingKey
	}

	values := url.Values{}
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")
	if ref.Coordinates != nil {
		values.Set("lat", strconv.FormatFloat(ref.Coordinates.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(ref.Coordinates.Lon, 'f', -1, 64))
	} else {
		name := strings.TrimSpace(ref.Name)
		if name == "" {
			return fmt.Errorf("openweather: empty place reference: %w", weather.ErrPlaceNotFound)
		}
		values.Set("q", name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+values.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build openweather request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openweather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("openweather %s %q: %w", path, ref.String(), weather.ErrPlaceNotFound)
	}
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("openweather request error: status=%d body=%s", resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode openweather response: %w", err)
	}
	return nil
}

type coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type currentResponse struct {
	Coord   *coord      `json:"coord"`
	Weather []condition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Name string `json:"name"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []condition `json:"weather"`
		DtTxt   string      `json:"dt_txt"`
	} `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Coord   *coord `json:"coord"`
	} `json:"city"`
}

func normalizeCurrent(raw currentResponse) weather.Observation {
	cond := firstCondition(raw.Weather)
	obs := weather.Observation{
		Location: weather.ResolvedLocation{
			Name:    raw.Name,
			Country: raw.Sys.Country,
		},
		Conditions: weather.CurrentConditions{
			Temperature: raw.Main.Temp,
			FeelsLike:   raw.Main.FeelsLike,
			Humidity:    raw.Main.Humidity,
			Pressure:    raw.Main.Pressure,
			WindSpeed:   raw.Wind.Speed,
			Description: cond.Description,
			Icon:        cond.Icon,
		},
	}
	obs.Location.Coordinates = toCoordinates(raw.Coord)
	if raw.Dt > 0 {
		obs.ObservedAt = time.Unix(raw.Dt, 0).UTC()
	}
	return obs
}

func normalizeForecast(raw forecastResponse) weather.ForecastSeries {
	points := make([]weather.ForecastPoint, 0, len(raw.List))
	for _, item := range raw.List {
		cond := firstCondition(item.Weather)
		point := weather.ForecastPoint{
			DateText:    item.DtTxt,
			Temperature: item.Main.Temp,
			Description: cond.Description,
			Icon:        cond.Icon,
		}
		if item.Dt > 0 {
			point.Timestamp = time.Unix(item.Dt, 0).UTC()
		}
		points = append(points, point)
	}
	return weather.ForecastSeries{
		Location: weather.ResolvedLocation{
			Name:        raw.City.Name,
			Country:     raw.City.Country,
			Coordinates: toCoordinates(raw.City.Coord),
		},
		Points: points,
	}
}

func firstCondition(items []condition) condition {
	if len(items) == 0 {
		return condition{}
	}
	return items[0]
}

func toCoordinates(c *coord) *geo.Coordinates {
	if c == nil {
		return nil
	}
	out := geo.Coordinates{Lat: c.Lat, Lon: c.Lon}
	if !out.Valid() {
		return nil
	}
	return &out
}

var _ weather.Provider = (*Client)(nil)
