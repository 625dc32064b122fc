package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yanqian/weather-records/internal/domain/geo"
)

// Method names the strategy that resolved a location.
type Method string

const (
	MethodLandmark    Method = "landmark_mapping"
	MethodDirect      Method = "direct_weather_api"
	MethodGeocoded    Method = "geocoded"
	MethodCoordinates Method = "coordinates"
)

// MaxForecastDays caps the collapsed daily forecast.
const MaxForecastDays = 5

// ErrPlaceNotFound is returned by providers when the place is not recognized.
var ErrPlaceNotFound = errors.New("place not found")

// PlaceRef addresses the weather provider either by place name or by coordinates.
type PlaceRef struct {
	Name        string
	Coordinates *geo.Coordinates
}

// ByName references a place by its search term.
func ByName(name string) PlaceRef {
	return PlaceRef{Name: name}
}

// ByCoordinates references a place by position.
func ByCoordinates(c geo.Coordinates) PlaceRef {
	return PlaceRef{Coordinates: &c}
}

func (r PlaceRef) String() string {
	if r.Coordinates != nil {
		return fmt.Sprintf("%.4f,%.4f", r.Coordinates.Lat, r.Coordinates.Lon)
	}
	return r.Name
}

// CurrentConditions is the normalized current observation in metric units.
type CurrentConditions struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	WindSpeed   float64 `json:"windSpeed"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// ResolvedLocation is the place the provider actually matched.
type ResolvedLocation struct {
	Name        string           `json:"name"`
	Country     string           `json:"country"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
}

// Observation is a provider answer for current conditions.
type Observation struct {
	Location   ResolvedLocation
	Conditions CurrentConditions
	ObservedAt time.Time
}

// ForecastPoint is one sub-day provider forecast entry.
type ForecastPoint struct {
	Timestamp   time.Time
	DateText    string
	Temperature float64
	Description string
	Icon        string
}

// ForecastSeries is a provider answer for the forecast endpoint.
type ForecastSeries struct {
	Location ResolvedLocation
	Points   []ForecastPoint
}

// ForecastDay is one collapsed calendar day.
type ForecastDay struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// Snapshot is the weather captured for a record.
type Snapshot struct {
	Current  CurrentConditions `json:"current"`
	Forecast []ForecastDay     `json:"forecast"`
}

// Provider is the external weather data source. Units are always metric.
type Provider interface {
	Current(ctx context.Context, ref PlaceRef) (Observation, error)
	Forecast(ctx context.Context, ref PlaceRef) (ForecastSeries, error)
}

// Landmarks maps landmark queries to provider search terms.
type Landmarks interface {
	Resolve(query string) (string, bool)
}

// Resolution describes how a free-text query was resolved.
type Resolution struct {
	Method          Method   `json:"method"`
	OriginalQuery   string   `json:"originalQuery"`
	SearchTerm      string   `json:"searchTerm,omitempty"`
	ResolvedAddress string   `json:"resolvedAddress,omitempty"`
	PlaceID         string   `json:"placeId,omitempty"`
	Ref             PlaceRef `json:"-"`
}

// CurrentReport is the answer for current-weather lookups.
type CurrentReport struct {
	CurrentConditions
	Location        ResolvedLocation `json:"location"`
	ObservedAt      time.Time        `json:"observedAt"`
	Method          Method           `json:"-"`
	IsLandmark      bool             `json:"isLandmark,omitempty"`
	LandmarkQuery   string           `json:"landmarkQuery,omitempty"`
	ResolvedTo      string           `json:"resolvedTo,omitempty"`
	IsGeocoded      bool             `json:"isGeocoded,omitempty"`
	OriginalQuery   string           `json:"originalQuery,omitempty"`
	ResolvedAddress string           `json:"resolvedAddress,omitempty"`
	Forecast        []ForecastDay    `json:"forecast,omitempty"`
}

// ForecastReport is the answer for forecast lookups.
type ForecastReport struct {
	Location ResolvedLocation `json:"location"`
	Method   Method           `json:"method"`
	Days     []ForecastDay    `json:"days"`
}

// SnapshotResult is a resolved location with current and forecast weather.
type SnapshotResult struct {
	Resolution Resolution
	Location   ResolvedLocation
	Snapshot   Snapshot
}

// ResolutionError reports that no strategy produced weather for a query.
type ResolutionError struct {
	Query    string
	Attempts []Method
	Err      error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("no weather for %q after %d attempt(s)", e.Query, len(e.Attempts))
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
