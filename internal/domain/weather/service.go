package weather

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/weather-records/internal/domain/geo"
	apperrors "github.com/yanqian/weather-records/pkg/errors"
	"github.com/yanqian/weather-records/pkg/metrics"
)

// Service resolves locations and fetches their weather.
type Service interface {
	Current(ctx context.Context, query string) (CurrentReport, error)
	Forecast(ctx context.Context, query string) (ForecastReport, error)
	Coordinates(ctx context.Context, coords geo.Coordinates, includeForecast bool) (CurrentReport, error)
	Snapshot(ctx context.Context, query string) (SnapshotResult, error)
}

type service struct {
	provider Provider
	resolver *resolver
	logger   *slog.Logger
}

// NewService wires the resolution chain around a weather provider.
func NewService(landmarks Landmarks, provider Provider, geocoder geo.Geocoder, collector *metrics.Collector, logger *slog.Logger) Service {
	logger = logger.With("component", "weather.service")
	return &service{
		provider: provider,
		resolver: newResolver(landmarks, geocoder, collector, logger),
		logger:   logger,
	}
}

func (s *service) Current(ctx context.Context, query string) (CurrentReport, error) {
	var obs Observation
	res, err := s.resolver.resolve(ctx, query, func(ctx context.Context, ref PlaceRef) error {
		var err error
		obs, err = s.provider.Current(ctx, ref)
		return err
	})
	if err != nil {
		return CurrentReport{}, err
	}
	return buildCurrentReport(res, obs), nil
}

func (s *service) Forecast(ctx context.Context, query string) (ForecastReport, error) {
	var series ForecastSeries
	res, err := s.resolver.resolve(ctx, query, func(ctx context.Context, ref PlaceRef) error {
		var err error
		series, err = s.provider.Forecast(ctx, ref)
		return err
	})
	if err != nil {
		return ForecastReport{}, err
	}
	return ForecastReport{
		Location: series.Location,
		Method:   res.Method,
		Days:     CollapseForecast(series.Points),
	}, nil
}

// Coordinates bypasses the resolution chain. The optional forecast is looked up
// by the place name the provider returned, which may pick a nearby locality.
func (s *service) Coordinates(ctx context.Context, coords geo.Coordinates, includeForecast bool) (CurrentReport, error) {
	if !coords.Valid() {
		return CurrentReport{}, apperrors.Wrap(apperrors.CodeInvalidInput, "latitude must be within [-90,90] and longitude within [-180,180]", nil)
	}
	obs, err := s.provider.Current(ctx, ByCoordinates(coords))
	if err != nil {
		return CurrentReport{}, providerFailure("Invalid coordinates or API error", err)
	}
	report := buildCurrentReport(Resolution{Method: MethodCoordinates}, obs)
	if !includeForecast {
		return report, nil
	}

	ref := ByCoordinates(coords)
	if name := strings.TrimSpace(obs.Location.Name); name != "" {
		ref = ByName(name)
	}
	series, err := s.provider.Forecast(ctx, ref)
	if err != nil {
		return CurrentReport{}, providerFailure("Forecast not available for this location", err)
	}
	report.Forecast = CollapseForecast(series.Points)
	return report, nil
}

// Snapshot resolves the query and fetches current conditions and forecast
// concurrently. Both must succeed for a candidate to win.
func (s *service) Snapshot(ctx context.Context, query string) (SnapshotResult, error) {
	var (
		obs    Observation
		series ForecastSeries
	)
	res, err := s.resolver.resolve(ctx, query, func(ctx context.Context, ref PlaceRef) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			obs, err = s.provider.Current(gctx, ref)
			return err
		})
		g.Go(func() error {
			var err error
			series, err = s.provider.Forecast(gctx, ref)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return SnapshotResult{}, err
	}
	return SnapshotResult{
		Resolution: res,
		Location:   obs.Location,
		Snapshot: Snapshot{
			Current:  obs.Conditions,
			Forecast: CollapseForecast(series.Points),
		},
	}, nil
}

func buildCurrentReport(res Resolution, obs Observation) CurrentReport {
	report := CurrentReport{
		CurrentConditions: obs.Conditions,
		Location:          obs.Location,
		ObservedAt:        obs.ObservedAt,
		Method:            res.Method,
	}
	switch res.Method {
	case MethodLandmark:
		report.IsLandmark = true
		report.LandmarkQuery = res.OriginalQuery
		report.ResolvedTo = res.SearchTerm
	case MethodGeocoded:
		report.IsGeocoded = true
		report.OriginalQuery = res.OriginalQuery
		report.ResolvedAddress = res.ResolvedAddress
	}
	return report
}

func providerFailure(message string, err error) error {
	if errors.Is(err, ErrPlaceNotFound) {
		return apperrors.Wrap(apperrors.CodeResolutionFailed, message, err)
	}
	return apperrors.Wrap(apperrors.CodeUpstreamUnavailable, message, err)
}
