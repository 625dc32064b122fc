package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/weather-records/internal/domain/geo"
	apperrors "github.com/yanqian/weather-records/pkg/errors"
	"github.com/yanqian/weather-records/pkg/metrics"
)

// candidate is a place proposed by one strategy.
type candidate struct {
	method   Method
	ref      PlaceRef
	terminal bool
	term     string
	address  string
	placeID  string
}

// strategy proposes a place for a query or declines with ok=false.
type strategy interface {
	method() Method
	propose(ctx context.Context, query string) (candidate, bool)
}

type landmarkStrategy struct {
	table Landmarks
}

func (landmarkStrategy) method() Method { return MethodLandmark }

// A landmark hit is terminal: if the mapped city fails, later strategies are not tried.
func (s landmarkStrategy) propose(_ context.Context, query string) (candidate, bool) {
	if s.table == nil {
		return candidate{}, false
	}
	city, ok := s.table.Resolve(query)
	if !ok {
		return candidate{}, false
	}
	return candidate{method: MethodLandmark, ref: ByName(city), terminal: true, term: city}, true
}

type directStrategy struct{}

func (directStrategy) method() Method { return MethodDirect }

func (directStrategy) propose(_ context.Context, query string) (candidate, bool) {
	return candidate{method: MethodDirect, ref: ByName(query), term: query}, true
}

type geocodeStrategy struct {
	geocoder geo.Geocoder
	logger   *slog.Logger
}

func (geocodeStrategy) method() Method { return MethodGeocoded }

func (s geocodeStrategy) propose(ctx context.Context, query string) (candidate, bool) {
	if s.geocoder == nil {
		return candidate{}, false
	}
	places, err := s.geocoder.Search(ctx, query, 1)
	if err != nil {
		s.logger.Warn("geocoding fallback failed", "query", query, "error", err)
		return candidate{}, false
	}
	if len(places) == 0 || !places[0].Coordinates().Valid() {
		return candidate{}, false
	}
	best := places[0]
	return candidate{
		method:  MethodGeocoded,
		ref:     ByCoordinates(best.Coordinates()),
		address: best.DisplayName,
		placeID: best.PlaceID,
	}, true
}

// resolver walks the strategies in order; the first candidate whose fetch
// succeeds wins.
type resolver struct {
	strategies []strategy
	metrics    *metrics.Collector
	logger     *slog.Logger
}

func newResolver(landmarks Landmarks, geocoder geo.Geocoder, collector *metrics.Collector, logger *slog.Logger) *resolver {
	return &resolver{
		strategies: []strategy{
			landmarkStrategy{table: landmarks},
			directStrategy{},
			geocodeStrategy{geocoder: geocoder, logger: logger},
		},
		metrics: collector,
		logger:  logger,
	}
}

type fetchFunc func(ctx context.Context, ref PlaceRef) error

func (r *resolver) resolve(ctx context.Context, query string, fetch fetchFunc) (Resolution, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Resolution{}, apperrors.Wrap(apperrors.CodeInvalidInput, "location is required", nil)
	}

	var (
		attempts []Method
		lastErr  error
	)
	for _, st := range r.strategies {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		cand, ok := st.propose(ctx, query)
		if !ok {
			continue
		}
		attempts = append(attempts, cand.method)
		err := fetch(ctx, cand.ref)
		if err == nil {
			r.metrics.RecordResolution(string(cand.method))
			r.logger.Debug("location resolved", "query", query, "method", cand.method, "ref", cand.ref.String())
			return Resolution{
				Method:          cand.method,
				OriginalQuery:   query,
				SearchTerm:      cand.term,
				ResolvedAddress: cand.address,
				PlaceID:         cand.placeID,
				Ref:             cand.ref,
			}, nil
		}
		lastErr = err
		r.logger.Info("resolution strategy failed", "query", query, "method", cand.method, "error", err)
		if cand.terminal {
			break
		}
	}
	return Resolution{}, resolutionFailure(query, attempts, lastErr)
}

func resolutionFailure(query string, attempts []Method, err error) error {
	return apperrors.Wrap(
		apperrors.CodeResolutionFailed,
		fmt.Sprintf("Unable to find weather data for %q. Please check the location name.", query),
		&ResolutionError{Query: query, Attempts: attempts, Err: err},
	)
}
