//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/weather-records/internal/bootstrap"
	"github.com/yanqian/weather-records/internal/domain/autocomplete"
	"github.com/yanqian/weather-records/internal/domain/enrichment"
	"github.com/yanqian/weather-records/internal/domain/geo"
	"github.com/yanqian/weather-records/internal/domain/health"
	"github.com/yanqian/weather-records/internal/domain/landmark"
	"github.com/yanqian/weather-records/internal/domain/records"
	"github.com/yanqian/weather-records/internal/domain/weather"
	"github.com/yanqian/weather-records/internal/infra/config"
	"github.com/yanqian/weather-records/internal/infra/geocode"
	"github.com/yanqian/weather-records/internal/infra/monitor"
	"github.com/yanqian/weather-records/internal/infra/openweather"
	httpiface "github.com/yanqian/weather-records/internal/interface/http"
	"github.com/yanqian/weather-records/pkg/logger"
	"github.com/yanqian/weather-records/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewCollector,
		landmark.NewTable,
		provideWeatherClient,
		provideGeocodeClient,
		provideAutocompleteConfig,
		provideEnrichmentConfig,
		provideVideoSearcher,
		providePhotoSearcher,
		provideMapLocator,
		provideSuggestionCache,
		provideAutocompleteCache,
		provideRecordStore,
		provideRecordRepository,
		provideExportArchive,
		provideArchive,
		provideStoreMonitor,
		provideHealthFeatures,
		weather.NewService,
		autocomplete.NewService,
		enrichment.NewService,
		records.NewService,
		health.NewService,
		wire.Bind(new(weather.Provider), new(*openweather.Client)),
		wire.Bind(new(geo.Geocoder), new(*geocode.Client)),
		wire.Bind(new(weather.Landmarks), new(*landmark.Table)),
		wire.Bind(new(autocomplete.Landmarks), new(*landmark.Table)),
		wire.Bind(new(health.StoreProbe), new(*monitor.StoreMonitor)),
		wire.Bind(new(bootstrap.BackgroundJob), new(*monitor.StoreMonitor)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
