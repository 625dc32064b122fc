package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/weather-records/internal/domain/autocomplete"
	"github.com/yanqian/weather-records/internal/domain/enrichment"
	"github.com/yanqian/weather-records/internal/domain/health"
	"github.com/yanqian/weather-records/internal/domain/records"
	"github.com/yanqian/weather-records/internal/infra/config"
	"github.com/yanqian/weather-records/internal/infra/exportarchive"
	"github.com/yanqian/weather-records/internal/infra/geocode"
	"github.com/yanqian/weather-records/internal/infra/monitor"
	"github.com/yanqian/weather-records/internal/infra/openweather"
	"github.com/yanqian/weather-records/internal/infra/recordrepo"
	"github.com/yanqian/weather-records/internal/infra/suggestcache"
	"github.com/yanqian/weather-records/internal/infra/unsplash"
	"github.com/yanqian/weather-records/internal/infra/youtube"
	"github.com/yanqian/weather-records/pkg/metrics"
)

const (
	backendPostgres = "postgres"
	backendMongo    = "mongo"
	backendMemory   = "memory"
	backendValkey   = "valkey"
	backendR2       = "r2"
)

// recordStore is the selected repository plus the name reported by /health.
type recordStore struct {
	repo    records.Repository
	backend string
}

type suggestionCache struct {
	cache   autocomplete.Cache
	backend string
}

// exportArchive is empty when archiving is disabled.
type exportArchive struct {
	archive records.Archive
	backend string
}

func provideWeatherClient(cfg *config.Config, collector *metrics.Collector) *openweather.Client {
	return openweather.NewClient(cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.Timeout, collector)
}

func provideGeocodeClient(cfg *config.Config, collector *metrics.Collector) *geocode.Client {
	return geocode.NewClient(cfg.Geocode.APIKey, cfg.Geocode.BaseURL, cfg.Geocode.Timeout, collector)
}

func provideAutocompleteConfig(cfg *config.Config) autocomplete.Config {
	return autocomplete.Config{
		CacheTTL: cfg.Geocode.SuggestionCacheTTL,
	}
}

func provideEnrichmentConfig(cfg *config.Config) enrichment.Config {
	return enrichment.Config{
		MaxVideos: cfg.Enrichment.MaxVideos,
		MaxPhotos: cfg.Enrichment.MaxPhotos,
	}
}

func provideVideoSearcher(cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) enrichment.VideoSearcher {
	client := youtube.NewClient(cfg.Enrichment.YouTubeAPIKey, cfg.Enrichment.YouTubeBaseURL, cfg.Enrichment.Timeout, collector)
	if !client.Configured() {
		logger.Info("youtube api key not set, video enrichment disabled")
		return nil
	}
	return client
}

func providePhotoSearcher(cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) enrichment.PhotoSearcher {
	client := unsplash.NewClient(cfg.Enrichment.UnsplashAccessKey, cfg.Enrichment.UnsplashBaseURL, cfg.Enrichment.Timeout, collector)
	if !client.Configured() {
		logger.Info("unsplash access key not set, photo enrichment disabled")
		return nil
	}
	return client
}

func provideMapLocator(client *geocode.Client) enrichment.MapLocator {
	return client
}

func provideSuggestionCache(cfg *config.Config, logger *slog.Logger) (suggestionCache, func()) {
	fallback := suggestionCache{cache: suggestcache.NewMemoryCache(cfg.Geocode.SuggestionCacheTTL), backend: backendMemory}
	if !cfg.Cache.Redis.Enabled {
		return fallback, func() {}
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return fallback, func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return fallback, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return fallback, func() {}
	}
	logger.Info("suggestion valkey cache enabled", "addr", cfg.Cache.Redis.Addr)
	return suggestionCache{cache: suggestcache.NewValkeyCache(client, "weather-records:suggest"), backend: backendValkey}, client.Close
}

func provideAutocompleteCache(sc suggestionCache) autocomplete.Cache {
	return sc.cache
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Redis.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Redis.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Redis.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

// provideRecordStore prefers Postgres, then MongoDB, then memory. A backend
// that cannot be reached at startup falls through to the next one.
func provideRecordStore(cfg *config.Config, logger *slog.Logger) (recordStore, func()) {
	if store, cleanup, ok := openPostgres(cfg, logger); ok {
		return store, cleanup
	}
	if store, cleanup, ok := openMongo(cfg, logger); ok {
		return store, cleanup
	}
	logger.Warn("no database configured or reachable, records are kept in memory")
	return recordStore{repo: recordrepo.NewMemoryRepository(), backend: backendMemory}, func() {}
}

func openPostgres(cfg *config.Config, logger *slog.Logger) (recordStore, func(), bool) {
	dsn := strings.TrimSpace(cfg.Store.Postgres.DSN)
	if dsn == "" {
		return recordStore{}, nil, false
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn", "error", err)
		return recordStore{}, nil, false
	}
	if cfg.Store.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Store.Postgres.MaxConns
	}
	if cfg.Store.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Store.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool", "error", err)
		return recordStore{}, nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed", "error", err)
		pool.Close()
		return recordStore{}, nil, false
	}
	repo := recordrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed", "error", err)
		pool.Close()
		return recordStore{}, nil, false
	}
	logger.Info("postgres record store enabled")
	return recordStore{repo: repo, backend: backendPostgres}, pool.Close, true
}

func openMongo(cfg *config.Config, logger *slog.Logger) (recordStore, func(), bool) {
	uri := strings.TrimSpace(cfg.Store.Mongo.URI)
	if uri == "" {
		return recordStore{}, nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	repo, err := recordrepo.NewMongoRepository(ctx, uri, cfg.Store.Mongo.Database, cfg.Store.Mongo.Collection)
	if err != nil {
		logger.Error("failed to connect mongodb", "error", err)
		return recordStore{}, nil, false
	}
	cleanup := func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		_ = repo.Close(closeCtx)
	}
	if err := repo.Ping(ctx); err != nil {
		logger.Error("mongodb ping failed", "error", err)
		cleanup()
		return recordStore{}, nil, false
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn("mongodb index setup failed", "error", err)
	}
	logger.Info("mongodb record store enabled", "database", cfg.Store.Mongo.Database, "collection", cfg.Store.Mongo.Collection)
	return recordStore{repo: repo, backend: backendMongo}, cleanup, true
}

func provideRecordRepository(store recordStore) records.Repository {
	return store.repo
}

// provideExportArchive uploads to R2 when enabled. If the client cannot be
// built the exports are kept in memory instead.
func provideExportArchive(cfg *config.Config, logger *slog.Logger) exportArchive {
	if !cfg.Archive.Enabled {
		return exportArchive{}
	}
	archive, err := exportarchive.NewR2Archive(
		cfg.Archive.Endpoint,
		cfg.Archive.AccessKey,
		cfg.Archive.SecretKey,
		cfg.Archive.Bucket,
		cfg.Archive.Region,
		cfg.Archive.Prefix,
		logger,
	)
	if err != nil {
		logger.Error("r2 archive unavailable, keeping exports in memory", "error", err)
		return exportArchive{archive: exportarchive.NewMemoryArchive(0), backend: backendMemory}
	}
	logger.Info("export archive enabled", "bucket", cfg.Archive.Bucket)
	return exportArchive{archive: archive, backend: backendR2}
}

func provideArchive(a exportArchive) records.Archive {
	return a.archive
}

func provideStoreMonitor(cfg *config.Config, store recordStore, collector *metrics.Collector, logger *slog.Logger) *monitor.StoreMonitor {
	return monitor.NewStoreMonitor(store.backend, store.repo, cfg.Monitor.HealthInterval, collector, logger)
}

func provideHealthFeatures(weatherClient *openweather.Client, geocodeClient *geocode.Client, videos enrichment.VideoSearcher, photos enrichment.PhotoSearcher, archive exportArchive, cache suggestionCache) health.Features {
	return health.Features{
		Weather:                weatherClient.Configured(),
		Geocoding:              geocodeClient.Configured(),
		Videos:                 videos != nil,
		Photos:                 photos != nil,
		Archive:                archive.archive != nil,
		ArchiveBackend:         archive.backend,
		SuggestionCache:        cache.backend == backendValkey,
		SuggestionCacheBackend: cache.backend,
	}
}
