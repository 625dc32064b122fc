package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/weather-records/internal/infra/config"
	"github.com/yanqian/weather-records/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, collector *metrics.Collector) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		metricsMiddleware(collector),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/autocomplete/:query", handler.Autocomplete)

		weather := api.Group("/weather")
		weather.GET("/current/:location", handler.CurrentWeather)
		weather.GET("/forecast/:location", handler.Forecast)
		weather.GET("/coordinates/:lat/:lon", handler.Coordinates)

		recordsGroup := api.Group("/weather-records")
		recordsGroup.POST("", handler.CreateRecord)
		recordsGroup.GET("", handler.ListRecords)
		recordsGroup.GET("/export/json", handler.ExportJSON)
		recordsGroup.GET("/export/csv", handler.ExportCSV)
		recordsGroup.GET("/:id", handler.GetRecord)
		recordsGroup.PUT("/:id", handler.UpdateRecord)
		recordsGroup.DELETE("/:id", handler.DeleteRecord)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
