package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/weather-records/internal/domain/autocomplete"
	"github.com/yanqian/weather-records/internal/domain/geo"
	"github.com/yanqian/weather-records/internal/domain/health"
	"github.com/yanqian/weather-records/internal/domain/records"
	"github.com/yanqian/weather-records/internal/domain/weather"
	apperrors "github.com/yanqian/weather-records/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	weatherSvc      weather.Service
	autocompleteSvc autocomplete.Service
	recordsSvc      records.Service
	healthSvc       health.Service
	logger          *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(weatherSvc weather.Service, autocompleteSvc autocomplete.Service, recordsSvc records.Service, healthSvc health.Service, logger *slog.Logger) *Handler {
	return &Handler{
		weatherSvc:      weatherSvc,
		autocompleteSvc: autocompleteSvc,
		recordsSvc:      recordsSvc,
		healthSvc:       healthSvc,
		logger:          logger.With("component", "http.handler"),
	}
}

// Autocomplete returns location suggestions for a partial query.
func (h *Handler) Autocomplete(c *gin.Context) {
	predictions, err := h.autocompleteSvc.Suggest(c.Request.Context(), c.Param("query"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "predictions": predictions})
}

// CurrentWeather resolves a free-text location and returns current conditions.
func (h *Handler) CurrentWeather(c *gin.Context) {
	report, err := h.weatherSvc.Current(c.Request.Context(), c.Param("location"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report, "method": report.Method})
}

// Forecast resolves a free-text location and returns up to five daily entries.
func (h *Handler) Forecast(c *gin.Context) {
	report, err := h.weatherSvc.Forecast(c.Request.Context(), c.Param("location"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// Coordinates returns current conditions for an explicit lat/lon pair.
func (h *Handler) Coordinates(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(c.Param("lat")), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(c.Param("lon")), 64)
	if latErr != nil || lonErr != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "latitude and longitude must be numbers", nil))
		return
	}
	includeForecast, _ := strconv.ParseBool(c.Query("includeForecast"))

	report, err := h.weatherSvc.Coordinates(c.Request.Context(), geo.Coordinates{Lat: lat, Lon: lon}, includeForecast)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// Health reports store connectivity and configured integrations.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.healthSvc.Report(c.Request.Context())})
}
