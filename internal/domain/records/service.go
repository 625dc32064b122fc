package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yanqian/weather-records/internal/domain/enrichment"
	"github.com/yanqian/weather-records/internal/domain/weather"
	apperrors "github.com/yanqian/weather-records/pkg/errors"
	"github.com/yanqian/weather-records/pkg/util"
)

// Service owns record identity, timestamps and validation.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (Record, error)
	List(ctx context.Context, query ListQuery) (Page, error)
	Get(ctx context.Context, id string) (Record, error)
	Update(ctx context.Context, id string, req UpdateRequest) (Record, error)
	Delete(ctx context.Context, id string) (string, error)
	ExportJSON(ctx context.Context) (Export, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	Ping(ctx context.Context) error
}

type service struct {
	weather  weather.Service
	enricher enrichment.Service
	repo     Repository
	archive  Archive
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService builds the record service. archive may be nil.
func NewService(weatherSvc weather.Service, enricher enrichment.Service, repo Repository, archive Archive, logger *slog.Logger) Service {
	return &service{
		weather:  weatherSvc,
		enricher: enricher,
		repo:     repo,
		archive:  archive,
		validate: newValidator(),
		logger:   logger.With("component", "records.service"),
		now:      util.NowUTC,
		newID:    uuid.NewString,
	}
}

// timestamp is the current time at millisecond precision, the finest
// resolution every store backend round-trips.
func (s *service) timestamp() time.Time {
	return s.now().Truncate(time.Millisecond)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (Record, error) {
	if err := s.validate.Struct(req); err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, describeValidation(err), nil)
	}
	dateRange, err := parseRange(req.DateRange.StartDate, req.DateRange.EndDate)
	if err != nil {
		return Record{}, err
	}
	location := strings.TrimSpace(req.Location)

	result, err := s.weather.Snapshot(ctx, location)
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return Record{}, err
		}
		return Record{}, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "weather lookup failed", err)
	}

	aux := enrichment.AuxiliaryData{YouTubeVideos: []enrichment.Video{}, Photos: []enrichment.Photo{}}
	if req.IncludeAdditionalData && s.enricher != nil {
		aux = s.enricher.Enrich(ctx, displayName(result, location))
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	now := s.timestamp()
	record := Record{
		ID:                    s.newID(),
		OriginalLocationQuery: location,
		ResolvedLocation:      result.Location,
		ResolutionMethod:      result.Resolution.Method,
		DateRange:             dateRange,
		WeatherData:           result.Snapshot,
		AdditionalData:        aux,
		Tags:                  normalizeTags(req.Tags),
		IsPublic:              isPublic,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to save weather record", err)
	}
	s.logger.Info("weather record created", "id", record.ID, "location", location, "method", record.ResolutionMethod)
	return record, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (Page, error) {
	query = NormalizeQuery(query)
	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return Page{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to list weather records", err)
	}
	if items == nil {
		items = []Record{}
	}
	return Page{Records: items, Pagination: NewPagination(query.Page, query.Limit, total)}, nil
}

func (s *service) Get(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "record id is required", nil)
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, storeFailure("failed to load weather record", id, err)
	}
	return record, nil
}

// Update applies a partial change. Weather and auxiliary data never change.
func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (Record, error) {
	if err := s.validate.Struct(req); err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, describeValidation(err), nil)
	}
	if req.Location != nil && strings.TrimSpace(*req.Location) == "" {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "location cannot be empty", nil)
	}
	record, err := s.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}

	if req.Location != nil {
		record.OriginalLocationQuery = strings.TrimSpace(*req.Location)
	}
	if req.DateRange != nil {
		if req.DateRange.StartDate != nil {
			start, err := util.ParseDate(*req.DateRange.StartDate)
			if err != nil {
				return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
			}
			record.DateRange.StartDate = start
		}
		if req.DateRange.EndDate != nil {
			end, err := util.ParseDate(*req.DateRange.EndDate)
			if err != nil {
				return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
			}
			record.DateRange.EndDate = end
		}
		if err := checkRange(record.DateRange); err != nil {
			return Record{}, err
		}
	}
	if req.Tags != nil {
		record.Tags = normalizeTags(req.Tags)
	}
	if req.IsPublic != nil {
		record.IsPublic = *req.IsPublic
	}
	record.UpdatedAt = s.timestamp()

	if err := s.repo.Update(ctx, record); err != nil {
		return Record{}, storeFailure("failed to update weather record", record.ID, err)
	}
	s.logger.Info("weather record updated", "id", record.ID)
	return record, nil
}

func (s *service) Delete(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "record id is required", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return "", storeFailure("failed to delete weather record", id, err)
	}
	s.logger.Info("weather record deleted", "id", id)
	return id, nil
}

func (s *service) ExportJSON(ctx context.Context) (Export, error) {
	items, err := s.exportRecords(ctx)
	if err != nil {
		return Export{}, err
	}
	export := Export{ExportDate: s.now(), TotalRecords: len(items), Records: items}
	if s.archive != nil {
		if payload, err := json.MarshalIndent(export, "", "  "); err == nil {
			s.archiveExport(ctx, export.ExportDate, "json", payload, "application/json")
		}
	}
	return export, nil
}

func (s *service) ExportCSV(ctx context.Context) ([]byte, error) {
	items, err := s.exportRecords(ctx)
	if err != nil {
		return nil, err
	}
	payload := EncodeCSV(items)
	s.archiveExport(ctx, s.now(), "csv", payload, "text/csv")
	return payload, nil
}

func (s *service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *service) exportRecords(ctx context.Context) ([]Record, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "failed to export weather records", err)
	}
	if items == nil {
		items = []Record{}
	}
	SortRecords(items, SortByCreatedAt, SortDesc)
	return items, nil
}

// archiveExport is best-effort; failures are logged only.
func (s *service) archiveExport(ctx context.Context, at time.Time, ext string, payload []byte, contentType string) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("weather-records-%s.%s", at.UTC().Format("20060102T150405Z"), ext)
	if err := s.archive.Put(ctx, key, payload, contentType); err != nil {
		s.logger.Warn("export archive failed", "key", key, "error", err)
		return
	}
	s.logger.Info("export archived", "key", key, "bytes", len(payload))
}

func parseRange(startRaw, endRaw string) (DateRange, error) {
	start, err := util.ParseDate(startRaw)
	if err != nil {
		return DateRange{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	end, err := util.ParseDate(endRaw)
	if err != nil {
		return DateRange{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	dr := DateRange{StartDate: start, EndDate: end}
	if err := checkRange(dr); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func checkRange(dr DateRange) error {
	if dr.StartDate.IsZero() || dr.EndDate.IsZero() {
		return nil
	}
	if dr.StartDate.After(dr.EndDate) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "startDate must be on or before endDate", nil)
	}
	return nil
}

func storeFailure(message, id string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("weather record %s not found", id), err)
	}
	return apperrors.Wrap(apperrors.CodeStoreError, message, err)
}

func displayName(result weather.SnapshotResult, fallback string) string {
	if name := strings.TrimSpace(result.Location.Name); name != "" {
		return name
	}
	if addr := strings.TrimSpace(result.Resolution.ResolvedAddress); addr != "" {
		return addr
	}
	return fallback
}

// normalizeTags trims, drops empties and removes duplicates keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
