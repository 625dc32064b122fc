package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/weather-records/internal/domain/enrichment"
	"github.com/yanqian/weather-records/internal/domain/geo"
	"github.com/yanqian/weather-records/internal/domain/weather"
	apperrors "github.com/yanqian/weather-records/pkg/errors"
)

var fixedNow = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

func TestCreateLandmarkRecord(t *testing.T) {
	weatherStub := &stubWeather{
		snapshotFn: func(query string) (weather.SnapshotResult, error) {
			require.Equal(t, "eiffel tower", query)
			return parisSnapshot(), nil
		},
	}
	enricher := &stubEnricher{}
	svc := newServiceUnderTest(weatherStub, enricher, newFakeRepo())

	record, err := svc.Create(context.Background(), CreateRequest{
		Location:  "eiffel tower",
		DateRange: DateRangeInput{StartDate: "2024-06-01", EndDate: "2024-06-07"},
	})
	require.NoError(t, err)
	require.Equal(t, "rec-1", record.ID)
	require.Equal(t, "eiffel tower", record.OriginalLocationQuery)
	require.Equal(t, "Paris", record.ResolvedLocation.Name)
	require.Equal(t, "FR", record.ResolvedLocation.Country)
	require.Equal(t, weather.MethodLandmark, record.ResolutionMethod)
	require.True(t, record.IsPublic)
	require.Equal(t, fixedNow, record.CreatedAt)
	require.Equal(t, fixedNow, record.UpdatedAt)
	require.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), record.DateRange.StartDate)
	require.Equal(t, 0, enricher.calls)
	require.Empty(t, record.AdditionalData.YouTubeVideos)

	stored, err := svc.Get(context.Background(), record.ID)
	require.NoError(t, err)
	require.Equal(t, record, stored)
}

func TestTimestampsAreMillisecondPrecision(t *testing.T) {
	weatherStub := &stubWeather{
		snapshotFn: func(string) (weather.SnapshotResult, error) { return parisSnapshot(), nil },
	}
	svc := newServiceUnderTest(weatherStub, &stubEnricher{}, newFakeRepo())
	svc.now = func() time.Time { return fixedNow.Add(123456789 * time.Nanosecond) }

	record, err := svc.Create(context.Background(), CreateRequest{
		Location:  "eiffel tower",
		DateRange: DateRangeInput{StartDate: "2024-06-01", EndDate: "2024-06-07"},
	})
	require.NoError(t, err)
	want := fixedNow.Add(123 * time.Millisecond)
	require.Equal(t, want, record.CreatedAt)
	require.Equal(t, want, record.UpdatedAt)

	svc.now = func() time.Time { return fixedNow.Add(time.Hour + 999999*time.Nanosecond) }
	updated, err := svc.Update(context.Background(), record.ID, UpdateRequest{Tags: []string{"later"}})
	require.NoError(t, err)
	require.Equal(t, fixedNow.Add(time.Hour), updated.UpdatedAt)
}

func TestCreateDateRangeValidation(t *testing.T) {
	svc := newServiceUnderTest(&stubWeather{snapshotFn: okSnapshot}, nil, newFakeRepo())

	_, err := svc.Create(context.Background(), CreateRequest{
		Location:  "Paris",
		DateRange: DateRangeInput{StartDate: "2024-06-08", EndDate: "2024-06-07"},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Contains(t, err.Error(), "startDate must be on or before endDate")

	_, err = svc.Create(context.Background(), CreateRequest{
		Location:  "Paris",
		DateRange: DateRangeInput{StartDate: "2024-06-07", EndDate: "2024-06-07"},
	})
	require.NoError(t, err)
}

func TestCreateRequiredFields(t *testing.T) {
	svc := newServiceUnderTest(&stubWeather{snapshotFn: okSnapshot}, nil, newFakeRepo())

	_, err := svc.Create(context.Background(), CreateRequest{
		Location:  "   ",
		DateRange: DateRangeInput{StartDate: "2024-06-01"},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Contains(t, err.Error(), "location is required")
	require.Contains(t, err.Error(), "dateRange.endDate is required")

	_, err = svc.Create(context.Background(), CreateRequest{
		Location:  "Paris",
		DateRange: DateRangeInput{StartDate: "01/06/2024", EndDate: "2024-06-07"},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Contains(t, err.Error(), "dateRange.startDate must be formatted as YYYY-MM-DD")
}

func TestCreateResolutionFailurePassesThrough(t *testing.T) {
	weatherStub := &stubWeather{snapshotFn: func(string) (weather.SnapshotResult, error) {
		return weather.SnapshotResult{}, apperrors.Wrap(apperrors.CodeResolutionFailed, `Unable to find weather data for "Qwzxy".`, nil)
	}}
	repo := newFakeRepo()
	svc := newServiceUnderTest(weatherStub, nil, repo)

	_, err := svc.Create(context.Background(), CreateRequest{
		Location:  "Qwzxy",
		DateRange: DateRangeInput{StartDate: "2024-06-01", EndDate: "2024-06-02"},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeResolutionFailed))
	require.Empty(t, repo.items)
}

func TestCreateWithAdditionalData(t *testing.T) {
	enricher := &stubEnricher{data: enrichment.AuxiliaryData{
		YouTubeVideos: []enrichment.Video{},
		MapData:       &enrichment.MapData{Address: "Paris, Île-de-France, France"},
		Photos:        []enrichment.Photo{{URL: "https://img/1"}},
	}}
	svc := newServiceUnderTest(&stubWeather{snapshotFn: okSnapshot}, enricher, newFakeRepo())
	public := false

	record, err := svc.Create(context.Background(), CreateRequest{
		Location:              "eiffel tower",
		DateRange:             DateRangeInput{StartDate: "2024-06-01", EndDate: "2024-06-02"},
		IncludeAdditionalData: true,
		Tags:                  []string{" summer ", "paris", "", "summer"},
		IsPublic:              &public,
	})
	require.NoError(t, err)
	require.Equal(t, 1, enricher.calls)
	require.Equal(t, "Paris", enricher.lastPlace)
	require.Empty(t, record.AdditionalData.YouTubeVideos)
	require.Equal(t, "Paris, Île-de-France, France", record.AdditionalData.MapData.Address)
	require.Len(t, record.AdditionalData.Photos, 1)
	require.Equal(t, []string{"summer", "paris"}, record.Tags)
	require.False(t, record.IsPublic)
}

func TestCreateStoreFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection refused")
	svc := newServiceUnderTest(&stubWeather{snapshotFn: okSnapshot}, nil, repo)

	_, err := svc.Create(context.Background(), CreateRequest{
		Location:  "Paris",
		DateRange: DateRangeInput{StartDate: "2024-06-01", EndDate: "2024-06-02"},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStoreError))
}

func TestListPagination(t *testing.T) {
	repo := newFakeRepo()
	for i := 0; i < 23; i++ {
		repo.items[fmt.Sprintf("id-%02d", i)] = Record{
			ID:                    fmt.Sprintf("id-%02d", i),
			OriginalLocationQuery: "Paris",
			CreatedAt:             fixedNow.Add(time.Duration(i) * time.Minute),
		}
	}
	svc := newServiceUnderTest(nil, nil, repo)

	page, err := svc.List(context.Background(), ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Records, 10)
	require.Equal(t, "id-22", page.Records[0].ID)
	require.Equal(t, Pagination{CurrentPage: 1, TotalPages: 3, TotalRecords: 23, Limit: 10, HasNext: true, HasPrev: false}, page.Pagination)

	page, err = svc.List(context.Background(), ListQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Records, 3)
	require.False(t, page.Pagination.HasNext)
	require.True(t, page.Pagination.HasPrev)

	page, err = svc.List(context.Background(), ListQuery{Page: 4, Limit: 10})
	require.NoError(t, err)
	require.NotNil(t, page.Records)
	require.Empty(t, page.Records)
	require.Equal(t, 3, page.Pagination.TotalPages)

	for _, huge := range []int{math.MaxInt / 5, math.MaxInt/10 + 1, math.MaxInt} {
		page, err = svc.List(context.Background(), ListQuery{Page: huge, Limit: 10})
		require.NoError(t, err, "page=%d", huge)
		require.Empty(t, page.Records)
		require.Equal(t, 23, page.Pagination.TotalRecords)
		require.False(t, page.Pagination.HasNext)
	}
}

func TestListEmptyStore(t *testing.T) {
	svc := newServiceUnderTest(nil, nil, newFakeRepo())

	page, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Empty(t, page.Records)
	require.Equal(t, Pagination{CurrentPage: 1, TotalPages: 0, TotalRecords: 0, Limit: 10}, page.Pagination)
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	repo.items["abc"] = Record{ID: "abc"}
	svc := newServiceUnderTest(nil, nil, repo)

	id, err := svc.Delete(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, "abc", id)

	_, err = svc.Get(context.Background(), "abc")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.Delete(context.Background(), "abc")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestUpdateIsPartial(t *testing.T) {
	repo := newFakeRepo()
	original := Record{
		ID:                    "abc",
		OriginalLocationQuery: "eiffel tower",
		ResolvedLocation:      weather.ResolvedLocation{Name: "Paris", Country: "FR"},
		DateRange:             DateRange{StartDate: day(1), EndDate: day(7)},
		WeatherData:           parisSnapshot().Snapshot,
		Tags:                  []string{"old"},
		IsPublic:              true,
		CreatedAt:             fixedNow.Add(-time.Hour),
		UpdatedAt:             fixedNow.Add(-time.Hour),
	}
	repo.items["abc"] = original
	svc := newServiceUnderTest(nil, nil, repo)

	updated, err := svc.Update(context.Background(), "abc", UpdateRequest{Tags: []string{"new", "new"}})
	require.NoError(t, err)
	require.Equal(t, []string{"new"}, updated.Tags)
	require.Equal(t, fixedNow, updated.UpdatedAt)
	require.Equal(t, original.CreatedAt, updated.CreatedAt)
	require.Equal(t, original.OriginalLocationQuery, updated.OriginalLocationQuery)
	require.Equal(t, original.DateRange, updated.DateRange)
	require.Equal(t, original.WeatherData, updated.WeatherData)
	require.True(t, updated.IsPublic)

	end := "2024-06-03"
	private := false
	location := " Louvre Museum "
	updated, err = svc.Update(context.Background(), "abc", UpdateRequest{
		Location:  &location,
		DateRange: &DateRangePatch{EndDate: &end},
		IsPublic:  &private,
	})
	require.NoError(t, err)
	require.Equal(t, "Louvre Museum", updated.OriginalLocationQuery)
	require.Equal(t, day(1), updated.DateRange.StartDate)
	require.Equal(t, day(3), updated.DateRange.EndDate)
	require.False(t, updated.IsPublic)
	require.Equal(t, "Paris", updated.ResolvedLocation.Name)
}

func TestUpdateRejectsInvertedRange(t *testing.T) {
	repo := newFakeRepo()
	repo.items["abc"] = Record{ID: "abc", DateRange: DateRange{StartDate: day(1), EndDate: day(7)}}
	svc := newServiceUnderTest(nil, nil, repo)

	start := "2024-06-09"
	_, err := svc.Update(context.Background(), "abc", UpdateRequest{DateRange: &DateRangePatch{StartDate: &start}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Equal(t, day(1), repo.items["abc"].DateRange.StartDate)

	empty := "  "
	_, err = svc.Update(context.Background(), "abc", UpdateRequest{Location: &empty})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestUpdateMissingRecord(t *testing.T) {
	svc := newServiceUnderTest(nil, nil, newFakeRepo())

	public := true
	_, err := svc.Update(context.Background(), "missing", UpdateRequest{IsPublic: &public})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestExportJSONNewestFirstAndArchived(t *testing.T) {
	repo := newFakeRepo()
	repo.items["a"] = Record{ID: "a", CreatedAt: fixedNow.Add(-2 * time.Hour)}
	repo.items["b"] = Record{ID: "b", CreatedAt: fixedNow.Add(-time.Hour)}
	repo.items["c"] = Record{ID: "c", CreatedAt: fixedNow.Add(-3 * time.Hour)}
	archive := &stubArchive{}
	svc := newServiceUnderTest(nil, nil, repo)
	svc.archive = archive

	export, err := svc.ExportJSON(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, export.TotalRecords)
	require.Equal(t, fixedNow, export.ExportDate)
	require.Equal(t, []string{"b", "a", "c"}, []string{export.Records[0].ID, export.Records[1].ID, export.Records[2].ID})
	require.Equal(t, []string{"weather-records-20240610T080000Z.json"}, archive.keys)
}

func TestExportArchiveFailureIsIgnored(t *testing.T) {
	repo := newFakeRepo()
	repo.items["a"] = Record{ID: "a", OriginalLocationQuery: "Paris", CreatedAt: fixedNow}
	svc := newServiceUnderTest(nil, nil, repo)
	svc.archive = &stubArchive{err: errors.New("bucket missing")}

	payload, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)
	require.Contains(t, string(payload), `"Paris"`)
}

func TestExportCSVStoreFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("timeout")
	svc := newServiceUnderTest(nil, nil, repo)

	_, err := svc.ExportCSV(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeStoreError))
}

func newServiceUnderTest(weatherSvc weather.Service, enricher enrichment.Service, repo Repository) *service {
	n := 0
	return &service{
		weather:  weatherSvc,
		enricher: enricher,
		repo:     repo,
		validate: newValidator(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      func() time.Time { return fixedNow },
		newID: func() string {
			n++
			return fmt.Sprintf("rec-%d", n)
		},
	}
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func parisSnapshot() weather.SnapshotResult {
	coords := geo.Coordinates{Lat: 48.85, Lon: 2.35}
	return weather.SnapshotResult{
		Resolution: weather.Resolution{Method: weather.MethodLandmark, OriginalQuery: "eiffel tower", SearchTerm: "Paris,FR"},
		Location:   weather.ResolvedLocation{Name: "Paris", Country: "FR", Coordinates: &coords},
		Snapshot: weather.Snapshot{
			Current:  weather.CurrentConditions{Temperature: 21.5, Humidity: 60, Pressure: 1013, Description: "clear sky", Icon: "01d"},
			Forecast: []weather.ForecastDay{{Date: "2024-06-01", Temperature: 22}},
		},
	}
}

func okSnapshot(string) (weather.SnapshotResult, error) {
	return parisSnapshot(), nil
}

type stubWeather struct {
	snapshotFn func(query string) (weather.SnapshotResult, error)
}

func (s *stubWeather) Current(context.Context, string) (weather.CurrentReport, error) {
	return weather.CurrentReport{}, errors.New("not implemented")
}

func (s *stubWeather) Forecast(context.Context, string) (weather.ForecastReport, error) {
	return weather.ForecastReport{}, errors.New("not implemented")
}

func (s *stubWeather) Coordinates(context.Context, geo.Coordinates, bool) (weather.CurrentReport, error) {
	return weather.CurrentReport{}, errors.New("not implemented")
}

func (s *stubWeather) Snapshot(_ context.Context, query string) (weather.SnapshotResult, error) {
	return s.snapshotFn(query)
}

type stubEnricher struct {
	data      enrichment.AuxiliaryData
	calls     int
	lastPlace string
}

func (s *stubEnricher) Enrich(_ context.Context, place string) enrichment.AuxiliaryData {
	s.calls++
	s.lastPlace = place
	return s.data
}

type stubArchive struct {
	keys []string
	err  error
}

func (s *stubArchive) Put(_ context.Context, key string, _ []byte, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, key)
	return nil
}

// fakeRepo is a minimal map-backed repository for service tests.
type fakeRepo struct {
	mu    sync.Mutex
	items map[string]Record
	err   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]Record)}
}

func (r *fakeRepo) Create(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.items[record.ID] = record
	return nil
}

func (r *fakeRepo) List(_ context.Context, q ListQuery) ([]Record, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	var matched []Record
	for _, rec := range r.items {
		if Matches(rec, q) {
			matched = append(matched, rec)
		}
	}
	SortRecords(matched, q.SortBy, q.SortOrder)
	total := len(matched)
	start := q.Offset()
	if start >= total {
		return []Record{}, total, nil
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *fakeRepo) Update(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[record.ID]; !ok {
		return ErrNotFound
	}
	r.items[record.ID] = record
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeRepo) All(_ context.Context) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Record, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].ID, out[j].ID) < 0 })
	return out, nil
}

func (r *fakeRepo) Ping(context.Context) error {
	return r.err
}
