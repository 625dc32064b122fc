package records

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/weather-records/internal/domain/weather"
)

func TestNormalizeQueryDefaults(t *testing.T) {
	q := NormalizeQuery(ListQuery{Page: -2, Limit: 500, SortBy: "humidity", SortOrder: "sideways", Location: "  paris "})
	require.Equal(t, 1, q.Page)
	require.Equal(t, MaxLimit, q.Limit)
	require.Equal(t, SortByCreatedAt, q.SortBy)
	require.Equal(t, SortDesc, q.SortOrder)
	require.Equal(t, "paris", q.Location)

	q = NormalizeQuery(ListQuery{Page: 2, Limit: 0, SortBy: SortByLocation, SortOrder: SortAsc})
	require.Equal(t, DefaultLimit, q.Limit)
	require.Equal(t, SortByLocation, q.SortBy)
	require.Equal(t, SortAsc, q.SortOrder)
	require.Equal(t, 10, q.Offset())
}

func TestOffsetNeverWraps(t *testing.T) {
	q := NormalizeQuery(ListQuery{Page: math.MaxInt, Limit: 7})
	require.Equal(t, math.MaxInt/7, q.Page)
	require.Positive(t, q.Offset())

	for _, page := range []int{math.MaxInt / 5, math.MaxInt/10 + 1, math.MaxInt} {
		require.Equal(t, math.MaxInt, ListQuery{Page: page, Limit: 100}.Offset(), "page=%d", page)
	}
	require.Equal(t, 0, ListQuery{Page: 0, Limit: 10}.Offset())
}

func TestNewPaginationCeiling(t *testing.T) {
	for _, tc := range []struct {
		total, limit, pages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{99, 100, 1},
		{101, 100, 2},
	} {
		p := NewPagination(1, tc.limit, tc.total)
		require.Equal(t, tc.pages, p.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestMatchesLocationEitherField(t *testing.T) {
	r := Record{
		OriginalLocationQuery: "Eiffel Tower",
		ResolvedLocation:      weather.ResolvedLocation{Name: "Paris"},
	}
	require.True(t, Matches(r, ListQuery{Location: "eiffel"}))
	require.True(t, Matches(r, ListQuery{Location: "PAR"}))
	require.False(t, Matches(r, ListQuery{Location: "london"}))
	require.True(t, Matches(r, ListQuery{}))
}

func TestMatchesStartDateBounds(t *testing.T) {
	r := Record{DateRange: DateRange{StartDate: day(5), EndDate: day(9)}}
	from, to := day(5), day(5)
	require.True(t, Matches(r, ListQuery{StartDate: &from, EndDate: &to}))

	later := day(6)
	require.False(t, Matches(r, ListQuery{StartDate: &later}))

	earlier := day(4)
	require.False(t, Matches(r, ListQuery{EndDate: &earlier}))
}

func TestSortRecords(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Record{
		{ID: "1", OriginalLocationQuery: "tokyo", CreatedAt: base.Add(2 * time.Hour), DateRange: DateRange{StartDate: day(3)}},
		{ID: "2", OriginalLocationQuery: "Berlin", CreatedAt: base, DateRange: DateRange{StartDate: day(1)}},
		{ID: "3", OriginalLocationQuery: "amsterdam", CreatedAt: base.Add(time.Hour), DateRange: DateRange{StartDate: day(2)}},
	}

	SortRecords(items, SortByLocation, SortAsc)
	require.Equal(t, []string{"3", "2", "1"}, ids(items))

	SortRecords(items, SortByCreatedAt, SortDesc)
	require.Equal(t, []string{"1", "3", "2"}, ids(items))

	SortRecords(items, SortByStartDate, SortAsc)
	require.Equal(t, []string{"2", "3", "1"}, ids(items))
}

func TestSortRecordsTieBreaksOnID(t *testing.T) {
	items := []Record{{ID: "b"}, {ID: "c"}, {ID: "a"}}
	SortRecords(items, SortByCreatedAt, SortAsc)
	require.Equal(t, []string{"a", "b", "c"}, ids(items))
}

func ids(items []Record) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.ID
	}
	return out
}
