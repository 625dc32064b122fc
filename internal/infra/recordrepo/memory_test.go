package recordrepo

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/weather-records/internal/domain/records"
	"github.com/yanqian/weather-records/internal/domain/weather"
)

func TestMemoryRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	rec := sampleRecord("a", "Paris", 1)
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "Paris", got.OriginalLocationQuery)

	got.Tags[0] = "mutated"
	again, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"trip"}, again.Tags)

	got.IsPublic = true
	require.NoError(t, repo.Update(ctx, got))
	again, err = repo.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, again.IsPublic)

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err = repo.Get(ctx, "a")
	require.ErrorIs(t, err, records.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "a"), records.ErrNotFound)
	require.ErrorIs(t, repo.Update(ctx, rec), records.ErrNotFound)
}

func TestMemoryRepositoryListFarPageIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for i := 0; i < 6; i++ {
		require.NoError(t, repo.Create(ctx, sampleRecord(fmt.Sprintf("id-%02d", i), "Paris", i)))
	}

	for _, page := range []int{math.MaxInt / 10, math.MaxInt/5 + 1, math.MaxInt} {
		items, total, err := repo.List(ctx, records.ListQuery{Page: page, Limit: 10})
		require.NoError(t, err, "page=%d", page)
		require.Equal(t, 6, total)
		require.Empty(t, items)
	}
}

func TestMemoryRepositoryListPagesAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for i := 0; i < 12; i++ {
		loc := "Paris"
		if i%3 == 0 {
			loc = "London"
		}
		require.NoError(t, repo.Create(ctx, sampleRecord(fmt.Sprintf("id-%02d", i), loc, i)))
	}

	q := records.NormalizeQuery(records.ListQuery{Page: 2, Limit: 5})
	items, total, err := repo.List(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 12, total)
	require.Len(t, items, 5)
	require.Equal(t, "id-06", items[0].ID)

	q = records.NormalizeQuery(records.ListQuery{Location: "lond", Limit: 100})
	items, total, err = repo.List(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 4, total)
	for _, item := range items {
		require.Equal(t, "London", item.OriginalLocationQuery)
	}

	q = records.NormalizeQuery(records.ListQuery{Page: 9, Limit: 5})
	items, total, err = repo.List(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 12, total)
	require.Empty(t, items)
}

func TestMemoryRepositoryAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Create(ctx, sampleRecord("old", "Oslo", 1)))
	require.NoError(t, repo.Create(ctx, sampleRecord("new", "Rome", 5)))

	items, err := repo.All(ctx)
	require.NoError(t, err)
	require.Equal(t, "new", items[0].ID)
	require.Equal(t, "old", items[1].ID)
	require.NoError(t, repo.Ping(ctx))
}

func sampleRecord(id, location string, offsetHours int) records.Record {
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(offsetHours) * time.Hour)
	return records.Record{
		ID:                    id,
		OriginalLocationQuery: location,
		ResolvedLocation:      weather.ResolvedLocation{Name: location},
		DateRange: records.DateRange{
			StartDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC),
		},
		Tags:      []string{"trip"},
		CreatedAt: created,
		UpdatedAt: created,
	}
}
