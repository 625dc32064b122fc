package recordrepo

import (
	"context"
	"sync"

	"github.com/yanqian/weather-records/internal/domain/records"
)

// MemoryRepository keeps records in process memory. Used for dev and tests,
// and as the fallback when no database is reachable.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]records.Record
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]records.Record)}
}

// Create implements records.Repository.
func (r *MemoryRepository) Create(_ context.Context, record records.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[record.ID] = cloneRecord(record)
	return nil
}

// List implements records.Repository.
func (r *MemoryRepository) List(_ context.Context, q records.ListQuery) ([]records.Record, int, error) {
	r.mu.RLock()
	matched := make([]records.Record, 0, len(r.items))
	for _, rec := range r.items {
		if records.Matches(rec, q) {
			matched = append(matched, cloneRecord(rec))
		}
	}
	r.mu.RUnlock()

	records.SortRecords(matched, q.SortBy, q.SortOrder)
	total := len(matched)
	start := q.Offset()
	if start >= total {
		return []records.Record{}, total, nil
	}
	end := total
	if q.Limit > 0 && start+q.Limit < total {
		end = start + q.Limit
	}
	return matched[start:end], total, nil
}

// Get implements records.Repository.
func (r *MemoryRepository) Get(_ context.Context, id string) (records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[id]
	if !ok {
		return records.Record{}, records.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// Update implements records.Repository.
func (r *MemoryRepository) Update(_ context.Context, record records.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[record.ID]; !ok {
		return records.ErrNotFound
	}
	r.items[record.ID] = cloneRecord(record)
	return nil
}

// Delete implements records.Repository.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return records.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// All implements records.Repository.
func (r *MemoryRepository) All(_ context.Context) ([]records.Record, error) {
	r.mu.RLock()
	out := make([]records.Record, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, cloneRecord(rec))
	}
	r.mu.RUnlock()
	records.SortRecords(out, records.SortByCreatedAt, records.SortDesc)
	return out, nil
}

// Ping implements records.Repository.
func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

func cloneRecord(rec records.Record) records.Record {
	rec.Tags = append([]string(nil), rec.Tags...)
	return rec
}

var _ records.Repository = (*MemoryRepository)(nil)
