package exportarchive

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/weather-records/internal/domain/records"
)

const defaultMemoryObjects = 20

// Object is an archived export held in memory.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryArchive keeps the most recent exports in process memory. It stands in
// for R2 when the bucket client cannot be built.
type MemoryArchive struct {
	mu      sync.RWMutex
	limit   int
	order   []string
	objects map[string]Object
}

// NewMemoryArchive keeps at most limit objects, evicting the oldest first.
func NewMemoryArchive(limit int) *MemoryArchive {
	if limit <= 0 {
		limit = defaultMemoryObjects
	}
	return &MemoryArchive{limit: limit, objects: make(map[string]Object)}
}

// Put implements records.Archive.
func (a *MemoryArchive) Put(_ context.Context, key string, data []byte, contentType string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.objects[key]; !ok {
		a.order = append(a.order, key)
	}
	a.objects[key] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	for len(a.order) > a.limit {
		delete(a.objects, a.order[0])
		a.order = a.order[1:]
	}
	return nil
}

// Get returns an archived object.
func (a *MemoryArchive) Get(key string) (Object, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	obj, ok := a.objects[key]
	return obj, ok
}

// Keys lists archived keys in order.
func (a *MemoryArchive) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	keys := append([]string(nil), a.order...)
	sort.Strings(keys)
	return keys
}

var _ records.Archive = (*MemoryArchive)(nil)
