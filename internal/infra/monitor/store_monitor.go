package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yanqian/weather-records/internal/domain/health"
	"github.com/yanqian/weather-records/pkg/metrics"
)

const probeTimeout = 3 * time.Second

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreMonitor periodically pings the record store and remembers the result.
type StoreMonitor struct {
	backend  string
	pinger   Pinger
	interval time.Duration
	metrics  *metrics.Collector
	logger   *slog.Logger

	mu        sync.RWMutex
	connected bool
	checked   bool
	scheduler *gocron.Scheduler
}

// NewStoreMonitor builds a monitor for the named backend.
func NewStoreMonitor(backend string, pinger Pinger, interval time.Duration, collector *metrics.Collector, logger *slog.Logger) *StoreMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StoreMonitor{
		backend:  backend,
		pinger:   pinger,
		interval: interval,
		metrics:  collector,
		logger:   logger.With("component", "monitor.store"),
	}
}

// Start runs an immediate probe and schedules the rest.
func (m *StoreMonitor) Start() error {
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(m.interval).StartImmediately().Do(m.Check); err != nil {
		return err
	}
	scheduler.StartAsync()

	m.mu.Lock()
	m.scheduler = scheduler
	m.mu.Unlock()
	m.logger.Info("store monitor started", "backend", m.backend, "interval", m.interval.String())
	return nil
}

// Stop halts scheduled probes.
func (m *StoreMonitor) Stop() {
	m.mu.Lock()
	scheduler := m.scheduler
	m.scheduler = nil
	m.mu.Unlock()
	if scheduler != nil {
		scheduler.Stop()
	}
}

// Check pings the store once and records the outcome.
func (m *StoreMonitor) Check() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	err := m.pinger.Ping(ctx)
	up := err == nil

	m.mu.Lock()
	changed := !m.checked || m.connected != up
	m.connected = up
	m.checked = true
	m.mu.Unlock()

	m.metrics.SetStoreUp(up)
	if !changed {
		return
	}
	if up {
		m.logger.Info("record store reachable", "backend", m.backend)
	} else {
		m.logger.Error("record store unreachable", "backend", m.backend, "error", err)
	}
}

// Status implements health.StoreProbe.
func (m *StoreMonitor) Status() health.StoreStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return health.StoreStatus{Backend: m.backend, Connected: m.connected}
}

var _ health.StoreProbe = (*StoreMonitor)(nil)
