package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/weather-records/internal/infra/config"
)

type retryAttemptKey struct{}

// retryAttempt returns the 1-based attempt number withRetry assigned to the
// request, or 1 when the request was not wrapped.
func retryAttempt(ctx context.Context) int {
	if n, ok := ctx.Value(retryAttemptKey{}).(int); ok && n > 0 {
		return n
	}
	return 1
}

// withRetry replays idempotent reads that end in a 5xx. Each attempt is
// buffered and only the last one reaches the client. Writes and excluded
// paths pass straight through.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	exclusions := make(map[string]struct{}, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		exclusions[path] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := exclusions[r.URL.Path]; skip || r.Method != http.MethodGet {
			handler.ServeHTTP(w, r)
			return
		}

		var last *bufferedResponse
		for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
			if attempt > 1 && !waitBackoff(r.Context(), cfg.BaseBackoff<<(attempt-2)) {
				break
			}
			last = newBufferedResponse()
			handler.ServeHTTP(last, r.WithContext(context.WithValue(r.Context(), retryAttemptKey{}, attempt)))
			if last.status < http.StatusInternalServerError {
				break
			}
			if attempt < cfg.MaxAttempts {
				logger.Warn("retrying request", "method", r.Method, "path", r.URL.Path, "status", last.status, "attempt", attempt)
			}
		}
		last.writeTo(w)
	})
}

// waitBackoff sleeps for d and reports false if the client went away first.
func waitBackoff(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
	wrote  bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wrote {
		return
	}
	b.status = status
	b.wrote = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wrote = true
	return b.body.Write(p)
}

func (b *bufferedResponse) Flush() {}

func (b *bufferedResponse) writeTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = append([]string(nil), v...)
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
