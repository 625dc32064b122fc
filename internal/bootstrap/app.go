package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/weather-records/internal/infra/config"
)

// BackgroundJob is a scheduler that runs alongside the HTTP server.
type BackgroundJob interface {
	Start() error
	Stop()
}

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	monitor BackgroundJob
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, monitor BackgroundJob) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, monitor: monitor}
}

// Run starts the store monitor and HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if a.monitor != nil {
		if err := a.monitor.Start(); err != nil {
			return err
		}
		defer a.monitor.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
