package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sophialabs/apiprobe/internal/infrastructure/outbound/logging"
	"github.com/sophialabs/apiprobe/internal/infrastructure/wiring"
)

// App is the thin lifecycle manager that delegates dependency construction to wiring.Container.
type App struct {
	cfg        Config
	container  *wiring.Container
	httpServer *http.Server
}

// New constructs the application by creating a logger, wiring infrastructure
// components via the container, and setting up the HTTP server.
func New(cfg Config) (*App, error) {
	logger := logging.NewText(os.Stdout, parseLogLevel(cfg.LogLevel))

	container, err := wiring.New(context.Background(), wiring.Params{
		DBPath:          cfg.DBPath,
		CollectionsDir:  cfg.CollectionsDir,
		HistorySize:     cfg.HistorySize,
		Logger:          logger,
		DefaultEngine:   cfg.DefaultEngine,
		UpstreamTimeout: cfg.UpstreamTimeout,
		BatchRate:       cfg.BatchRate,
		BatchBurst:      cfg.BatchBurst,
		PacerTTL:        cfg.PacerTTL,
		WatchDebounce:   cfg.WatcherDebounce,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wire infrastructure: %w", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      container.Server(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		container:  container,
		httpServer: httpServer,
	}, nil
}

// Run executes the full application lifecycle: import collections, start the
// watcher, serve HTTP, and shut down gracefully on SIGINT/SIGTERM or context
// cancellation.
func (a *App) Run(ctx context.Context) error {
	logger := a.container.Logger()
	defer func() {
		if err := a.container.Close(); err != nil {
			logger.Error("failed to release resources", "error", err)
		}
	}()

	if a.cfg.CollectionsDir != "" {
		n, err := a.container.ImportCollections(ctx)
		if err != nil {
			return fmt.Errorf("failed to import collections: %w", err)
		}
		logger.Info("collections imported", "count", n, "dir", a.cfg.CollectionsDir)

		if err := a.container.StartWatcher(); err != nil {
			logger.Warn("collection watcher not available", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting apiprobe server", "addr", a.httpServer.Addr, "db", a.cfg.DBPath)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// Close releases the container without running the server.
func (a *App) Close() error {
	return a.container.Close()
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
