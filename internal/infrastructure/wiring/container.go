package wiring

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sophialabs/apiprobe/internal/domain/trace"
	inboundhttp "github.com/sophialabs/apiprobe/internal/infrastructure/inbound/http"
	"github.com/sophialabs/apiprobe/internal/infrastructure/outbound/clock"
	"github.com/sophialabs/apiprobe/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/apiprobe/internal/infrastructure/outbound/sqlite"
	"github.com/sophialabs/apiprobe/internal/infrastructure/outbound/template"
	"github.com/sophialabs/apiprobe/internal/infrastructure/outbound/throttle"
	"github.com/sophialabs/apiprobe/internal/infrastructure/outbound/upstream"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
	"github.com/sophialabs/apiprobe/internal/infrastructure/usecases"
)

// Params holds the subset of configuration needed to construct infrastructure components.
type Params struct {
	DBPath         string
	CollectionsDir string // "" disables collections
	HistorySize    int
	Logger         ports.Logger
	DefaultEngine  string // "" = jinja2, "expr"

	UpstreamTimeout time.Duration
	BatchRate       float64
	BatchBurst      int
	PacerTTL        time.Duration
	WatchDebounce   time.Duration

	// Upstream replaces the HTTP client when set.
	Upstream ports.Upstream
}

// Container owns the construction and lifecycle of all infrastructure components.
type Container struct {
	logger    ports.Logger
	db        *sqlite.DB
	server    *inboundhttp.Server
	importUC  *usecases.ImportCollectionUseCase
	pacer     *throttle.HostPacer
	history   *trace.RingBuffer
	watchDir  string
	debounce  time.Duration
	watcher   *filesystem.Watcher
	closeOnce sync.Once
}

// New constructs all infrastructure components. Fallible operations (template
// registry, collections, database) run before goroutine-starting operations
// (pacer) to avoid goroutine leaks on early failure.
func New(ctx context.Context, p Params) (*Container, error) {
	clk := clock.New()

	registry, err := template.NewRegistry(p.DefaultEngine, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to create template registry: %w", err)
	}

	var collections *filesystem.CollectionRepository
	if p.CollectionsDir != "" {
		if _, err := os.Stat(p.CollectionsDir); err != nil {
			return nil, fmt.Errorf("failed to access collections directory: %w", err)
		}
		collections, err = filesystem.NewCollectionRepository(p.CollectionsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create collection repository: %w", err)
		}
	}

	db, err := sqlite.Open(ctx, p.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Start background goroutine only after all fallible ops succeed.
	pacer := throttle.NewHostPacer(p.PacerTTL)

	up := p.Upstream
	if up == nil {
		up = upstream.New(p.UpstreamTimeout)
	}

	configs := sqlite.NewConfigRepository(db, clk)
	lists := sqlite.NewDatalistRepository(db, clk)
	history := trace.NewRingBuffer(p.HistorySize)

	testAPI := usecases.NewTestAPIUseCase(up, clk, p.Logger, history)
	run := usecases.NewRunConfigUseCase(configs, lists, registry, testAPI, p.Logger)
	batch := usecases.NewBatchRunUseCase(run, pacer, p.BatchRate, p.BatchBurst, p.Logger)

	server := inboundhttp.NewServer(
		testAPI,
		run,
		batch,
		usecases.NewManageConfigsUseCase(configs, p.Logger),
		usecases.NewManageDatalistsUseCase(lists, p.Logger),
		registry,
		history,
		clk,
		p.Logger,
	)

	c := &Container{
		logger:   p.Logger,
		db:       db,
		server:   server,
		pacer:    pacer,
		history:  history,
		debounce: p.WatchDebounce,
	}
	if collections != nil {
		c.importUC = usecases.NewImportCollectionUseCase(collections, configs, p.Logger)
		c.watchDir = collections.RootDir()
		server.SetCollectionImport(c.importUC)
	}
	return c, nil
}

// ImportCollections upserts the collection directory into the store. It is a
// no-op returning 0 when no directory is configured.
func (c *Container) ImportCollections(ctx context.Context) (int, error) {
	if c.importUC == nil {
		return 0, nil
	}
	return c.importUC.Execute(ctx)
}

// StartWatcher re-imports collections whenever their files change. It does
// nothing without a collections directory. The watcher is stopped by Close.
func (c *Container) StartWatcher() error {
	if c.importUC == nil || c.watcher != nil {
		return nil
	}
	w, err := filesystem.NewWatcher(c.watchDir, c.debounce, c.logger, func() {
		if _, err := c.importUC.Execute(context.Background()); err != nil {
			c.logger.Error("collection re-import failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start collection watcher: %w", err)
	}
	w.Start()
	c.watcher = w
	c.logger.Info("collection watcher started", "dir", c.watchDir)
	return nil
}

// Close releases resources held by the container. It is idempotent.
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.watcher != nil {
			c.watcher.Stop()
		}
		c.pacer.Stop()
		if closeErr := c.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close database: %w", closeErr))
		}
	})
	return err
}

// Logger returns the logger passed at construction time.
func (c *Container) Logger() ports.Logger {
	return c.logger
}

// Server returns the HTTP API server.
func (c *Container) Server() *inboundhttp.Server {
	return c.server
}

// History returns the run history buffer.
func (c *Container) History() *trace.RingBuffer {
	return c.history
}
