package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mlstudio/adapters/datareadiness"
	"mlstudio/adapters/excel"
	"mlstudio/adapters/memory"
	"mlstudio/adapters/postgres"
	"mlstudio/adapters/trainer"
	"mlstudio/app"
	"mlstudio/internal"
	"mlstudio/internal/config"
	"mlstudio/internal/table"
	"mlstudio/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Data layer
	Store  *table.Store
	Loader ports.DatasetLoader
	Studio *app.StudioService

	// Training
	Backend  ports.TrainingService
	Runs     ports.RunRepository
	Training *app.TrainingService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Container{Config: cfg, Logger: logger}, nil
}

// Init builds every component. The leaderboard lives in PostgreSQL when
// DATABASE_URL is set and in memory otherwise.
func (c *Container) Init(ctx context.Context) error {
	c.initStudio()

	backend, err := c.initBackend()
	if err != nil {
		return fmt.Errorf("failed to initialize training backend: %w", err)
	}
	c.Backend = backend

	if err := c.initRuns(ctx); err != nil {
		return fmt.Errorf("failed to initialize run repository: %w", err)
	}

	c.Training = app.NewTrainingService(c.Studio, c.Backend, c.Runs, c.Config.Trainer.CompareConcurrency, c.Logger)

	c.Logger.Info("container initialized: backend=%s persistent_runs=%t", c.Backend.Name(), c.DB != nil)
	return nil
}

// initStudio wires the profiler, table store and file loader
func (c *Container) initStudio() {
	studio := c.Config.Studio
	c.Store = table.NewStore(datareadiness.NewProfilerAdapter(nil), studio.MaxHistory)
	c.Loader = excel.NewDataReader(excel.DefaultReaderConfig(), c.Logger)
	c.Studio = app.NewStudioService(c.Store, c.Loader, app.StudioOptions{
		PreviewRows:        studio.PreviewRows,
		HistogramBins:      studio.HistogramBins,
		HistogramPrecision: studio.HistogramPrecision,
		FrequencyTopN:      studio.FrequencyTopN,
	}, c.Logger)
}

// initBackend selects the Training Service implementation
func (c *Container) initBackend() (ports.TrainingService, error) {
	cfg := c.Config.Trainer
	switch cfg.Backend {
	case config.BackendHTTP:
		return trainer.NewHTTPClient(cfg.URL, cfg.Timeout)
	case config.BackendSimulated, "":
		return trainer.NewSimulator(c.Logger, trainer.WithLatency(cfg.SimLatency)), nil
	}
	return nil, fmt.Errorf("unknown trainer backend %q", cfg.Backend)
}

// initRuns opens the leaderboard store
func (c *Container) initRuns(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.Runs = memory.NewRunRepository()
		return nil
	}

	db, err := postgres.Open(ctx, c.Config.Database.URL)
	if err != nil {
		return err
	}
	repo := postgres.NewRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return err
	}
	c.DB = db
	c.Runs = repo
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
