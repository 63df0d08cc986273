// Package app is the central wiring point for dependency injection.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/config"
	"github.com/junction-boxers/fleetgate/internal/observability"
	"github.com/junction-boxers/fleetgate/llm"
	"github.com/junction-boxers/fleetgate/llm/gemini"
	"github.com/junction-boxers/fleetgate/repositories"
	mongorepo "github.com/junction-boxers/fleetgate/repositories/mongo"
	"github.com/junction-boxers/fleetgate/services/audit"
	"github.com/junction-boxers/fleetgate/services/gate"
	"github.com/junction-boxers/fleetgate/services/pipeline"
	"github.com/junction-boxers/fleetgate/services/retrieval"
	"github.com/junction-boxers/fleetgate/services/settings"
	"github.com/junction-boxers/fleetgate/services/synthesis"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *mongorepo.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics
	LLM     llm.Client

	// Repositories
	Fleet        repositories.FleetRepository
	AuditLogs    repositories.AuditRepository
	SettingsRepo repositories.SettingsRepository

	// Services
	Gate     *gate.Service
	Executor *retrieval.Service
	Recorder *audit.Recorder
	Settings *settings.Service
	Pipeline *pipeline.Service
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.New(),
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories(cfg)
	deps.initLLM(cfg)

	if err := deps.initServices(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the document store connection
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := mongorepo.NewDB(ctx, cfg.Mongo, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db

	d.Logger.Info("database connection established",
		zap.String("database", cfg.Mongo.Database))
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories(cfg *config.Config) {
	d.Fleet = mongorepo.NewFleetRepository(d.DB, cfg.Mongo.FleetCollection, d.Logger)
	d.AuditLogs = mongorepo.NewAuditRepository(d.DB, cfg.Mongo.AuditCollection, d.Logger)
	d.SettingsRepo = mongorepo.NewSettingsRepository(d.DB, cfg.Mongo.SettingsCollection, d.Logger)
	d.Logger.Info("repositories initialized")
}

// initLLM initializes the language-model client used by both the gate
// and the synthesizer
func (d *Dependencies) initLLM(cfg *config.Config) {
	d.LLM = gemini.NewAdapter(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	})
	if cfg.Gemini.APIKey == "" {
		d.Logger.Warn("no classifier API key configured")
	}
}

// initServices wires the pipeline stages together
func (d *Dependencies) initServices(cfg *config.Config) error {
	taxonomy, blocklist, err := config.LoadTaxonomy(cfg.Policy)
	if err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}

	d.Gate = gate.NewService(d.LLM, gate.Config{
		PrecheckEnabled: cfg.Policy.PrecheckEnabled,
		Blocklist:       blocklist,
	}, d.Logger)

	d.Executor = retrieval.NewService(d.Fleet, d.Logger)
	d.Recorder = audit.NewRecorder(d.AuditLogs, d.Metrics, cfg.Policy.AuditTimeout, d.Logger)
	d.Settings = settings.NewService(d.SettingsRepo, taxonomy, d.Logger)

	d.Pipeline = pipeline.NewService(
		d.Gate,
		d.Executor,
		synthesis.NewService(d.LLM, d.Logger),
		d.Recorder,
		d.Settings,
		d.Metrics,
		d.Logger,
	)

	d.Logger.Info("pipeline services initialized")
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
