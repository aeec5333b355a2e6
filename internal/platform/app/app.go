// Package app assembles the storage, posting engine and services shared by the HTTP server
// and the operator CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/autoledger/internal/core/domain"
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/core/posting"
	"github.com/SscSPs/autoledger/internal/core/services"
	"github.com/SscSPs/autoledger/internal/platform/config"
	"github.com/SscSPs/autoledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/autoledger/internal/repositories/memory"
	"github.com/SscSPs/autoledger/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App holds the wired services and the resources that back them.
type App struct {
	Config   *config.Config
	Engine   *posting.Engine
	Services *portssvc.ServiceContainer
	// Store is set when running on the in-memory driver.
	Store *memory.Store

	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New loads the posting rules, opens storage for cfg.StorageDriver and wires the services.
// Migrations are not run here.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	mapping := posting.DefaultMapping()
	if cfg.PostingRulesFile != "" {
		loaded, err := posting.LoadMapping(cfg.PostingRulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load posting rules: %w", err)
		}
		mapping = loaded
		logger.Info("Loaded posting rules", slog.String("file", cfg.PostingRulesFile))
	}

	a := &App{Config: cfg, Engine: posting.NewEngine(mapping), logger: logger}

	var repos portsrepo.RepositoryProvider
	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage; ledger state is lost on exit")
		a.Store = memory.New()
		repos = memory.NewRepositoryProvider(a.Store)
	default:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		a.pool = pool
		repos = pgsql.NewRepositoryProvider(pool)
	}

	a.Services = services.NewServiceContainer(cfg, repos, a.Engine)
	return a, nil
}

// SeedChart creates the accounts the posting rules reference, skipping existing codes.
func (a *App) SeedChart(ctx context.Context) (int, error) {
	return a.Services.Chart.SeedChart(ctx, a.Engine.Mapping().SeedAccounts(), domain.SystemActor)
}

// Close releases the database pool, if any.
func (a *App) Close() {
	database.ClosePgxPool(a.pool, a.logger)
}
