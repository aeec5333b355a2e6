package services

import (
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/core/posting"
	"github.com/SscSPs/autoledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, engine *posting.Engine) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Chart = NewChartService(repos.AccountRepo)
	container.Ledger = NewLedgerService(repos.JournalRepo, container.Chart)
	container.Poster = NewPosterService(engine, container.Ledger, container.Chart, repos.SourceLoader)
	container.Producer = NewProducerService(container.Poster)
	container.Outbox = NewOutboxService(repos.OutboxRepo, repos.SourceLoader, container.Poster,
		WithOutboxConfig(OutboxConfig{
			BatchSize:         cfg.QueueBatchSize,
			MaxAttempts:       cfg.QueueMaxAttempts,
			ProcessingTimeout: cfg.QueueProcessingTimeout,
		}),
	)
	container.Reconciliation = NewReconciliationService(repos.ReportingRepo, repos.AccountRepo)

	return container
}
