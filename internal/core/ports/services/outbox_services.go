package services

import (
	"context"

	"github.com/SscSPs/autoledger/internal/core/domain"
)

// OutboxProducerSvc is the queued path used by high-volume producers.
type OutboxProducerSvc interface {
	// Enqueue records a pending posting with a single insert. Never touches the ledger.
	Enqueue(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.OutboxItem, error)
}

// OutboxProcessorSvc drains the queue.
type OutboxProcessorSvc interface {
	// RunQueueSync processes up to limit claimable items of kind (empty = all kinds).
	RunQueueSync(ctx context.Context, limit int, kind domain.SourceType) (*domain.SyncResult, error)
}

// OutboxReaderSvc defines read operations for queue status views
type OutboxReaderSvc interface {
	ListItems(ctx context.Context, filter domain.OutboxFilter) ([]domain.OutboxItem, *string, error)
	Stats(ctx context.Context) (domain.OutboxStats, error)
}

// OutboxOperatorSvc defines operator actions on the queue
type OutboxOperatorSvc interface {
	// RetryItem moves an item in error back to pending.
	RetryItem(ctx context.Context, itemID string) (*domain.OutboxItem, error)
}

// OutboxSvcFacade combines all outbox-related service interfaces
type OutboxSvcFacade interface {
	OutboxProducerSvc
	OutboxProcessorSvc
	OutboxReaderSvc
	OutboxOperatorSvc
}
