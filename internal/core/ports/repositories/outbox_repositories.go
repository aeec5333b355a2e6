package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/autoledger/internal/core/domain"
)

// OutboxReader defines read operations for the posting queue
type OutboxReader interface {
	FindItemByID(ctx context.Context, itemID string) (*domain.OutboxItem, error)

	// ListItems returns items oldest first using token-based pagination.
	ListItems(ctx context.Context, filter domain.OutboxFilter) ([]domain.OutboxItem, *string, error)

	CountByStatus(ctx context.Context) (domain.OutboxStats, error)
}

// OutboxWriter defines the queue mutations. Producers only ever call Enqueue.
type OutboxWriter interface {
	// Enqueue inserts a pending item. When an item already exists for the source, it is
	// returned unchanged with created=false.
	Enqueue(ctx context.Context, item domain.OutboxItem) (existing *domain.OutboxItem, created bool, err error)

	// ClaimBatch atomically moves up to limit claimable items to processing, stamping claimedAt.
	// Claimable means pending, or processing with a claim older than staleBefore.
	// An empty kind claims every source type. Items are returned oldest first.
	ClaimBatch(ctx context.Context, kind domain.SourceType, limit int, claimedAt, staleBefore time.Time) ([]domain.OutboxItem, error)

	// MarkSynced finishes a claimed item. Returns apperrors.ErrClaimLost if the claim no longer holds.
	MarkSynced(ctx context.Context, itemID string, claimedAt, now time.Time) error

	// MarkFailed records a failed attempt, moving the item to status (pending or error) and
	// incrementing attempts. Returns apperrors.ErrClaimLost if the claim no longer holds.
	MarkFailed(ctx context.Context, itemID string, claimedAt time.Time, status domain.OutboxStatus, lastError string, now time.Time) error

	// Requeue moves an item in error back to pending, keeping its attempt history.
	Requeue(ctx context.Context, itemID string, now time.Time) (*domain.OutboxItem, error)
}

// OutboxRepositoryFacade combines all outbox-related repository interfaces
type OutboxRepositoryFacade interface {
	OutboxReader
	OutboxWriter
}
