package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/utils/pagination"
	"github.com/google/uuid"
)

// OutboxConfig tunes the queue processor.
type OutboxConfig struct {
	// BatchSize is used when RunQueueSync is called without a limit.
	BatchSize int
	// MaxAttempts is the number of failed attempts after which a transient failure becomes error.
	MaxAttempts int
	// ProcessingTimeout is how long a claim holds before another run may reclaim the item.
	ProcessingTimeout time.Duration
}

// DefaultOutboxConfig returns the processor defaults.
func DefaultOutboxConfig() OutboxConfig {
	return OutboxConfig{
		BatchSize:         25,
		MaxAttempts:       5,
		ProcessingTimeout: 5 * time.Minute,
	}
}

type outboxService struct {
	BaseService
	repo   portsrepo.OutboxRepositoryFacade
	loader portsrepo.SourceLoader
	poster portssvc.PosterSvc
	cfg    OutboxConfig
	now    func() time.Time
}

// OutboxServiceOption is a functional option for configuring the outbox service
type OutboxServiceOption func(*outboxService)

// WithOutboxConfig overrides the processor defaults. Zero fields keep their default.
func WithOutboxConfig(cfg OutboxConfig) OutboxServiceOption {
	return func(s *outboxService) {
		if cfg.BatchSize > 0 {
			s.cfg.BatchSize = cfg.BatchSize
		}
		if cfg.MaxAttempts > 0 {
			s.cfg.MaxAttempts = cfg.MaxAttempts
		}
		if cfg.ProcessingTimeout > 0 {
			s.cfg.ProcessingTimeout = cfg.ProcessingTimeout
		}
	}
}

// WithOutboxClock replaces the wall clock, for tests.
func WithOutboxClock(now func() time.Time) OutboxServiceOption {
	return func(s *outboxService) {
		s.now = now
	}
}

// NewOutboxService creates the queue producer, processor and operator service.
func NewOutboxService(repo portsrepo.OutboxRepositoryFacade, loader portsrepo.SourceLoader, poster portssvc.PosterSvc, options ...OutboxServiceOption) portssvc.OutboxSvcFacade {
	svc := &outboxService{
		repo:   repo,
		loader: loader,
		poster: poster,
		cfg:    DefaultOutboxConfig(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.OutboxSvcFacade = (*outboxService)(nil)

// Enqueue is a single insert and never touches the ledger tables.
func (s *outboxService) Enqueue(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.OutboxItem, error) {
	if !sourceType.Valid() || sourceType == domain.SourceReversal {
		return nil, apperrors.NewValidationError(fmt.Sprintf("source type %q cannot be queued", sourceType))
	}
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, apperrors.NewValidationError("source id is required")
	}

	now := s.now()
	item, created, err := s.repo.Enqueue(ctx, domain.OutboxItem{
		ItemID:     uuid.NewString(),
		SourceType: sourceType,
		SourceID:   sourceID,
		Status:     domain.OutboxPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to enqueue posting",
			slog.String("source_type", string(sourceType)),
			slog.String("source_id", sourceID))
		return nil, fmt.Errorf("failed to enqueue %s %s: %w", sourceType, sourceID, err)
	}

	s.LogDebug(ctx, "Posting enqueued",
		slog.String("outbox_item_id", item.ItemID),
		slog.String("source_type", string(sourceType)),
		slog.String("source_id", sourceID),
		slog.Bool("created", created))
	return item, nil
}

// RunQueueSync claims a batch and posts each item. A failing item is recorded and
// the batch carries on.
func (s *outboxService) RunQueueSync(ctx context.Context, limit int, kind domain.SourceType) (*domain.SyncResult, error) {
	if kind != "" && !kind.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown source type %q", kind))
	}
	if limit <= 0 {
		limit = s.cfg.BatchSize
	}

	now := s.now()
	items, err := s.repo.ClaimBatch(ctx, kind, limit, now, now.Add(-s.cfg.ProcessingTimeout))
	if err != nil {
		s.LogError(ctx, err, "Failed to claim outbox batch")
		return nil, fmt.Errorf("failed to claim outbox batch: %w", err)
	}

	result := &domain.SyncResult{Claimed: len(items)}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			// unprocessed claims are picked up again once they go stale
			return result, err
		}
		s.processItem(ctx, item, result)
	}

	if result.Claimed > 0 {
		s.LogInfo(ctx, "Queue sync finished",
			slog.String("kind", string(kind)),
			slog.Int("claimed", result.Claimed),
			slog.Int("synced", result.Synced),
			slog.Int("retrying", result.Retrying),
			slog.Int("failed", result.Failed))
	}
	return result, nil
}

func (s *outboxService) processItem(ctx context.Context, item domain.OutboxItem, result *domain.SyncResult) {
	logger := s.GetLogger(ctx).With(
		slog.String("outbox_item_id", item.ItemID),
		slog.String("source_type", string(item.SourceType)),
		slog.String("source_id", item.SourceID),
	)
	if item.ClaimedAt == nil {
		logger.Error("Claimed outbox item has no claim timestamp")
		return
	}
	claim := *item.ClaimedAt

	postErr := s.postItem(ctx, item)
	if postErr == nil {
		if err := s.repo.MarkSynced(ctx, item.ItemID, claim, s.now()); err != nil {
			s.recordClaimError(logger, item, err, result)
			return
		}
		result.Synced++
		return
	}

	attempts := item.Attempts + 1
	status := domain.OutboxPending
	if apperrors.IsPermanentPostingError(postErr) || attempts >= s.cfg.MaxAttempts {
		status = domain.OutboxError
	}

	if err := s.repo.MarkFailed(ctx, item.ItemID, claim, status, postErr.Error(), s.now()); err != nil {
		s.recordClaimError(logger, item, err, result)
		return
	}

	if status == domain.OutboxError {
		result.Failed++
		alert := errors.Is(postErr, apperrors.ErrImbalancedEntry)
		logger.Error("Outbox item failed permanently",
			slog.String("error", postErr.Error()),
			slog.Int("attempts", attempts),
			slog.Bool("alert", alert))
	} else {
		result.Retrying++
		logger.Warn("Outbox item failed, will retry",
			slog.String("error", postErr.Error()),
			slog.Int("attempts", attempts))
	}
	result.Errors = append(result.Errors, domain.ItemFailure{
		ItemID:     item.ItemID,
		SourceType: item.SourceType,
		SourceID:   item.SourceID,
		Status:     status,
		Attempts:   attempts,
		Message:    postErr.Error(),
	})
}

// postItem reloads the source record so the entry reflects its current state.
func (s *outboxService) postItem(ctx context.Context, item domain.OutboxItem) error {
	payload, err := s.loader.LoadSource(ctx, item.SourceType, item.SourceID)
	if err != nil {
		return fmt.Errorf("failed to load %s %s: %w", item.SourceType, item.SourceID, err)
	}
	_, err = s.poster.Post(ctx, item.SourceType, item.SourceID, payload, "")
	return err
}

// recordClaimError handles a failed status update. A lost claim means another run owns
// the item now, so this run leaves it alone.
func (s *outboxService) recordClaimError(logger *slog.Logger, item domain.OutboxItem, err error, result *domain.SyncResult) {
	if errors.Is(err, apperrors.ErrClaimLost) {
		logger.Warn("Outbox claim lost, leaving item to the newer claim", slog.String("error", err.Error()))
	} else {
		logger.Error("Failed to update outbox item", slog.String("error", err.Error()))
	}
	result.Errors = append(result.Errors, domain.ItemFailure{
		ItemID:     item.ItemID,
		SourceType: item.SourceType,
		SourceID:   item.SourceID,
		Status:     domain.OutboxProcessing,
		Attempts:   item.Attempts,
		Message:    err.Error(),
	})
}

func (s *outboxService) ListItems(ctx context.Context, filter domain.OutboxFilter) ([]domain.OutboxItem, *string, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, apperrors.NewValidationError(fmt.Sprintf("unknown outbox status %q", filter.Status))
	}
	if filter.SourceType != "" && !filter.SourceType.Valid() {
		return nil, nil, apperrors.NewValidationError(fmt.Sprintf("unknown source type %q", filter.SourceType))
	}
	filter.Limit = pagination.ClampLimit(filter.Limit, 50, 500)

	items, next, err := s.repo.ListItems(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list outbox items")
		return nil, nil, fmt.Errorf("failed to list outbox items: %w", err)
	}
	return items, next, nil
}

func (s *outboxService) Stats(ctx context.Context) (domain.OutboxStats, error) {
	stats, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count outbox items: %w", err)
	}
	return stats, nil
}

func (s *outboxService) RetryItem(ctx context.Context, itemID string) (*domain.OutboxItem, error) {
	item, err := s.repo.Requeue(ctx, itemID, s.now())
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Outbox item requeued",
		slog.String("outbox_item_id", item.ItemID),
		slog.String("source_type", string(item.SourceType)),
		slog.String("source_id", item.SourceID),
		slog.Int("attempts", item.Attempts))
	return item, nil
}
