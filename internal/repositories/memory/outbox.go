package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/SscSPs/autoledger/internal/utils/pagination"
)

func copyItem(it domain.OutboxItem) *domain.OutboxItem {
	return &it
}

func outboxBefore(a, b domain.OutboxItem) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ItemID < b.ItemID
}

func (s *Store) FindItemByID(_ context.Context, itemID string) (*domain.OutboxItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.outbox[itemID]
	if !ok {
		return nil, apperrors.NewNotFoundError("outbox item " + itemID + " not found")
	}
	return copyItem(it), nil
}

func (s *Store) ListItems(_ context.Context, filter domain.OutboxFilter) ([]domain.OutboxItem, *string, error) {
	var after *pagination.Cursor
	if filter.NextToken != nil && *filter.NextToken != "" {
		c, err := pagination.DecodeCursor(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		after = &c
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.OutboxItem, 0)
	for _, it := range s.outbox {
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		if filter.SourceType != "" && it.SourceType != filter.SourceType {
			continue
		}
		if after != nil && !outboxBefore(domain.OutboxItem{CreatedAt: after.CreatedAt, ItemID: after.ID}, it) {
			continue
		}
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return outboxBefore(items[i], items[j]) })

	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	var next *string
	if len(items) > 0 {
		last := items[len(items)-1]
		next = pagination.NextToken(len(items), filter.Limit, pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ItemID})
	}
	return items, next, nil
}

func (s *Store) CountByStatus(_ context.Context) (domain.OutboxStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.OutboxStats{
		domain.OutboxPending:    0,
		domain.OutboxProcessing: 0,
		domain.OutboxSynced:     0,
		domain.OutboxError:      0,
	}
	for _, it := range s.outbox {
		stats[it.Status]++
	}
	return stats, nil
}

func (s *Store) Enqueue(_ context.Context, item domain.OutboxItem) (*domain.OutboxItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sourceKey{item.SourceType, item.SourceID}
	if id, exists := s.outboxBySource[key]; exists {
		return copyItem(s.outbox[id]), false, nil
	}
	s.outbox[item.ItemID] = item
	s.outboxBySource[key] = item.ItemID
	return copyItem(item), true, nil
}

func (s *Store) ClaimBatch(_ context.Context, kind domain.SourceType, limit int, claimedAt, staleBefore time.Time) ([]domain.OutboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]domain.OutboxItem, 0)
	for _, it := range s.outbox {
		if kind != "" && it.SourceType != kind {
			continue
		}
		stale := it.Status == domain.OutboxProcessing && it.ClaimedAt != nil && it.ClaimedAt.Before(staleBefore)
		if it.Status == domain.OutboxPending || stale {
			candidates = append(candidates, it)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return outboxBefore(candidates[i], candidates[j]) })
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	for i := range candidates {
		claim := claimedAt
		candidates[i].Status = domain.OutboxProcessing
		candidates[i].ClaimedAt = &claim
		candidates[i].UpdatedAt = claimedAt
		s.outbox[candidates[i].ItemID] = candidates[i]
	}
	return candidates, nil
}

// claimed returns the item if it is still processing under the given claim.
func (s *Store) claimed(itemID string, claimedAt time.Time) (domain.OutboxItem, error) {
	it, ok := s.outbox[itemID]
	if !ok {
		return domain.OutboxItem{}, apperrors.NewNotFoundError("outbox item " + itemID + " not found")
	}
	if it.Status != domain.OutboxProcessing || it.ClaimedAt == nil || !it.ClaimedAt.Equal(claimedAt) {
		return domain.OutboxItem{}, fmt.Errorf("outbox item %s: %w", itemID, apperrors.ErrClaimLost)
	}
	return it, nil
}

func (s *Store) MarkSynced(_ context.Context, itemID string, claimedAt, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.claimed(itemID, claimedAt)
	if err != nil {
		return err
	}
	synced := now
	it.Status = domain.OutboxSynced
	it.SyncedAt = &synced
	it.LastError = nil
	it.UpdatedAt = now
	s.outbox[itemID] = it
	return nil
}

func (s *Store) MarkFailed(_ context.Context, itemID string, claimedAt time.Time, status domain.OutboxStatus, lastError string, now time.Time) error {
	if status != domain.OutboxPending && status != domain.OutboxError {
		return apperrors.NewValidationError("failed item must move to pending or error, not " + string(status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.claimed(itemID, claimedAt)
	if err != nil {
		return err
	}
	msg := lastError
	it.Status = status
	it.Attempts++
	it.LastError = &msg
	it.UpdatedAt = now
	s.outbox[itemID] = it
	return nil
}

func (s *Store) Requeue(_ context.Context, itemID string, now time.Time) (*domain.OutboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.outbox[itemID]
	if !ok {
		return nil, apperrors.NewNotFoundError("outbox item " + itemID + " not found")
	}
	if it.Status != domain.OutboxError {
		return nil, apperrors.NewValidationError(fmt.Sprintf("outbox item %s is %s, only items in error can be retried", itemID, it.Status))
	}
	it.Status = domain.OutboxPending
	it.ClaimedAt = nil
	it.UpdatedAt = now
	s.outbox[itemID] = it
	return copyItem(it), nil
}
