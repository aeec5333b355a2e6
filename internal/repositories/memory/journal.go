package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
)

func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalLine(nil), e.Lines...)
	return e
}

func (s *Store) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("journal entry " + entryID + " not found")
	}
	e = copyEntry(e)
	return &e, nil
}

func (s *Store) FindEntryBySource(_ context.Context, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.entryBySource[sourceKey{sourceType, sourceID}]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no journal entry for %s %s", sourceType, sourceID))
	}
	e := copyEntry(s.entries[id])
	return &e, nil
}

func (s *Store) ListEntriesByRelated(_ context.Context, relatedType domain.SourceType, relatedID string) ([]domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []domain.JournalEntry
	for _, e := range s.entries {
		if e.RelatedSourceType == relatedType && e.RelatedSourceID == relatedID {
			entries = append(entries, copyEntry(e))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].EntryID < entries[j].EntryID
	})
	return entries, nil
}

// SaveEntry checks the idempotency key and inserts under one write lock,
// the in-memory equivalent of the advisory lock + unique index in Postgres.
func (s *Store) SaveEntry(_ context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sourceKey{entry.SourceType, entry.SourceID}
	if _, exists := s.entryBySource[key]; exists {
		return fmt.Errorf("%s %s: %w", entry.SourceType, entry.SourceID, apperrors.ErrDuplicateSource)
	}
	if _, exists := s.entries[entry.EntryID]; exists {
		return fmt.Errorf("journal entry %s: %w", entry.EntryID, apperrors.ErrDuplicate)
	}
	for _, l := range entry.Lines {
		if _, ok := s.accountIDs[l.AccountID]; !ok {
			return apperrors.NewAppError(500, "journal line references unknown account "+l.AccountID, nil)
		}
	}

	s.entries[entry.EntryID] = copyEntry(entry)
	s.entryBySource[key] = entry.EntryID
	return nil
}
