package repositories

import (
	"context"

	"github.com/SscSPs/autoledger/internal/core/domain"
)

// JournalReader defines read operations for journal entries
type JournalReader interface {
	// FindEntryByID retrieves an entry and its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryBySource retrieves the entry posted for an idempotency key, with its lines.
	// Returns apperrors.ErrNotFound when the source has not been posted.
	FindEntryBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error)

	// ListEntriesByRelated returns the entries adjusting a source, oldest first, with their lines.
	ListEntriesByRelated(ctx context.Context, relatedType domain.SourceType, relatedID string) ([]domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal entries.
// Entries are append-only: there is no update or delete.
type JournalWriter interface {
	// SaveEntry persists an entry and all of its lines atomically.
	// Returns apperrors.ErrDuplicateSource if an entry already exists for the entry's source.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
