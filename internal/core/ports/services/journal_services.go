package services

import (
	"context"

	"github.com/SscSPs/autoledger/internal/core/domain"
)

// LedgerReaderSvc defines read operations for posted entries
type LedgerReaderSvc interface {
	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryBySource retrieves the entry posted for (sourceType, sourceID).
	FindEntryBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error)

	// ListRelatedEntries returns the refunds, reversals and other entries that adjust a source.
	ListRelatedEntries(ctx context.Context, relatedType domain.SourceType, relatedID string) ([]domain.JournalEntry, error)
}

// LedgerWriterSvc is the Ledger Store write contract.
type LedgerWriterSvc interface {
	// PostEntry validates and persists a draft atomically.
	// Fails with ErrValidation, ErrUnmappablePosting, ErrImbalancedEntry or ErrDuplicateSource.
	PostEntry(ctx context.Context, draft domain.EntryDraft) (*domain.JournalEntry, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}

// PosterSvc posts a source event at most once.
type PosterSvc interface {
	// Post builds and stores the entry for a source event. Calling it again for the same
	// source returns Posted=false with the existing entry.
	Post(ctx context.Context, sourceType domain.SourceType, sourceID string, payload any, actor string) (domain.PostingResult, error)

	// ReverseEntry posts a reversing entry for entryID. The original entry is untouched.
	ReverseEntry(ctx context.Context, entryID string, memo string, actor string) (domain.PostingResult, error)
}

// ProducerSvc is the synchronous path used by low-volume producers.
type ProducerSvc interface {
	// PostBusinessEvent posts best-effort. Failures are logged and never returned.
	PostBusinessEvent(ctx context.Context, sourceType domain.SourceType, sourceID string, payload any, actor string) domain.PostingResult
}
