package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/google/uuid"
)

// ledgerService is the Ledger Store: the only writer of journal entries.
type ledgerService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	chart       portssvc.ChartReaderSvc
}

// NewLedgerService creates the ledger store service.
func NewLedgerService(journalRepo portsrepo.JournalRepositoryFacade, chart portssvc.ChartReaderSvc) portssvc.LedgerSvcFacade {
	return &ledgerService{
		journalRepo: journalRepo,
		chart:       chart,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// PostEntry validates a draft against the line rules and the live chart, then persists it.
// The entry date is truncated to a calendar day in UTC.
func (s *ledgerService) PostEntry(ctx context.Context, draft domain.EntryDraft) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx).With(
		slog.String("source_type", string(draft.SourceType)),
		slog.String("source_id", draft.SourceID),
	)

	if !draft.SourceType.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown source type %q", draft.SourceType))
	}
	if draft.SourceID == "" {
		return nil, apperrors.NewValidationError("source id is required")
	}
	if draft.EntryDate.IsZero() {
		return nil, apperrors.NewValidationError("entry date is required")
	}
	if err := draft.ValidateLines(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	chart, err := s.chart.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if !draft.IsBalanced() {
		debits, credits := draft.Totals()
		err := fmt.Errorf("%w: %s %s debits %s credits %s", apperrors.ErrImbalancedEntry,
			draft.SourceType, draft.SourceID, debits.StringFixed(2), credits.StringFixed(2))
		logger.Error("Rejected imbalanced journal entry", slog.String("error", err.Error()), slog.Bool("alert", true))
		return nil, err
	}

	now := time.Now().UTC()
	y, m, d := draft.EntryDate.UTC().Date()
	entry := domain.JournalEntry{
		EntryID:    uuid.NewString(),
		EntryDate:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		SourceType: draft.SourceType,
		SourceID:   draft.SourceID,
		Memo:       draft.Memo,
		CreatedBy:  draft.CreatedBy,
		CreatedAt:  now,

		RelatedSourceType: draft.RelatedSourceType,
		RelatedSourceID:   draft.RelatedSourceID,

		Lines: make([]domain.JournalLine, 0, len(draft.Lines)),
	}
	if entry.CreatedBy == "" {
		entry.CreatedBy = domain.SystemActor
	}

	for i, l := range draft.Lines {
		account, ok := chart.Active(l.AccountCode)
		if !ok {
			return nil, fmt.Errorf("%w: account %s is missing or inactive", apperrors.ErrUnmappablePosting, l.AccountCode)
		}
		entry.Lines = append(entry.Lines, domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      entry.EntryID,
			LineNo:       i + 1,
			AccountID:    account.AccountID,
			AccountCode:  account.Code,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Memo:         l.Memo,
		})
	}

	if err := s.journalRepo.SaveEntry(ctx, entry); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateSource) {
			logger.Debug("Journal entry already exists for source")
			return nil, err
		}
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	debits, _ := entry.Totals()
	logger.Info("Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.Int("lines", len(entry.Lines)),
		slog.String("amount", debits.StringFixed(2)))
	return &entry, nil
}

func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to get journal entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to get journal entry %s: %w", entryID, err)
	}
	return entry, nil
}

func (s *ledgerService) FindEntryBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryBySource(ctx, sourceType, sourceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find journal entry for %s %s: %w", sourceType, sourceID, err)
	}
	return entry, nil
}

func (s *ledgerService) ListRelatedEntries(ctx context.Context, relatedType domain.SourceType, relatedID string) ([]domain.JournalEntry, error) {
	entries, err := s.journalRepo.ListEntriesByRelated(ctx, relatedType, relatedID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list related journal entries",
			slog.String("related_source_type", string(relatedType)),
			slog.String("related_source_id", relatedID))
		return nil, fmt.Errorf("failed to list entries related to %s %s: %w", relatedType, relatedID, err)
	}
	return entries, nil
}
