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
	"github.com/SscSPs/autoledger/internal/core/posting"
)

// posterService makes posting idempotent on (source_type, source_id).
// The existence check is an optimisation; the store's unique key is what guarantees
// a single entry under concurrent callers.
type posterService struct {
	BaseService
	engine  *posting.Engine
	ledger  portssvc.LedgerSvcFacade
	chart   portssvc.ChartReaderSvc
	sources portsrepo.SourceLoader
}

// NewPosterService creates the idempotent poster. sources is used to check refunds line by line
// against the sale record; it may be nil, in which case only the ledger-level bounds apply.
func NewPosterService(engine *posting.Engine, ledger portssvc.LedgerSvcFacade, chart portssvc.ChartReaderSvc, sources portsrepo.SourceLoader) portssvc.PosterSvc {
	return &posterService{
		engine:  engine,
		ledger:  ledger,
		chart:   chart,
		sources: sources,
	}
}

var _ portssvc.PosterSvc = (*posterService)(nil)

func (s *posterService) Post(ctx context.Context, sourceType domain.SourceType, sourceID string, payload any, actor string) (domain.PostingResult, error) {
	if !sourceType.Valid() {
		return domain.PostingResult{}, apperrors.NewValidationError(fmt.Sprintf("unknown source type %q", sourceType))
	}
	if sourceID == "" {
		return domain.PostingResult{}, apperrors.NewValidationError("source id is required")
	}

	if existing, done, err := s.existing(ctx, sourceType, sourceID); err != nil || done {
		return domain.PostingResult{Entry: existing}, err
	}

	chart, err := s.chart.Snapshot(ctx)
	if err != nil {
		return domain.PostingResult{}, err
	}
	if sourceType == domain.SourcePosRefund {
		if payload, err = s.prepareRefund(ctx, payload, chart); err != nil {
			return domain.PostingResult{}, err
		}
	}
	draft, err := s.engine.Build(sourceType, sourceID, payload, chart)
	if err != nil {
		return domain.PostingResult{}, err
	}
	if actor != "" {
		draft.CreatedBy = actor
	}
	return s.store(ctx, draft)
}

func (s *posterService) ReverseEntry(ctx context.Context, entryID string, memo string, actor string) (domain.PostingResult, error) {
	original, err := s.ledger.GetEntry(ctx, entryID)
	if err != nil {
		return domain.PostingResult{}, err
	}

	if existing, done, err := s.existing(ctx, domain.SourceReversal, entryID); err != nil || done {
		return domain.PostingResult{Entry: existing}, err
	}

	draft, err := posting.BuildReversal(*original, memo, actor, time.Now().UTC())
	if err != nil {
		return domain.PostingResult{}, err
	}
	return s.store(ctx, draft)
}

// existing reports whether the source was already posted, returning its entry.
func (s *posterService) existing(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, bool, error) {
	entry, err := s.ledger.FindEntryBySource(ctx, sourceType, sourceID)
	switch {
	case err == nil:
		return entry, true, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, false, nil
	default:
		return nil, false, err
	}
}

func (s *posterService) store(ctx context.Context, draft domain.EntryDraft) (domain.PostingResult, error) {
	entry, err := s.ledger.PostEntry(ctx, draft)
	if err == nil {
		return domain.PostingResult{Posted: true, Entry: entry}, nil
	}
	if !errors.Is(err, apperrors.ErrDuplicateSource) {
		return domain.PostingResult{}, err
	}

	// lost the race to a concurrent poster
	existing, ferr := s.ledger.FindEntryBySource(ctx, draft.SourceType, draft.SourceID)
	if ferr != nil {
		return domain.PostingResult{}, fmt.Errorf("failed to reload entry after duplicate: %w", ferr)
	}
	s.LogDebug(ctx, "Source posted concurrently, returning existing entry",
		slog.String("source_type", string(draft.SourceType)),
		slog.String("source_id", draft.SourceID),
		slog.String("entry_id", existing.EntryID))
	return domain.PostingResult{Entry: existing}, nil
}
