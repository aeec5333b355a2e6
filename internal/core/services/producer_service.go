package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
)

// producerService is the synchronous path for low-volume producers. A ledger failure
// must never fail the producer's own business transaction, so errors stop here.
type producerService struct {
	BaseService
	poster portssvc.PosterSvc
}

// NewProducerService wraps a poster with best-effort semantics.
func NewProducerService(poster portssvc.PosterSvc) portssvc.ProducerSvc {
	return &producerService{poster: poster}
}

var _ portssvc.ProducerSvc = (*producerService)(nil)

func (s *producerService) PostBusinessEvent(ctx context.Context, sourceType domain.SourceType, sourceID string, payload any, actor string) (result domain.PostingResult) {
	attrs := []any{
		slog.String("source_type", string(sourceType)),
		slog.String("source_id", sourceID),
	}

	defer func() {
		if r := recover(); r != nil {
			s.LogError(ctx, fmt.Errorf("panic: %v", r), "Posting panicked", append(attrs, slog.Bool("alert", true))...)
			result = domain.PostingResult{}
		}
	}()

	result, err := s.poster.Post(ctx, sourceType, sourceID, payload, actor)
	if err == nil {
		return result
	}

	switch {
	case errors.Is(err, apperrors.ErrImbalancedEntry):
		s.LogError(ctx, err, "Posting rule produced an imbalanced entry", append(attrs, slog.Bool("alert", true))...)
	case apperrors.IsPermanentPostingError(err):
		s.LogWarn(ctx, err, "Business event could not be posted", attrs...)
	default:
		s.LogError(ctx, err, "Business event posting failed", attrs...)
	}
	return domain.PostingResult{}
}
