package repositories

import (
	"context"

	"github.com/SscSPs/autoledger/internal/core/domain"
)

// SourceLoader reads business records fresh from the tables their producers own.
type SourceLoader interface {
	// LoadSource returns the event payload for a source record, e.g. domain.PosSale for pos_sale.
	// Returns apperrors.ErrNotFound when the record does not exist, and
	// apperrors.ErrUnmappablePosting when the source type has no origin table.
	LoadSource(ctx context.Context, sourceType domain.SourceType, sourceID string) (any, error)
}
