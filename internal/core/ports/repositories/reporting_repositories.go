package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/autoledger/internal/core/domain"
)

// ReportingRepository defines the read-only reconciliation queries
type ReportingRepository interface {
	// GetTrialBalanceData returns per-account debit and credit sums for entries dated on or before asOf.
	// Accounts with no postings are included with zero totals.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// ListUnreconciled returns source records and queue items of a type that have no journal entry.
	ListUnreconciled(ctx context.Context, sourceType domain.SourceType, limit int) ([]domain.UnreconciledSource, error)

	// ListAccountLedger returns an account's lines oldest first, with RunningBalance as the
	// cumulative debit minus credit up to and including each line.
	ListAccountLedger(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.AccountLedgerLine, *string, error)

	// ListUnbalancedEntries returns entries whose stored lines do not net to zero.
	ListUnbalancedEntries(ctx context.Context) ([]domain.UnbalancedEntry, error)
}
