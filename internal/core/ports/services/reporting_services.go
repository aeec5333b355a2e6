package services

import (
	"context"
	"time"

	"github.com/SscSPs/autoledger/internal/core/domain"
)

// ReconciliationService defines the read-only reports proving the ledger is consistent
type ReconciliationService interface {
	// TrialBalance returns per-account signed balances as of a date; they sum to zero.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error)

	// Unreconciled lists source records of a type that have no journal entry.
	Unreconciled(ctx context.Context, sourceType domain.SourceType, limit int) ([]domain.UnreconciledSource, error)

	// AccountLedger lists an account's postings with a running balance.
	AccountLedger(ctx context.Context, code string, limit int, nextToken *string) ([]domain.AccountLedgerLine, *string, error)

	// UnbalancedEntries lists stored entries that do not balance. Always empty on a healthy ledger.
	UnbalancedEntries(ctx context.Context) ([]domain.UnbalancedEntry, error)
}
