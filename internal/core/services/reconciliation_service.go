package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// reconciliationService implements the read-only consistency reports
type reconciliationService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountReader
}

// NewReconciliationService creates the reconciliation reporter.
func NewReconciliationService(reportingRepo portsrepo.ReportingRepository, accountRepo portsrepo.AccountReader) portssvc.ReconciliationService {
	return &reconciliationService{
		reportingRepo: reportingRepo,
		accountRepo:   accountRepo,
	}
}

var _ portssvc.ReconciliationService = (*reconciliationService)(nil)

// TrialBalance computes each account's signed balance (debit minus credit).
// On a healthy ledger the balances sum to zero.
func (s *reconciliationService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to get trial balance data", slog.Time("as_of", asOf))
		return nil, fmt.Errorf("failed to get trial balance data: %w", err)
	}

	report := &domain.TrialBalanceReport{
		AsOf:        asOf,
		Rows:        rows,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for i := range report.Rows {
		row := &report.Rows[i]
		row.Balance = row.Debit.Sub(row.Credit)
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
	}
	report.NetBalance = report.TotalDebit.Sub(report.TotalCredit)
	report.Balanced = report.NetBalance.IsZero()

	if !report.Balanced {
		s.GetLogger(ctx).Error("Trial balance does not net to zero",
			slog.String("net_balance", report.NetBalance.StringFixed(2)),
			slog.Time("as_of", asOf),
			slog.Bool("alert", true))
	}
	return report, nil
}

func (s *reconciliationService) Unreconciled(ctx context.Context, sourceType domain.SourceType, limit int) ([]domain.UnreconciledSource, error) {
	if !sourceType.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown source type %q", sourceType))
	}

	sources, err := s.reportingRepo.ListUnreconciled(ctx, sourceType, pagination.ClampLimit(limit, 100, 1000))
	if err != nil {
		s.LogError(ctx, err, "Failed to list unreconciled sources", slog.String("source_type", string(sourceType)))
		return nil, fmt.Errorf("failed to list unreconciled %s: %w", sourceType, err)
	}
	return sources, nil
}

// AccountLedger lists an account's postings. Running balances are shown positive on the
// account's normal side, so a credit-normal account with more credits reads positive.
func (s *reconciliationService) AccountLedger(ctx context.Context, code string, limit int, nextToken *string) ([]domain.AccountLedgerLine, *string, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	lines, next, err := s.reportingRepo.ListAccountLedger(ctx, account.AccountID, pagination.ClampLimit(limit, 50, 500), nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account ledger", slog.String("code", code))
		return nil, nil, fmt.Errorf("failed to list ledger for account %s: %w", code, err)
	}

	if account.NormalBalance == domain.Credit {
		for i := range lines {
			lines[i].RunningBalance = lines[i].RunningBalance.Neg()
		}
	}
	return lines, next, nil
}

func (s *reconciliationService) UnbalancedEntries(ctx context.Context) ([]domain.UnbalancedEntry, error) {
	entries, err := s.reportingRepo.ListUnbalancedEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unbalanced entries: %w", err)
	}
	if len(entries) > 0 {
		s.GetLogger(ctx).Error("Stored journal entries do not balance",
			slog.Int("count", len(entries)),
			slog.Bool("alert", true))
	}
	return entries, nil
}
