package services

import (
	"context"

	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/SscSPs/autoledger/internal/dto"
)

// ChartReaderSvc defines read operations for the chart of accounts
type ChartReaderSvc interface {
	// GetAccount retrieves an account by code.
	GetAccount(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves every account ordered by code.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// Snapshot returns the current chart keyed by code, for the posting rule engine.
	Snapshot(ctx context.Context) (domain.Chart, error)
}

// ChartWriterSvc defines write operations for the chart of accounts.
// Accounts are never deleted; code, type and normal balance never change.
type ChartWriterSvc interface {
	// SeedChart creates the accounts that do not exist yet and reports how many were created.
	SeedChart(ctx context.Context, accounts []domain.Account, actor string) (int, error)

	// UpdateAccount renames or (de)activates an account.
	UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error)
}

// ChartSvcFacade combines all chart-related service interfaces
type ChartSvcFacade interface {
	ChartReaderSvc
	ChartWriterSvc
}
