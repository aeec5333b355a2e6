package dto

import (
	"time"

	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceParams are the query parameters of the trial balance report.
type TrialBalanceParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
		Net    decimal.Decimal `json:"net"`
	} `json:"totals"`
	Balanced bool `json:"balanced"`
}

// ToTrialBalanceResponse converts a report to its DTO.
func ToTrialBalanceResponse(report *domain.TrialBalanceReport) TrialBalanceResponse {
	resp := TrialBalanceResponse{
		AsOf:     report.AsOf.Format(time.DateOnly),
		Rows:     make([]TrialBalanceRowResponse, len(report.Rows)),
		Balanced: report.Balanced,
	}
	for i, r := range report.Rows {
		resp.Rows[i] = TrialBalanceRowResponse{
			AccountID:   r.AccountID,
			Code:        r.Code,
			AccountName: r.AccountName,
			AccountType: string(r.AccountType),
			Debit:       r.Debit,
			Credit:      r.Credit,
			Balance:     r.Balance,
		}
	}
	resp.Totals.Debit = report.TotalDebit
	resp.Totals.Credit = report.TotalCredit
	resp.Totals.Net = report.NetBalance
	return resp
}

// UnreconciledParams are the query parameters of the unreconciled report.
type UnreconciledParams struct {
	SourceType string `form:"sourceType" binding:"required,sourcetype"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// UnreconciledResponse lists source records with no journal entry.
type UnreconciledResponse struct {
	SourceType domain.SourceType           `json:"sourceType"`
	Sources    []domain.UnreconciledSource `json:"sources"`
}

// UnbalancedEntriesResponse lists stored entries that do not balance.
type UnbalancedEntriesResponse struct {
	Entries []domain.UnbalancedEntry `json:"entries"`
}

// AccountLedgerParams are the query parameters of an account ledger page.
type AccountLedgerParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken *string `form:"nextToken"`
}

// AccountLedgerResponse is one page of an account's postings.
type AccountLedgerResponse struct {
	AccountCode string                     `json:"accountCode"`
	Lines       []domain.AccountLedgerLine `json:"lines"`
	NextToken   *string                    `json:"nextToken,omitempty"`
}
