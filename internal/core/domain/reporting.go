package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single row in a trial balance report.
// Balance is signed: debit minus credit.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceReport is the trial balance as of a date.
type TrialBalanceReport struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	NetBalance  decimal.Decimal   `json:"netBalance"`
	Balanced    bool              `json:"balanced"`
}

// UnreconciledSource is a source record with no matching journal entry.
// Queue fields are nil when the source never went through the outbox.
type UnreconciledSource struct {
	SourceType  SourceType    `json:"sourceType"`
	SourceID    string        `json:"sourceID"`
	QueueStatus *OutboxStatus `json:"queueStatus,omitempty"`
	Attempts    *int          `json:"attempts,omitempty"`
	LastError   *string       `json:"lastError,omitempty"`
}

// AccountLedgerLine is a posted line on one account with the running balance after it,
// signed by the account's normal balance.
type AccountLedgerLine struct {
	LineID         string          `json:"lineID"`
	EntryID        string          `json:"entryID"`
	EntryDate      time.Time       `json:"entryDate"`
	SourceType     SourceType      `json:"sourceType"`
	SourceID       string          `json:"sourceID"`
	Memo           string          `json:"memo"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// UnbalancedEntry is an entry whose stored lines do not net to zero.
type UnbalancedEntry struct {
	EntryID     string          `json:"entryID"`
	SourceType  SourceType      `json:"sourceType"`
	SourceID    string          `json:"sourceID"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}
