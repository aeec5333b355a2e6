package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SourceType names the kind of business event a journal entry was posted from.
type SourceType string

const (
	SourceFieldReport       SourceType = "field_report"
	SourceMaterialsPurchase SourceType = "materials_purchase"
	SourcePosSale           SourceType = "pos_sale"
	SourcePosRefund         SourceType = "pos_refund"
	SourcePayrollPayment    SourceType = "payroll_payment"
	SourceLoanDisbursement  SourceType = "loan_disbursement"
	SourceLoanRepayment     SourceType = "loan_repayment"
	SourceReversal          SourceType = "reversal"
)

// SourceTypes lists every known source type.
var SourceTypes = []SourceType{
	SourceFieldReport,
	SourceMaterialsPurchase,
	SourcePosSale,
	SourcePosRefund,
	SourcePayrollPayment,
	SourceLoanDisbursement,
	SourceLoanRepayment,
	SourceReversal,
}

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	for _, known := range SourceTypes {
		if s == known {
			return true
		}
	}
	return false
}

// JournalEntry is a balanced, immutable group of postings for one business event.
// At most one entry exists per (SourceType, SourceID).
type JournalEntry struct {
	EntryID    string     `json:"entryID"`
	EntryDate  time.Time  `json:"entryDate"`
	SourceType SourceType `json:"sourceType"`
	SourceID   string     `json:"sourceID"`
	Memo       string     `json:"memo"`
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`

	// RelatedSourceType and RelatedSourceID name the source this entry adjusts,
	// e.g. the sale a refund returns. Empty for primary events.
	RelatedSourceType SourceType `json:"relatedSourceType,omitempty"`
	RelatedSourceID   string     `json:"relatedSourceID,omitempty"`

	Lines []JournalLine `json:"lines,omitempty"`
}

// Totals returns the summed debit and credit amounts of the entry's lines.
func (e JournalEntry) Totals() (decimal.Decimal, decimal.Decimal) {
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debits = debits.Add(l.DebitAmount)
		credits = credits.Add(l.CreditAmount)
	}
	return debits, credits
}

// JournalLine is a single debit or credit posting owned by a JournalEntry.
type JournalLine struct {
	LineID       string          `json:"lineID"`
	EntryID      string          `json:"entryID"`
	LineNo       int             `json:"lineNo"`
	AccountID    string          `json:"accountID"`
	AccountCode  string          `json:"accountCode"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Memo         string          `json:"memo,omitempty"`
}

// DraftLine is a candidate journal line referencing an account by code.
type DraftLine struct {
	AccountCode  string          `json:"accountCode"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Memo         string          `json:"memo,omitempty"`
}

var (
	errNegativeAmount = errors.New("amounts must not be negative")
	errOneSide        = errors.New("exactly one of debit or credit must be positive")
	errPrecision      = errors.New("amount exceeds minor currency unit precision")
)

// Validate checks the per-line invariants: non-negative amounts, exactly one side populated,
// and no precision beyond minor units.
func (l DraftLine) Validate() error {
	if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
		return errNegativeAmount
	}
	if l.DebitAmount.IsPositive() == l.CreditAmount.IsPositive() {
		return errOneSide
	}
	if !IsMinorUnitExact(l.DebitAmount) || !IsMinorUnitExact(l.CreditAmount) {
		return errPrecision
	}
	return nil
}

// Side returns which side of the ledger the line posts to.
func (l DraftLine) Side() Side {
	if l.DebitAmount.IsPositive() {
		return Debit
	}
	return Credit
}

// EntryDraft is the output of a posting rule: a candidate journal entry not yet persisted.
type EntryDraft struct {
	SourceType        SourceType  `json:"sourceType"`
	SourceID          string      `json:"sourceID"`
	EntryDate         time.Time   `json:"entryDate"`
	Memo              string      `json:"memo"`
	CreatedBy         string      `json:"createdBy"`
	RelatedSourceType SourceType  `json:"relatedSourceType,omitempty"`
	RelatedSourceID   string      `json:"relatedSourceID,omitempty"`
	Lines             []DraftLine `json:"lines"`
}

// Totals returns the summed debit and credit amounts of the draft.
func (d EntryDraft) Totals() (decimal.Decimal, decimal.Decimal) {
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range d.Lines {
		debits = debits.Add(l.DebitAmount)
		credits = credits.Add(l.CreditAmount)
	}
	return debits, credits
}

// IsBalanced reports whether Σdebits == Σcredits exactly.
func (d EntryDraft) IsBalanced() bool {
	debits, credits := d.Totals()
	return debits.Equal(credits)
}

// ValidateLines runs DraftLine.Validate over every line and reports the first failure.
func (d EntryDraft) ValidateLines() error {
	if len(d.Lines) < 2 {
		return fmt.Errorf("entry must have at least two lines, got %d", len(d.Lines))
	}
	for i, l := range d.Lines {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("line %d (%s): %w", i+1, l.AccountCode, err)
		}
	}
	return nil
}

// PostingResult is returned by the idempotent poster.
// Posted is false when the source had already been posted; Entry is then the existing entry.
type PostingResult struct {
	Posted bool          `json:"posted"`
	Entry  *JournalEntry `json:"entry,omitempty"`
}

// SystemActor is recorded as created_by when a posting has no human or producer actor,
// e.g. entries posted by the queue scheduler.
const SystemActor = "system"
