package dto

import (
	"time"

	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineResponse is one posting of an entry.
type JournalLineResponse struct {
	LineID       string          `json:"lineID"`
	LineNo       int             `json:"lineNo"`
	AccountCode  string          `json:"accountCode"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Memo         string          `json:"memo,omitempty"`
}

// JournalEntryResponse is a posted entry with its lines and totals.
type JournalEntryResponse struct {
	EntryID    string            `json:"entryID"`
	EntryDate  string            `json:"entryDate"` // YYYY-MM-DD
	SourceType domain.SourceType `json:"sourceType"`
	SourceID   string            `json:"sourceID"`

	RelatedSourceType domain.SourceType `json:"relatedSourceType,omitempty"`
	RelatedSourceID   string            `json:"relatedSourceID,omitempty"`

	Memo        string                `json:"memo"`
	CreatedBy   string                `json:"createdBy"`
	CreatedAt   time.Time             `json:"createdAt"`
	TotalDebit  decimal.Decimal       `json:"totalDebit"`
	TotalCredit decimal.Decimal       `json:"totalCredit"`
	Lines       []JournalLineResponse `json:"lines"`
}

// PostingResponse reports whether a call created the entry or found it already posted.
type PostingResponse struct {
	Posted bool                  `json:"posted"`
	Entry  *JournalEntryResponse `json:"entry,omitempty"`
}

// ReverseEntryRequest is the optional body of a reversal.
type ReverseEntryRequest struct {
	Memo string `json:"memo" binding:"max=500"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(entry *domain.JournalEntry) JournalEntryResponse {
	debits, credits := entry.Totals()
	resp := JournalEntryResponse{
		EntryID:    entry.EntryID,
		EntryDate:  entry.EntryDate.Format(time.DateOnly),
		SourceType: entry.SourceType,
		SourceID:   entry.SourceID,

		RelatedSourceType: entry.RelatedSourceType,
		RelatedSourceID:   entry.RelatedSourceID,

		Memo:        entry.Memo,
		CreatedBy:   entry.CreatedBy,
		CreatedAt:   entry.CreatedAt,
		TotalDebit:  debits,
		TotalCredit: credits,
		Lines:       make([]JournalLineResponse, len(entry.Lines)),
	}
	for i, l := range entry.Lines {
		resp.Lines[i] = JournalLineResponse{
			LineID:       l.LineID,
			LineNo:       l.LineNo,
			AccountCode:  l.AccountCode,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Memo:         l.Memo,
		}
	}
	return resp
}

// ToPostingResponse converts a poster result.
func ToPostingResponse(result domain.PostingResult) PostingResponse {
	resp := PostingResponse{Posted: result.Posted}
	if result.Entry != nil {
		entry := ToJournalEntryResponse(result.Entry)
		resp.Entry = &entry
	}
	return resp
}
