package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/SscSPs/autoledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

func (s *Store) GetTrialBalanceData(_ context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCode := make(map[string]*domain.TrialBalanceRow, len(s.accounts))
	for code, acc := range s.accounts {
		byCode[code] = &domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			AccountName: acc.Name,
			AccountType: acc.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
	}
	for _, e := range s.entries {
		if e.EntryDate.After(asOf) {
			continue
		}
		for _, l := range e.Lines {
			row, ok := byCode[s.accountIDs[l.AccountID]]
			if !ok {
				continue
			}
			row.Debit = row.Debit.Add(l.DebitAmount)
			row.Credit = row.Credit.Add(l.CreditAmount)
		}
	}

	rows := make([]domain.TrialBalanceRow, 0, len(byCode))
	for _, row := range byCode {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return rows, nil
}

func (s *Store) ListUnreconciled(_ context.Context, sourceType domain.SourceType, limit int) ([]domain.UnreconciledSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	result := make([]domain.UnreconciledSource, 0)
	add := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		if _, posted := s.entryBySource[sourceKey{sourceType, id}]; posted {
			return
		}
		u := domain.UnreconciledSource{SourceType: sourceType, SourceID: id}
		if itemID, queued := s.outboxBySource[sourceKey{sourceType, id}]; queued {
			it := s.outbox[itemID]
			status, attempts := it.Status, it.Attempts
			u.QueueStatus = &status
			u.Attempts = &attempts
			u.LastError = it.LastError
		}
		result = append(result, u)
	}
	for key := range s.sources {
		if key.sourceType == sourceType {
			add(key.sourceID)
		}
	}
	for key := range s.outboxBySource {
		if key.sourceType == sourceType {
			add(key.sourceID)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].SourceID < result[j].SourceID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) ListAccountLedger(_ context.Context, accountID string, limit int, nextToken *string) ([]domain.AccountLedgerLine, *string, error) {
	var after *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		after = &c
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type posted struct {
		line  domain.AccountLedgerLine
		entry domain.JournalEntry
		no    int
	}
	all := make([]posted, 0)
	for _, e := range s.entries {
		for _, l := range e.Lines {
			if l.AccountID != accountID {
				continue
			}
			all = append(all, posted{
				entry: e,
				no:    l.LineNo,
				line: domain.AccountLedgerLine{
					LineID:       l.LineID,
					EntryID:      e.EntryID,
					EntryDate:    e.EntryDate,
					SourceType:   e.SourceType,
					SourceID:     e.SourceID,
					Memo:         firstNonEmpty(l.Memo, e.Memo),
					DebitAmount:  l.DebitAmount,
					CreditAmount: l.CreditAmount,
					CreatedAt:    e.CreatedAt,
				},
			})
		}
	}
	cursorOf := func(p posted) pagination.Cursor {
		return pagination.Cursor{Date: p.entry.EntryDate, CreatedAt: p.entry.CreatedAt, ID: p.entry.EntryID, Seq: p.no}
	}
	sort.Slice(all, func(i, j int) bool { return cursorLess(cursorOf(all[i]), cursorOf(all[j])) })

	running := decimal.Zero
	page := make([]domain.AccountLedgerLine, 0)
	var last pagination.Cursor
	for _, p := range all {
		running = running.Add(p.line.DebitAmount).Sub(p.line.CreditAmount)
		if after != nil && !cursorLess(*after, cursorOf(p)) {
			continue
		}
		if limit > 0 && len(page) == limit {
			break
		}
		p.line.RunningBalance = running
		page = append(page, p.line)
		last = cursorOf(p)
	}
	return page, pagination.NextToken(len(page), limit, last), nil
}

func (s *Store) ListUnbalancedEntries(_ context.Context) ([]domain.UnbalancedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.UnbalancedEntry, 0)
	for _, e := range s.entries {
		debits, credits := e.Totals()
		if !debits.Equal(credits) {
			result = append(result, domain.UnbalancedEntry{
				EntryID:     e.EntryID,
				SourceType:  e.SourceType,
				SourceID:    e.SourceID,
				TotalDebit:  debits,
				TotalCredit: credits,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryID < result[j].EntryID })
	return result, nil
}

func cursorLess(a, b pagination.Cursor) bool {
	switch {
	case !a.Date.Equal(b.Date):
		return a.Date.Before(b.Date)
	case !a.CreatedAt.Equal(b.CreatedAt):
		return a.CreatedAt.Before(b.CreatedAt)
	case a.ID != b.ID:
		return a.ID < b.ID
	default:
		return a.Seq < b.Seq
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
