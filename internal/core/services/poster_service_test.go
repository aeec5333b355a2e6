package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoster_PostsCashSale(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	res, err := env.poster.Post(ctx, domain.SourcePosSale, "S-1", cashSale("S-1"), "")
	require.NoError(t, err)
	require.True(t, res.Posted)
	require.NotNil(t, res.Entry)

	assert.Equal(t, "cashier-7", res.Entry.CreatedBy)
	debits, credits := res.Entry.Totals()
	assert.True(t, debits.Equal(credits))
	assert.Equal(t, "150", debits.String()) // 100 tender + 50 cost of goods

	stored, err := env.ledger.FindEntryBySource(ctx, domain.SourcePosSale, "S-1")
	require.NoError(t, err)
	assert.Equal(t, res.Entry.EntryID, stored.EntryID)
}

func TestPoster_ActorOverridesPayloadCreator(t *testing.T) {
	env := newLedgerEnv(t)

	res, err := env.poster.Post(context.Background(), domain.SourcePosSale, "S-1", cashSale("S-1"), "admin-2")
	require.NoError(t, err)
	assert.Equal(t, "admin-2", res.Entry.CreatedBy)
}

func TestPoster_RepeatedCallsPostOnce(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	first, err := env.poster.Post(ctx, domain.SourcePosSale, "S-1", cashSale("S-1"), "")
	require.NoError(t, err)
	require.True(t, first.Posted)

	for i := 0; i < 5; i++ {
		again, err := env.poster.Post(ctx, domain.SourcePosSale, "S-1", cashSale("S-1"), "")
		require.NoError(t, err)
		assert.False(t, again.Posted)
		require.NotNil(t, again.Entry)
		assert.Equal(t, first.Entry.EntryID, again.Entry.EntryID)
	}

	report, err := env.recon.TrialBalance(ctx, eventDate)
	require.NoError(t, err)
	cash := rowFor(t, report, "1000")
	assert.Equal(t, "100", cash.Debit.String(), "cash must be debited exactly once")
}

func TestPoster_ConcurrentCallsPostOnce(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		posted  int
		entries = map[string]bool{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.poster.Post(ctx, domain.SourcePosSale, "S-1", cashSale("S-1"), "")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Posted {
				posted++
			}
			entries[res.Entry.EntryID] = true
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, posted)
	assert.Len(t, entries, 1)
}

func TestPoster_Errors(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	_, err := env.poster.Post(ctx, "invoice", "X", nil, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.poster.Post(ctx, domain.SourcePosSale, "", cashSale("S-1"), "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.poster.Post(ctx, domain.SourcePosSale, "S-1", domain.PosRefund{}, "")
	assert.ErrorIs(t, err, apperrors.ErrUnmappablePosting)

	sale := cashSale("S-2")
	sale.Total = dec("90")
	_, err = env.poster.Post(ctx, domain.SourcePosSale, "S-2", sale, "")
	assert.ErrorIs(t, err, apperrors.ErrUnmappablePosting)

	_, err = env.ledger.FindEntryBySource(ctx, domain.SourcePosSale, "S-2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "failed postings must leave no trace")
}

func TestPoster_ReverseEntry(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	original, err := env.poster.Post(ctx, domain.SourcePosSale, "S-1", cashSale("S-1"), "")
	require.NoError(t, err)

	rev, err := env.poster.ReverseEntry(ctx, original.Entry.EntryID, "", "admin")
	require.NoError(t, err)
	require.True(t, rev.Posted)
	assert.Equal(t, domain.SourceReversal, rev.Entry.SourceType)
	assert.Equal(t, original.Entry.EntryID, rev.Entry.SourceID)
	assert.Equal(t, "admin", rev.Entry.CreatedBy)
	require.Len(t, rev.Entry.Lines, len(original.Entry.Lines))
	for i, l := range rev.Entry.Lines {
		assert.True(t, l.DebitAmount.Equal(original.Entry.Lines[i].CreditAmount))
		assert.True(t, l.CreditAmount.Equal(original.Entry.Lines[i].DebitAmount))
	}

	again, err := env.poster.ReverseEntry(ctx, original.Entry.EntryID, "", "admin")
	require.NoError(t, err)
	assert.False(t, again.Posted)
	assert.Equal(t, rev.Entry.EntryID, again.Entry.EntryID)

	_, err = env.poster.ReverseEntry(ctx, rev.Entry.EntryID, "", "admin")
	assert.ErrorIs(t, err, apperrors.ErrUnmappablePosting)

	_, err = env.poster.ReverseEntry(ctx, "missing", "", "admin")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// the original plus its reversal nets every account to zero
	report, err := env.recon.TrialBalance(ctx, rev.Entry.EntryDate)
	require.NoError(t, err)
	for _, row := range report.Rows {
		assert.True(t, row.Balance.IsZero(), "account %s balance %s", row.Code, row.Balance)
	}
}

func rowFor(t *testing.T, report *domain.TrialBalanceReport, code string) domain.TrialBalanceRow {
	t.Helper()
	for _, row := range report.Rows {
		if row.Code == code {
			return row
		}
	}
	t.Fatalf("no trial balance row for %s", code)
	return domain.TrialBalanceRow{}
}
