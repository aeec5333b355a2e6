package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciliation_TrialBalanceNetsToZero(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("S-%02d", i)
		_, err := env.poster.Post(ctx, domain.SourcePosSale, id, cashSale(id), "")
		require.NoError(t, err)
	}
	_, err := env.poster.Post(ctx, domain.SourcePosRefund, "R-1", cashRefund("R-1", "S-01"), "")
	require.NoError(t, err)
	_, err = env.poster.Post(ctx, domain.SourceMaterialsPurchase, "M-1", domain.MaterialsPurchase{
		PurchaseID: "M-1", PurchaseDate: eventDate, Description: "PVC pipes",
		Quantity: dec("12"), UnitCost: dec("4.50"), PaidAmount: dec("20"),
	}, "")
	require.NoError(t, err)

	report, err := env.recon.TrialBalance(ctx, eventDate.AddDate(0, 0, 7))
	require.NoError(t, err)

	assert.True(t, report.Balanced)
	assert.True(t, report.NetBalance.IsZero())
	sum := decimal.Zero
	for _, row := range report.Rows {
		sum = sum.Add(row.Balance)
	}
	assert.True(t, sum.IsZero(), "signed balances sum to %s", sum)

	assert.Equal(t, "1930", rowFor(t, report, "1000").Balance.String()) // 20 sales, less refund and purchase paid
	assert.Equal(t, "-34", rowFor(t, report, "2100").Balance.String())  // 54 purchased, 20 paid

	entries, err := env.recon.UnbalancedEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReconciliation_TrialBalanceAsOf(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	_, err := env.poster.Post(ctx, domain.SourcePosSale, "S-1", cashSale("S-1"), "")
	require.NoError(t, err)

	before, err := env.recon.TrialBalance(ctx, eventDate.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.True(t, before.TotalDebit.IsZero())

	// entries dated the same day are included
	sameDay, err := env.recon.TrialBalance(ctx, time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "150", sameDay.TotalDebit.String())
}

func TestReconciliation_Unreconciled(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	env.store.PutSource(domain.SourcePosSale, "S-1", cashSale("S-1"))
	env.store.PutSource(domain.SourcePosSale, "S-2", cashSale("S-2"))
	_, err := env.poster.Post(ctx, domain.SourcePosSale, "S-1", cashSale("S-1"), "")
	require.NoError(t, err)

	missing, err := env.recon.Unreconciled(ctx, domain.SourcePosSale, 0)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "S-2", missing[0].SourceID)
	assert.Nil(t, missing[0].QueueStatus)

	_, err = env.recon.Unreconciled(ctx, "invoice", 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReconciliation_AccountLedger(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	for _, id := range []string{"S-1", "S-2", "S-3"} {
		_, err := env.poster.Post(ctx, domain.SourcePosSale, id, cashSale(id), "")
		require.NoError(t, err)
	}

	// credit-normal revenue reads positive
	lines, next, err := env.recon.AccountLedger(ctx, "4020", 2, nil)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.NotNil(t, next)
	assert.Equal(t, "80", lines[0].RunningBalance.String())
	assert.Equal(t, "160", lines[1].RunningBalance.String())

	rest, next, err := env.recon.AccountLedger(ctx, "4020", 2, next)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, next)
	assert.Equal(t, "240", rest[0].RunningBalance.String())

	// debit-normal cash reads positive too
	cash, _, err := env.recon.AccountLedger(ctx, "1000", 0, nil)
	require.NoError(t, err)
	require.Len(t, cash, 3)
	assert.Equal(t, "300", cash[2].RunningBalance.String())

	_, _, err = env.recon.AccountLedger(ctx, "9999", 0, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
