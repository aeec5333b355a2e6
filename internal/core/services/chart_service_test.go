package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/SscSPs/autoledger/internal/core/posting"
	"github.com/SscSPs/autoledger/internal/core/services"
	"github.com/SscSPs/autoledger/internal/dto"
	"github.com/SscSPs/autoledger/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChart_SeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	chart := services.NewChartService(memory.New())
	seed := posting.DefaultMapping().SeedAccounts()

	created, err := chart.SeedChart(ctx, seed, "deploy")
	require.NoError(t, err)
	assert.Equal(t, len(seed), created)

	created, err = chart.SeedChart(ctx, seed, "deploy")
	require.NoError(t, err)
	assert.Zero(t, created)

	accounts, err := chart.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, len(seed))

	revenue, err := chart.GetAccount(ctx, "4020")
	require.NoError(t, err)
	assert.Equal(t, domain.Credit, revenue.NormalBalance)
	assert.Equal(t, "deploy", revenue.CreatedBy)
	assert.NotEmpty(t, revenue.AccountID)
}

func TestChart_SeedRejectsBadAccounts(t *testing.T) {
	chart := services.NewChartService(memory.New())

	_, err := chart.SeedChart(context.Background(), []domain.Account{{Code: "1", Name: "X", AccountType: "ASSETS"}}, "deploy")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = chart.SeedChart(context.Background(), []domain.Account{{Code: "1", AccountType: domain.Asset}}, "deploy")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestChart_UpdateAccount(t *testing.T) {
	env := newLedgerEnv(t)
	ctx := context.Background()

	name := "  Shop Sales  "
	inactive := false
	acc, err := env.chart.UpdateAccount(ctx, "4020", dto.UpdateAccountRequest{Name: &name, IsActive: &inactive}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Shop Sales", acc.Name)
	assert.False(t, acc.IsActive)
	assert.Equal(t, "admin", acc.LastUpdatedBy)

	// a posting needing the deactivated account is unmappable and leaves nothing behind
	_, err = env.poster.Post(ctx, domain.SourcePosSale, "S-1", cashSale("S-1"), "")
	assert.ErrorIs(t, err, apperrors.ErrUnmappablePosting)

	active := true
	_, err = env.chart.UpdateAccount(ctx, "4020", dto.UpdateAccountRequest{IsActive: &active}, "admin")
	require.NoError(t, err)
	res, err := env.poster.Post(ctx, domain.SourcePosSale, "S-1", cashSale("S-1"), "")
	require.NoError(t, err)
	assert.True(t, res.Posted)

	empty := " "
	_, err = env.chart.UpdateAccount(ctx, "4020", dto.UpdateAccountRequest{Name: &empty}, "admin")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.chart.UpdateAccount(ctx, "9999", dto.UpdateAccountRequest{}, "admin")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
