package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/autoledger/internal/core/domain"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/core/posting"
	"github.com/SscSPs/autoledger/internal/core/services"
	"github.com/SscSPs/autoledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var eventDate = time.Date(2025, 11, 14, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ledgerEnv is a fully wired set of services over one in-memory store with the default chart seeded.
type ledgerEnv struct {
	store    *memory.Store
	chart    portssvc.ChartSvcFacade
	ledger   portssvc.LedgerSvcFacade
	poster   portssvc.PosterSvc
	producer portssvc.ProducerSvc
	recon    portssvc.ReconciliationService
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()

	store := memory.New()
	env := &ledgerEnv{store: store}
	env.chart = services.NewChartService(store)
	env.ledger = services.NewLedgerService(store, env.chart)
	env.poster = services.NewPosterService(posting.NewEngine(nil), env.ledger, env.chart, store)
	env.producer = services.NewProducerService(env.poster)
	env.recon = services.NewReconciliationService(store, store)

	_, err := env.chart.SeedChart(context.Background(), posting.DefaultMapping().SeedAccounts(), "seed")
	require.NoError(t, err)
	return env
}

func cashSale(id string) domain.PosSale {
	return domain.PosSale{
		SaleID:     id,
		SaleNumber: "POS-" + id,
		SaleDate:   eventDate,
		StoreCode:  "MAIN",
		CashierID:  "cashier-7",
		Items:      []domain.PosSaleItem{{ItemID: id + "-1", Name: "Cement", Quantity: dec("2"), LineTotal: dec("80"), CostAmount: dec("50")}},
		Subtotal:   dec("80"),
		TaxTotal:   dec("20"),
		Total:      dec("100"),
		Payments:   []domain.PosPayment{{Method: "cash", Amount: dec("100")}},
	}
}

func cashRefund(id, saleID string) domain.PosRefund {
	return domain.PosRefund{
		RefundID:       id,
		RefundNumber:   "REF-" + id,
		RefundDate:     eventDate.Add(24 * time.Hour),
		OriginalSaleID: saleID,
		StoreCode:      "MAIN",
		RefundMethod:   "cash",
		Items: []domain.PosRefundItem{{
			SaleItemID: saleID + "-1", Name: "Cement", Quantity: dec("1"),
			Amount: dec("40"), TaxAmount: dec("10"), CostAmount: dec("25"), Restock: true,
		}},
		ApprovedBy: "manager-1",
	}
}

// draftLines is a terse way to build two-line drafts in ledger tests.
func draftLines(debitCode, creditCode, amount string) []domain.DraftLine {
	return []domain.DraftLine{
		{AccountCode: debitCode, DebitAmount: dec(amount), CreditAmount: decimal.Zero},
		{AccountCode: creditCode, DebitAmount: decimal.Zero, CreditAmount: dec(amount)},
	}
}
