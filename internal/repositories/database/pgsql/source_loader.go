package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxSourceLoader struct {
	BaseRepository
}

// newPgxSourceLoader creates a reader over the producer-owned origin tables.
func newPgxSourceLoader(pool *pgxpool.Pool) portsrepo.SourceLoader {
	return &pgxSourceLoader{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SourceLoader = (*pgxSourceLoader)(nil)

func (r *pgxSourceLoader) LoadSource(ctx context.Context, sourceType domain.SourceType, sourceID string) (any, error) {
	var (
		payload any
		err     error
	)
	switch sourceType {
	case domain.SourcePosSale:
		payload, err = r.loadSale(ctx, sourceID)
	case domain.SourcePosRefund:
		payload, err = r.loadRefund(ctx, sourceID)
	case domain.SourceFieldReport:
		payload, err = r.loadFieldReport(ctx, sourceID)
	case domain.SourceMaterialsPurchase:
		payload, err = r.loadPurchase(ctx, sourceID)
	default:
		return nil, fmt.Errorf("%w: %s has no origin table", apperrors.ErrUnmappablePosting, sourceType)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", sourceType, sourceID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", sourceType, sourceID, err)
	}
	return payload, nil
}

func (r *pgxSourceLoader) loadSale(ctx context.Context, saleID string) (*domain.PosSale, error) {
	var s domain.PosSale
	err := r.Pool.QueryRow(ctx, `
		SELECT sale_id, sale_number, sale_date, store_code, store_name, customer_name, cashier_id,
			subtotal, discount_total, tax_total, total
		FROM pos_sales WHERE sale_id = $1;
	`, saleID).Scan(
		&s.SaleID, &s.SaleNumber, &s.SaleDate, &s.StoreCode, &s.StoreName, &s.CustomerName, &s.CashierID,
		&s.Subtotal, &s.DiscountTotal, &s.TaxTotal, &s.Total,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT sale_item_id, name, quantity, line_total, cost_amount
		FROM pos_sale_items WHERE sale_id = $1 ORDER BY sale_item_id;
	`, saleID)
	if err != nil {
		return nil, err
	}
	s.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PosSaleItem, error) {
		var it domain.PosSaleItem
		err := row.Scan(&it.ItemID, &it.Name, &it.Quantity, &it.LineTotal, &it.CostAmount)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("sale items: %w", err)
	}

	s.Payments, err = r.salePayments(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pgxSourceLoader) salePayments(ctx context.Context, saleID string) ([]domain.PosPayment, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT method, amount FROM pos_sale_payments WHERE sale_id = $1 ORDER BY payment_id;
	`, saleID)
	if err != nil {
		return nil, err
	}
	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PosPayment, error) {
		var p domain.PosPayment
		err := row.Scan(&p.Method, &p.Amount)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("sale payments: %w", err)
	}
	return payments, nil
}

func (r *pgxSourceLoader) loadRefund(ctx context.Context, refundID string) (*domain.PosRefund, error) {
	var p domain.PosRefund
	err := r.Pool.QueryRow(ctx, `
		SELECT refund_id, refund_number, refund_date, original_sale_id, store_code, reason, refund_method, approved_by
		FROM pos_refunds WHERE refund_id = $1;
	`, refundID).Scan(
		&p.RefundID, &p.RefundNumber, &p.RefundDate, &p.OriginalSaleID, &p.StoreCode, &p.Reason, &p.RefundMethod, &p.ApprovedBy,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT sale_item_id, name, quantity, amount, discount_amount, tax_amount, cost_amount, restock
		FROM pos_refund_items WHERE refund_id = $1 ORDER BY refund_item_id;
	`, refundID)
	if err != nil {
		return nil, err
	}
	p.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PosRefundItem, error) {
		var it domain.PosRefundItem
		err := row.Scan(&it.SaleItemID, &it.Name, &it.Quantity, &it.Amount, &it.DiscountAmount, &it.TaxAmount, &it.CostAmount, &it.Restock)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("refund items: %w", err)
	}

	// original_method is resolved against the posted sale by the poster
	return &p, nil
}

func (r *pgxSourceLoader) loadFieldReport(ctx context.Context, reportID string) (*domain.FieldReportCompletion, error) {
	var f domain.FieldReportCompletion
	err := r.Pool.QueryRow(ctx, `
		SELECT report_id, report_date, site_name, client_name, contract_sum, rig_fee_charged, materials_income,
			cash_received, mobile_money_received, bank_deposited,
			total_wages, materials_cost, operating_expenses, costs_paid, created_by
		FROM field_reports WHERE report_id = $1;
	`, reportID).Scan(
		&f.ReportID, &f.ReportDate, &f.SiteName, &f.ClientName, &f.ContractSum, &f.RigFeeCharged, &f.MaterialsIncome,
		&f.CashReceived, &f.MobileMoneyReceived, &f.BankDeposited,
		&f.TotalWages, &f.MaterialsCost, &f.OperatingExpenses, &f.CostsPaid, &f.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *pgxSourceLoader) loadPurchase(ctx context.Context, purchaseID string) (*domain.MaterialsPurchase, error) {
	var m domain.MaterialsPurchase
	err := r.Pool.QueryRow(ctx, `
		SELECT purchase_id, purchase_date, supplier, description, quantity, unit_cost, paid_amount, created_by
		FROM materials_purchases WHERE purchase_id = $1;
	`, purchaseID).Scan(
		&m.PurchaseID, &m.PurchaseDate, &m.Supplier, &m.Description, &m.Quantity, &m.UnitCost, &m.PaidAmount, &m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
