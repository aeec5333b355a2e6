package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/SscSPs/autoledger/internal/core/posting"
	"github.com/shopspring/decimal"
)

// prepareRefund ties a refund to its posted sale before the rule engine sees it.
//
// The sale must already be in the ledger and not reversed. An original_method refund is
// resolved to the sale's largest tender. The refunded gross of this and every earlier,
// unreversed refund may not exceed the revenue the sale posted, and when the sale record
// is available each refunded line is checked against the sale line it returns.
func (s *posterService) prepareRefund(ctx context.Context, payload any, chart domain.Chart) (any, error) {
	refund, ok := refundPayload(payload)
	if !ok || refund.OriginalSaleID == "" {
		// the engine rejects both
		return payload, nil
	}
	saleID := refund.OriginalSaleID

	sale, err := s.ledger.FindEntryBySource(ctx, domain.SourcePosSale, saleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: sale %s", apperrors.ErrOriginalNotPosted, saleID)
		}
		return nil, err
	}
	if _, reversed, err := s.existing(ctx, domain.SourceReversal, sale.EntryID); err != nil {
		return nil, err
	} else if reversed {
		return nil, unmappableRefund("sale %s has been reversed", saleID)
	}

	if strings.EqualFold(strings.TrimSpace(refund.RefundMethod), posting.OriginalMethod) {
		method, ok := s.saleTender(sale)
		if !ok {
			return nil, unmappableRefund("sale %s has no tender line to refund through", saleID)
		}
		refund.RefundMethod = method
	}

	if err := s.checkRefundLines(ctx, refund); err != nil {
		return nil, err
	}

	earlier, err := s.ledger.ListRelatedEntries(ctx, domain.SourcePosSale, saleID)
	if err != nil {
		return nil, err
	}
	refunded := decimal.Zero
	for _, e := range earlier {
		if e.SourceType != domain.SourcePosRefund {
			continue
		}
		_, reversed, err := s.existing(ctx, domain.SourceReversal, e.EntryID)
		if err != nil {
			return nil, err
		}
		if !reversed {
			refunded = refunded.Add(incomeTotal(e, chart, domain.Debit))
		}
	}

	gross := decimal.Zero
	for _, it := range refund.Items {
		gross = gross.Add(it.Amount)
	}
	saleRevenue := incomeTotal(*sale, chart, domain.Credit)
	if refunded.Add(gross).GreaterThan(saleRevenue) {
		return nil, unmappableRefund("refunds of sale %s would total %s against sales revenue of %s",
			saleID, refunded.Add(gross).StringFixed(2), saleRevenue.StringFixed(2))
	}
	return refund, nil
}

// saleTender picks the method of the sale's largest tender debit, the first line on ties.
func (s *posterService) saleTender(sale *domain.JournalEntry) (string, bool) {
	mapping := s.engine.Mapping()
	var (
		method string
		best   decimal.Decimal
	)
	for _, l := range sale.Lines {
		if !l.DebitAmount.IsPositive() || (method != "" && !l.DebitAmount.GreaterThan(best)) {
			continue
		}
		if m, ok := mapping.TenderMethodForAccount(l.AccountCode); ok {
			method, best = m, l.DebitAmount
		}
	}
	return method, method != ""
}

// checkRefundLines compares each refunded line with the sale record, when the sale's
// producer keeps one. Sales posted only through the synchronous path have no record.
func (s *posterService) checkRefundLines(ctx context.Context, refund domain.PosRefund) error {
	if s.sources == nil {
		return nil
	}
	loaded, err := s.sources.LoadSource(ctx, domain.SourcePosSale, refund.OriginalSaleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrUnmappablePosting) {
			s.LogDebug(ctx, "No sale record to check refund lines against",
				slog.String("sale_id", refund.OriginalSaleID))
			return nil
		}
		return fmt.Errorf("failed to load sale %s for refund: %w", refund.OriginalSaleID, err)
	}

	var sale domain.PosSale
	switch v := loaded.(type) {
	case domain.PosSale:
		sale = v
	case *domain.PosSale:
		sale = *v
	default:
		return nil
	}

	lines := make(map[string]decimal.Decimal, len(sale.Items))
	for _, it := range sale.Items {
		lines[it.ItemID] = it.LineTotal
	}
	for _, it := range refund.Items {
		lineTotal, ok := lines[it.SaleItemID]
		if !ok {
			return unmappableRefund("refund item %s is not a line of sale %s", it.SaleItemID, refund.OriginalSaleID)
		}
		if it.Amount.GreaterThan(lineTotal) {
			return unmappableRefund("refund item %s amount %s exceeds the sale line total %s",
				it.SaleItemID, it.Amount.StringFixed(2), lineTotal.StringFixed(2))
		}
	}
	return nil
}

// incomeTotal sums one side of an entry's lines on income accounts.
func incomeTotal(e domain.JournalEntry, chart domain.Chart, side domain.Side) decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if chart[l.AccountCode].AccountType != domain.Income {
			continue
		}
		if side == domain.Debit {
			total = total.Add(l.DebitAmount)
		} else {
			total = total.Add(l.CreditAmount)
		}
	}
	return total
}

func refundPayload(payload any) (domain.PosRefund, bool) {
	switch p := payload.(type) {
	case domain.PosRefund:
		return p, true
	case *domain.PosRefund:
		if p != nil {
			return *p, true
		}
	}
	return domain.PosRefund{}, false
}

func unmappableRefund(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrUnmappablePosting, fmt.Sprintf(format, args...))
}
