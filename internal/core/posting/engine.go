// Package posting turns business events into balanced journal entry drafts.
// Everything here is pure: no I/O, and the same input always yields the same draft.
package posting

import (
	"fmt"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Engine builds entry drafts from event payloads using an account mapping.
type Engine struct {
	mapping *Mapping
}

// NewEngine creates an Engine. A nil mapping uses DefaultMapping.
func NewEngine(mapping *Mapping) *Engine {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	return &Engine{mapping: mapping}
}

// Mapping returns the mapping the engine was built with.
func (e *Engine) Mapping() *Mapping {
	return e.mapping
}

// Build produces a balanced draft for the event. chart is a snapshot of the chart of accounts;
// every role a rule needs must resolve to an active account in it.
func (e *Engine) Build(sourceType domain.SourceType, sourceID string, payload any, chart domain.Chart) (domain.EntryDraft, error) {
	if sourceID == "" {
		return domain.EntryDraft{}, unmappable("source id is required")
	}

	b := &lineBuilder{mapping: e.mapping, chart: chart}
	var (
		date    time.Time
		memo    string
		by      string
		related string
	)

	switch sourceType {
	case domain.SourceFieldReport:
		p, ok := payloadAs[domain.FieldReportCompletion](payload)
		if !ok {
			return domain.EntryDraft{}, wrongPayload(sourceType, payload)
		}
		date, memo, by = p.ReportDate, fieldReportMemo(p), p.CreatedBy
		buildFieldReport(b, p)
	case domain.SourceMaterialsPurchase:
		p, ok := payloadAs[domain.MaterialsPurchase](payload)
		if !ok {
			return domain.EntryDraft{}, wrongPayload(sourceType, payload)
		}
		date, memo, by = p.PurchaseDate, "Materials purchase "+sourceID, p.CreatedBy
		buildMaterialsPurchase(b, p)
	case domain.SourcePosSale:
		p, ok := payloadAs[domain.PosSale](payload)
		if !ok {
			return domain.EntryDraft{}, wrongPayload(sourceType, payload)
		}
		date, memo, by = p.SaleDate, "POS sale "+firstNonEmpty(p.SaleNumber, sourceID), p.CashierID
		buildPosSale(b, p)
	case domain.SourcePosRefund:
		p, ok := payloadAs[domain.PosRefund](payload)
		if !ok {
			return domain.EntryDraft{}, wrongPayload(sourceType, payload)
		}
		date, memo, by = p.RefundDate, "POS refund "+firstNonEmpty(p.RefundNumber, sourceID), p.ApprovedBy
		related = p.OriginalSaleID
		buildPosRefund(b, p)
	case domain.SourcePayrollPayment:
		p, ok := payloadAs[domain.PayrollPayment](payload)
		if !ok {
			return domain.EntryDraft{}, wrongPayload(sourceType, payload)
		}
		date, memo, by = p.PaymentDate, "Payroll payment: "+p.WorkerName, p.CreatedBy
		b.requirePositive("amount", p.Amount)
		b.requireMoney("amount", p.Amount)
		b.debit(RoleWagesExpense, p.Amount, "Wage payment to "+p.WorkerName)
		b.credit(b.mapping.TenderRole(p.Method), p.Amount, "")
	case domain.SourceLoanDisbursement:
		p, ok := payloadAs[domain.LoanDisbursement](payload)
		if !ok {
			return domain.EntryDraft{}, wrongPayload(sourceType, payload)
		}
		date, memo, by = p.IssueDate, "Loan disbursement to "+p.WorkerName, p.CreatedBy
		b.requirePositive("amount", p.Amount)
		b.requireMoney("amount", p.Amount)
		b.debit(RoleWorkerLoans, p.Amount, "Loan receivable from "+p.WorkerName)
		b.credit(b.mapping.TenderRole(p.Method), p.Amount, "")
	case domain.SourceLoanRepayment:
		p, ok := payloadAs[domain.LoanRepayment](payload)
		if !ok {
			return domain.EntryDraft{}, wrongPayload(sourceType, payload)
		}
		date, memo, by = p.RepaymentDate, "Loan repayment from "+p.WorkerName, p.CreatedBy
		b.requirePositive("amount", p.Amount)
		b.requireMoney("amount", p.Amount)
		b.debit(b.mapping.TenderRole(p.Method), p.Amount, "")
		b.credit(RoleWorkerLoans, p.Amount, "Loan repayment from "+p.WorkerName)
	case domain.SourceReversal:
		p, ok := payloadAs[domain.JournalEntry](payload)
		if !ok {
			return domain.EntryDraft{}, wrongPayload(sourceType, payload)
		}
		if p.EntryID != sourceID {
			return domain.EntryDraft{}, unmappable(fmt.Sprintf("reversal source id %s does not match entry %s", sourceID, p.EntryID))
		}
		return BuildReversal(p, "", "", p.EntryDate)
	default:
		return domain.EntryDraft{}, unmappable(fmt.Sprintf("no posting rule for source type %q", sourceType))
	}

	if date.IsZero() {
		b.fail("event date is required")
	}
	if b.err != nil {
		return domain.EntryDraft{}, b.err
	}

	draft := domain.EntryDraft{
		SourceType: sourceType,
		SourceID:   sourceID,
		EntryDate:  date,
		Memo:       memo,
		CreatedBy:  by,
		Lines:      b.lines,
	}
	if related != "" {
		draft.RelatedSourceType, draft.RelatedSourceID = domain.SourcePosSale, related
	}
	return draft, checkDraft(draft)
}

// BuildReversal returns a draft that cancels entry by swapping the side of every line.
// The reversal is keyed by (reversal, entry id) so an entry can be reversed at most once.
func BuildReversal(entry domain.JournalEntry, memo, by string, date time.Time) (domain.EntryDraft, error) {
	if entry.EntryID == "" {
		return domain.EntryDraft{}, unmappable("reversal requires the original entry id")
	}
	if entry.SourceType == domain.SourceReversal {
		return domain.EntryDraft{}, unmappable("a reversal entry cannot itself be reversed")
	}
	if memo == "" {
		memo = fmt.Sprintf("Reversal of %s %s", entry.SourceType, entry.SourceID)
	}
	if by == "" {
		by = entry.CreatedBy
	}

	lines := make([]domain.DraftLine, 0, len(entry.Lines))
	for _, l := range entry.Lines {
		lines = append(lines, domain.DraftLine{
			AccountCode:  l.AccountCode,
			DebitAmount:  l.CreditAmount,
			CreditAmount: l.DebitAmount,
			Memo:         l.Memo,
		})
	}

	draft := domain.EntryDraft{
		SourceType:        domain.SourceReversal,
		SourceID:          entry.EntryID,
		EntryDate:         date,
		Memo:              memo,
		CreatedBy:         by,
		RelatedSourceType: entry.SourceType,
		RelatedSourceID:   entry.SourceID,
		Lines:             lines,
	}
	return draft, checkDraft(draft)
}

func checkDraft(draft domain.EntryDraft) error {
	if len(draft.Lines) < 2 {
		return unmappable("event produces no postings")
	}
	if !draft.IsBalanced() {
		debits, credits := draft.Totals()
		return fmt.Errorf("%w: %s %s debits %s credits %s",
			apperrors.ErrImbalancedEntry, draft.SourceType, draft.SourceID, debits.StringFixed(2), credits.StringFixed(2))
	}
	return nil
}

// lineBuilder accumulates draft lines, resolving roles against the chart.
// The first failure sticks; later calls become no-ops.
type lineBuilder struct {
	mapping *Mapping
	chart   domain.Chart
	lines   []domain.DraftLine
	err     error
}

func (b *lineBuilder) debit(role Role, amount decimal.Decimal, memo string) {
	b.add(role, amount, domain.Debit, memo)
}

func (b *lineBuilder) credit(role Role, amount decimal.Decimal, memo string) {
	b.add(role, amount, domain.Credit, memo)
}

func (b *lineBuilder) add(role Role, amount decimal.Decimal, side domain.Side, memo string) {
	if b.err != nil {
		return
	}
	amount = domain.RoundMoney(amount)
	if amount.IsZero() {
		return
	}
	if amount.IsNegative() {
		b.fail(fmt.Sprintf("negative amount %s for %s", amount.StringFixed(2), role))
		return
	}
	code, ok := b.mapping.AccountCode(role)
	if !ok {
		b.fail(fmt.Sprintf("no account mapped for role %q", role))
		return
	}
	if _, ok := b.chart.Active(code); !ok {
		b.fail(fmt.Sprintf("account %s for role %q is missing or inactive", code, role))
		return
	}

	line := domain.DraftLine{AccountCode: code, Memo: memo}
	if side == domain.Debit {
		line.DebitAmount = amount
	} else {
		line.CreditAmount = amount
	}
	b.lines = append(b.lines, line)
}

func (b *lineBuilder) requireNonNegative(field string, amounts ...decimal.Decimal) {
	for _, a := range amounts {
		if a.IsNegative() {
			b.fail(field + " must not be negative")
			return
		}
	}
}

// requireMoney checks amounts are non-negative and carry no sub-cent precision.
func (b *lineBuilder) requireMoney(field string, amounts ...decimal.Decimal) {
	b.requireNonNegative(field, amounts...)
	for _, a := range amounts {
		if !domain.IsMinorUnitExact(a) {
			b.fail(field + " must not have more than two decimal places")
			return
		}
	}
}

func (b *lineBuilder) requirePositive(field string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		b.fail(field + " must be positive")
	}
}

func (b *lineBuilder) fail(reason string) {
	if b.err == nil {
		b.err = unmappable(reason)
	}
}

func unmappable(reason string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrUnmappablePosting, reason)
}

func wrongPayload(sourceType domain.SourceType, payload any) error {
	return unmappable(fmt.Sprintf("payload %T does not match source type %s", payload, sourceType))
}

// payloadAs accepts either a value or a non-nil pointer of the expected payload type.
func payloadAs[T any](payload any) (T, bool) {
	switch p := payload.(type) {
	case T:
		return p, true
	case *T:
		if p != nil {
			return *p, true
		}
	}
	var zero T
	return zero, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
