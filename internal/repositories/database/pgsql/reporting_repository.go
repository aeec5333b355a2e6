package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	"github.com/SscSPs/autoledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

const dateLayout = "2006-01-02"

// originTables maps source types to the producer table and key column they are loaded from.
var originTables = map[domain.SourceType][2]string{
	domain.SourcePosSale:           {"pos_sales", "sale_id"},
	domain.SourcePosRefund:         {"pos_refunds", "refund_id"},
	domain.SourceFieldReport:       {"field_reports", "report_id"},
	domain.SourceMaterialsPurchase: {"materials_purchases", "purchase_id"},
}

// GetTrialBalanceData sums every account's lines from entries dated on or before asOf
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.code,
			a.name AS account_name,
			a.account_type,
			COALESCE(SUM(CASE WHEN e.entry_id IS NOT NULL THEN l.debit_amount ELSE 0 END), 0) AS total_debit,
			COALESCE(SUM(CASE WHEN e.entry_id IS NOT NULL THEN l.credit_amount ELSE 0 END), 0) AS total_credit
		FROM accounts a
		LEFT JOIN journal_lines l ON l.account_id = a.account_id
		LEFT JOIN journal_entries e ON e.entry_id = l.entry_id AND e.entry_date <= $1::date
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code
	`

	rows, err := r.Pool.Query(ctx, query, asOf.UTC().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("error querying trial balance data: %w", err)
	}
	defer rows.Close()

	result := make([]domain.TrialBalanceRow, 0)
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType string

		if err := rows.Scan(
			&row.AccountID,
			&row.Code,
			&row.AccountName,
			&accountType,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, fmt.Errorf("error scanning trial balance row: %w", err)
		}

		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}
	return result, nil
}

// ListUnreconciled finds origin rows and queue items of one type that never reached the ledger
func (r *reportingRepository) ListUnreconciled(ctx context.Context, sourceType domain.SourceType, limit int) ([]domain.UnreconciledSource, error) {
	sources := `SELECT source_id FROM outbox_items WHERE source_type = $1`
	if origin, ok := originTables[sourceType]; ok {
		sources = fmt.Sprintf(`SELECT %s AS source_id FROM %s UNION %s`, origin[1], origin[0], sources)
	}

	var maxRows *int
	if limit > 0 {
		maxRows = &limit
	}

	query := `
		WITH sources AS (` + sources + `)
		SELECT s.source_id, o.status, o.attempts, o.last_error
		FROM sources s
		LEFT JOIN journal_entries e ON e.source_type = $1 AND e.source_id = s.source_id
		LEFT JOIN outbox_items o ON o.source_type = $1 AND o.source_id = s.source_id
		WHERE e.entry_id IS NULL
		ORDER BY s.source_id
		LIMIT $2
	`
	rows, err := r.Pool.Query(ctx, query, string(sourceType), maxRows)
	if err != nil {
		return nil, fmt.Errorf("error querying unreconciled %s: %w", sourceType, err)
	}
	defer rows.Close()

	result := make([]domain.UnreconciledSource, 0)
	for rows.Next() {
		u := domain.UnreconciledSource{SourceType: sourceType}
		var status *string
		if err := rows.Scan(&u.SourceID, &status, &u.Attempts, &u.LastError); err != nil {
			return nil, fmt.Errorf("error scanning unreconciled row: %w", err)
		}
		if status != nil {
			s := domain.OutboxStatus(*status)
			u.QueueStatus = &s
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unreconciled rows: %w", err)
	}
	return result, nil
}

// ListAccountLedger pages through an account's lines. The running balance is computed over the
// whole history by a window function, so later pages continue from earlier ones.
func (r *reportingRepository) ListAccountLedger(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.AccountLedgerLine, *string, error) {
	args := []any{accountID}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	query := `
		WITH ledger AS (
			SELECT
				l.line_id, e.entry_id, e.entry_date, e.source_type, e.source_id,
				COALESCE(NULLIF(l.memo, ''), e.memo) AS memo,
				l.debit_amount, l.credit_amount, e.created_at, l.line_no,
				SUM(l.debit_amount - l.credit_amount) OVER (
					ORDER BY e.entry_date, e.created_at, e.entry_id, l.line_no
					ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW
				) AS running_balance
			FROM journal_lines l
			JOIN journal_entries e ON e.entry_id = l.entry_id
			WHERE l.account_id = $1
		)
		SELECT line_id, entry_id, entry_date, source_type, source_id, memo,
			debit_amount, credit_amount, running_balance, created_at, line_no
		FROM ledger
	`
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		query += fmt.Sprintf(" WHERE (entry_date, created_at, entry_id, line_no) > (%s::date, %s, %s, %s)",
			arg(c.Date.UTC().Format(dateLayout)), arg(c.CreatedAt), arg(c.ID), arg(c.Seq))
	}
	query += " ORDER BY entry_date, created_at, entry_id, line_no"
	if limit > 0 {
		query += " LIMIT " + arg(limit)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying ledger for account %s: %w", accountID, err)
	}
	defer rows.Close()

	lines := make([]domain.AccountLedgerLine, 0)
	var last pagination.Cursor
	for rows.Next() {
		var l domain.AccountLedgerLine
		var sourceType string
		var lineNo int
		if err := rows.Scan(
			&l.LineID, &l.EntryID, &l.EntryDate, &sourceType, &l.SourceID, &l.Memo,
			&l.DebitAmount, &l.CreditAmount, &l.RunningBalance, &l.CreatedAt, &lineNo,
		); err != nil {
			return nil, nil, fmt.Errorf("error scanning ledger row: %w", err)
		}
		l.SourceType = domain.SourceType(sourceType)
		lines = append(lines, l)
		last = pagination.Cursor{Date: l.EntryDate, CreatedAt: l.CreatedAt, ID: l.EntryID, Seq: lineNo}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}
	return lines, pagination.NextToken(len(lines), limit, last), nil
}

// ListUnbalancedEntries is a consistency probe; a healthy ledger returns nothing
func (r *reportingRepository) ListUnbalancedEntries(ctx context.Context) ([]domain.UnbalancedEntry, error) {
	query := `
		SELECT e.entry_id, e.source_type, e.source_id,
			COALESCE(SUM(l.debit_amount), 0) AS total_debit,
			COALESCE(SUM(l.credit_amount), 0) AS total_credit
		FROM journal_entries e
		LEFT JOIN journal_lines l ON l.entry_id = e.entry_id
		GROUP BY e.entry_id, e.source_type, e.source_id
		HAVING COALESCE(SUM(l.debit_amount), 0) <> COALESCE(SUM(l.credit_amount), 0)
		ORDER BY e.entry_id
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying unbalanced entries: %w", err)
	}
	defer rows.Close()

	result := make([]domain.UnbalancedEntry, 0)
	for rows.Next() {
		var u domain.UnbalancedEntry
		var sourceType string
		if err := rows.Scan(&u.EntryID, &sourceType, &u.SourceID, &u.TotalDebit, &u.TotalCredit); err != nil {
			return nil, fmt.Errorf("error scanning unbalanced entry: %w", err)
		}
		u.SourceType = domain.SourceType(sourceType)
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unbalanced entries: %w", err)
	}
	return result, nil
}
