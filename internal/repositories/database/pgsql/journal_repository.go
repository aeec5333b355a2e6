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

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and their lines.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func duplicateSourceErr(sourceType domain.SourceType, sourceID string) error {
	return fmt.Errorf("%w: %s %s", apperrors.ErrDuplicateSource, sourceType, sourceID)
}

// SaveEntry writes the entry and its lines in one transaction. Concurrent posters for the same
// source serialise on a transaction-scoped advisory lock; the unique constraint backs it up.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // no-op once committed

	// 1. Serialise on the idempotency key
	lockKey := string(entry.SourceType) + ":" + entry.SourceID
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, lockKey); err != nil {
		return apperrors.NewAppError(500, "failed to acquire posting lock for "+lockKey, err)
	}

	// 2. Existence check under the lock
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_entries WHERE source_type = $1 AND source_id = $2);`,
		string(entry.SourceType), entry.SourceID,
	).Scan(&exists)
	if err != nil {
		return apperrors.NewAppError(500, "failed to check existing entry for "+lockKey, err)
	}
	if exists {
		return duplicateSourceErr(entry.SourceType, entry.SourceID)
	}

	// 3. Insert the entry
	entryQuery := `
		INSERT INTO journal_entries (entry_id, entry_date, source_type, source_id, memo, created_by, created_at,
			related_source_type, related_source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''));
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.EntryDate,
		string(entry.SourceType),
		entry.SourceID,
		entry.Memo,
		entry.CreatedBy,
		entry.CreatedAt,
		string(entry.RelatedSourceType),
		entry.RelatedSourceID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateSourceErr(entry.SourceType, entry.SourceID)
		}
		return apperrors.NewAppError(500, "failed to insert journal entry "+entry.EntryID, err)
	}

	// 4. Batch insert the lines
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, line_no, account_id, debit_amount, credit_amount, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, line := range entry.Lines {
		batch.Queue(lineQuery,
			line.LineID,
			entry.EntryID,
			line.LineNo,
			line.AccountID,
			line.DebitAmount,
			line.CreditAmount,
			line.Memo,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < len(entry.Lines); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return apperrors.NewAppError(500, fmt.Sprintf("failed to insert line %d of entry %s", i+1, entry.EntryID), err)
		}
	}
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close line batch for entry "+entry.EntryID, err)
	}

	return r.Commit(ctx, tx)
}

const entryColumns = `entry_id, entry_date, source_type, source_id, memo, created_by, created_at,
	COALESCE(related_source_type, ''), COALESCE(related_source_id, '')`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	var sourceType, relatedType string
	err := row.Scan(&e.EntryID, &e.EntryDate, &sourceType, &e.SourceID, &e.Memo, &e.CreatedBy, &e.CreatedAt,
		&relatedType, &e.RelatedSourceID)
	e.SourceType = domain.SourceType(sourceType)
	e.RelatedSourceType = domain.SourceType(relatedType)
	return e, err
}

// FindEntryByID retrieves an entry and its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	return r.findEntry(ctx, "journal entry "+entryID, query, entryID)
}

// FindEntryBySource retrieves the entry posted for a source, if any.
func (r *PgxJournalRepository) FindEntryBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE source_type = $1 AND source_id = $2;`
	return r.findEntry(ctx, fmt.Sprintf("journal entry for %s %s", sourceType, sourceID), query, string(sourceType), sourceID)
}

// ListEntriesByRelated returns the entries adjusting a source, oldest first.
func (r *PgxJournalRepository) ListEntriesByRelated(ctx context.Context, relatedType domain.SourceType, relatedID string) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries
		WHERE related_source_type = $1 AND related_source_id = $2
		ORDER BY created_at, entry_id;`
	rows, err := r.Pool.Query(ctx, query, string(relatedType), relatedID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries related to %s %s: %w", relatedType, relatedID, err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.JournalEntry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan entries related to %s %s: %w", relatedType, relatedID, err)
	}

	for i := range entries {
		if entries[i].Lines, err = r.findLines(ctx, entries[i].EntryID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (r *PgxJournalRepository) findEntry(ctx context.Context, what, query string, args ...any) (*domain.JournalEntry, error) {
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(what + " not found")
		}
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}

	lines, err := r.findLines(ctx, entry.EntryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return &entry, nil
}

func (r *PgxJournalRepository) findLines(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT l.line_id, l.entry_id, l.line_no, l.account_id, a.code, l.debit_amount, l.credit_amount, l.memo
		FROM journal_lines l
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.entry_id = $1
		ORDER BY l.line_no;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := make([]domain.JournalLine, 0)
	for rows.Next() {
		var l domain.JournalLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.LineNo, &l.AccountID, &l.AccountCode, &l.DebitAmount, &l.CreditAmount, &l.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan line for entry %s: %w", entryID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lines for entry %s: %w", entryID, err)
	}
	return lines, nil
}
