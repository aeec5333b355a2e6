package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	"github.com/SscSPs/autoledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOutboxRepository struct {
	BaseRepository
}

// newPgxOutboxRepository creates a new repository for the posting queue.
func newPgxOutboxRepository(pool *pgxpool.Pool) portsrepo.OutboxRepositoryFacade {
	return &PgxOutboxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OutboxRepositoryFacade = (*PgxOutboxRepository)(nil)

const outboxColumns = `item_id, source_type, source_id, status, attempts, last_error, claimed_at, synced_at, created_at, updated_at`

func scanOutboxItem(row pgx.Row) (domain.OutboxItem, error) {
	var it domain.OutboxItem
	var sourceType, status string
	err := row.Scan(
		&it.ItemID,
		&sourceType,
		&it.SourceID,
		&status,
		&it.Attempts,
		&it.LastError,
		&it.ClaimedAt,
		&it.SyncedAt,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	it.SourceType = domain.SourceType(sourceType)
	it.Status = domain.OutboxStatus(status)
	return it, err
}

func collectOutboxItems(rows pgx.Rows) ([]domain.OutboxItem, error) {
	defer rows.Close()
	items := make([]domain.OutboxItem, 0)
	for rows.Next() {
		it, err := scanOutboxItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox items: %w", err)
	}
	return items, nil
}

// Postgres keeps microseconds; claims are compared for equality so they must round-trip exactly.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func (r *PgxOutboxRepository) FindItemByID(ctx context.Context, itemID string) (*domain.OutboxItem, error) {
	query := `SELECT ` + outboxColumns + ` FROM outbox_items WHERE item_id = $1;`
	it, err := scanOutboxItem(r.Pool.QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("outbox item " + itemID + " not found")
		}
		return nil, fmt.Errorf("failed to find outbox item %s: %w", itemID, err)
	}
	return &it, nil
}

// Enqueue inserts a pending item unless one already exists for the source.
func (r *PgxOutboxRepository) Enqueue(ctx context.Context, item domain.OutboxItem) (*domain.OutboxItem, bool, error) {
	query := `
		INSERT INTO outbox_items (item_id, source_type, source_id, status, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6)
		ON CONFLICT (source_type, source_id) DO NOTHING
		RETURNING ` + outboxColumns + `;
	`
	created, err := scanOutboxItem(r.Pool.QueryRow(ctx, query,
		item.ItemID,
		string(item.SourceType),
		item.SourceID,
		string(domain.OutboxPending),
		dbTime(item.CreatedAt),
		dbTime(item.UpdatedAt),
	))
	if err == nil {
		return &created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to enqueue %s %s: %w", item.SourceType, item.SourceID, err)
	}

	query = `SELECT ` + outboxColumns + ` FROM outbox_items WHERE source_type = $1 AND source_id = $2;`
	existing, err := scanOutboxItem(r.Pool.QueryRow(ctx, query, string(item.SourceType), item.SourceID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to load queued %s %s: %w", item.SourceType, item.SourceID, err)
	}
	return &existing, false, nil
}

// ClaimBatch flips claimable rows to processing in one statement. SKIP LOCKED lets
// concurrent processors take disjoint batches.
func (r *PgxOutboxRepository) ClaimBatch(ctx context.Context, kind domain.SourceType, limit int, claimedAt, staleBefore time.Time) ([]domain.OutboxItem, error) {
	var maxRows *int
	if limit > 0 {
		maxRows = &limit
	}

	query := `
		UPDATE outbox_items
		SET status = 'processing', claimed_at = $1, updated_at = $1
		WHERE item_id IN (
			SELECT item_id FROM outbox_items
			WHERE (status = 'pending' OR (status = 'processing' AND claimed_at < $2))
				AND ($3::text = '' OR source_type = $3::text)
			ORDER BY created_at, item_id
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + outboxColumns + `;
	`
	rows, err := r.Pool.Query(ctx, query, dbTime(claimedAt), staleBefore, string(kind), maxRows)
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox batch: %w", err)
	}
	items, err := collectOutboxItems(rows)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ItemID < items[j].ItemID
	})
	return items, nil
}

// claimLost distinguishes a missing item from one whose claim moved on.
func (r *PgxOutboxRepository) claimLost(ctx context.Context, itemID string) error {
	if _, err := r.FindItemByID(ctx, itemID); err != nil {
		return err
	}
	return fmt.Errorf("outbox item %s: %w", itemID, apperrors.ErrClaimLost)
}

func (r *PgxOutboxRepository) MarkSynced(ctx context.Context, itemID string, claimedAt, now time.Time) error {
	query := `
		UPDATE outbox_items
		SET status = 'synced', synced_at = $3, last_error = NULL, updated_at = $3
		WHERE item_id = $1 AND status = 'processing' AND claimed_at = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, itemID, dbTime(claimedAt), now)
	if err != nil {
		return fmt.Errorf("failed to mark outbox item %s synced: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.claimLost(ctx, itemID)
	}
	return nil
}

func (r *PgxOutboxRepository) MarkFailed(ctx context.Context, itemID string, claimedAt time.Time, status domain.OutboxStatus, lastError string, now time.Time) error {
	if status != domain.OutboxPending && status != domain.OutboxError {
		return apperrors.NewValidationError("failed item must move to pending or error, not " + string(status))
	}

	query := `
		UPDATE outbox_items
		SET status = $3, attempts = attempts + 1, last_error = $4, updated_at = $5
		WHERE item_id = $1 AND status = 'processing' AND claimed_at = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, itemID, dbTime(claimedAt), string(status), lastError, now)
	if err != nil {
		return fmt.Errorf("failed to mark outbox item %s failed: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.claimLost(ctx, itemID)
	}
	return nil
}

func (r *PgxOutboxRepository) Requeue(ctx context.Context, itemID string, now time.Time) (*domain.OutboxItem, error) {
	query := `
		UPDATE outbox_items
		SET status = 'pending', claimed_at = NULL, updated_at = $2
		WHERE item_id = $1 AND status = 'error'
		RETURNING ` + outboxColumns + `;
	`
	it, err := scanOutboxItem(r.Pool.QueryRow(ctx, query, itemID, now))
	if err == nil {
		return &it, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to requeue outbox item %s: %w", itemID, err)
	}

	current, findErr := r.FindItemByID(ctx, itemID)
	if findErr != nil {
		return nil, findErr
	}
	return nil, apperrors.NewValidationError(fmt.Sprintf("outbox item %s is %s, only items in error can be retried", itemID, current.Status))
}

// ListItems returns items oldest first, resuming after the (created_at, item_id) cursor.
func (r *PgxOutboxRepository) ListItems(ctx context.Context, filter domain.OutboxFilter) ([]domain.OutboxItem, *string, error) {
	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(string(filter.Status)))
	}
	if filter.SourceType != "" {
		conditions = append(conditions, "source_type = "+arg(string(filter.SourceType)))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		c, err := pagination.DecodeCursor(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		conditions = append(conditions, fmt.Sprintf("(created_at, item_id) > (%s, %s)", arg(c.CreatedAt), arg(c.ID)))
	}

	query := `SELECT ` + outboxColumns + ` FROM outbox_items`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, item_id"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list outbox items: %w", err)
	}
	items, err := collectOutboxItems(rows)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(items) > 0 {
		last := items[len(items)-1]
		next = pagination.NextToken(len(items), filter.Limit, pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ItemID})
	}
	return items, next, nil
}

func (r *PgxOutboxRepository) CountByStatus(ctx context.Context) (domain.OutboxStats, error) {
	rows, err := r.Pool.Query(ctx, `SELECT status, COUNT(*) FROM outbox_items GROUP BY status;`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outbox items: %w", err)
	}
	defer rows.Close()

	stats := domain.OutboxStats{
		domain.OutboxPending:    0,
		domain.OutboxProcessing: 0,
		domain.OutboxSynced:     0,
		domain.OutboxError:      0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outbox count: %w", err)
		}
		stats[domain.OutboxStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox counts: %w", err)
	}
	return stats, nil
}
