package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ledgervault/internal/model"
	"ledgervault/internal/repository"
)

// LedgerPostgres is a PostgreSQL implementation of repository.LedgerRepository.
// It uses database/sql with parameterless read queries and contains no business logic.
type LedgerPostgres struct {
	db *sql.DB
}

// NewLedgerPostgres creates a new LedgerPostgres repository.
func NewLedgerPostgres(db *sql.DB) *LedgerPostgres {
	return &LedgerPostgres{db: db}
}

var _ repository.LedgerRepository = (*LedgerPostgres)(nil)

// Counts returns all table counts in a single round trip.
func (r *LedgerPostgres) Counts(ctx context.Context) (*model.TableCounts, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM transactions),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM settings),
			(SELECT COUNT(*) FROM documents)
	`
	var c model.TableCounts
	if err := r.db.QueryRowContext(ctx, q).Scan(
		&c.Transactions,
		&c.Users,
		&c.Projects,
		&c.Settings,
		&c.Documents,
	); err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	return &c, nil
}

// Totals sums transaction amounts by type.
func (r *LedgerPostgres) Totals(ctx context.Context) (*model.LedgerTotals, error) {
	const q = `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0)::float8,
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)::float8
		FROM transactions
	`
	var t model.LedgerTotals
	if err := r.db.QueryRowContext(ctx, q).Scan(&t.Income, &t.Expense); err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}
	return &t, nil
}

// ListAttachments returns transaction attachments first, then document files, each ordered by creation time.
func (r *LedgerPostgres) ListAttachments(ctx context.Context) ([]model.Attachment, error) {
	const q = `
		SELECT source, owner_id, transaction_id, path FROM (
			SELECT 'transaction' AS source, id::text AS owner_id, id::text AS transaction_id,
			       attachment_path AS path, created_at, 0 AS ord
			FROM transactions
			WHERE attachment_path IS NOT NULL AND attachment_path <> ''
			UNION ALL
			SELECT 'document', id::text, COALESCE(transaction_id::text, ''),
			       file_path, created_at, 1
			FROM documents
			WHERE file_path IS NOT NULL AND file_path <> ''
		) refs
		ORDER BY ord, created_at, owner_id
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	items := make([]model.Attachment, 0)
	for rows.Next() {
		var (
			a      model.Attachment
			source string
		)
		if err := rows.Scan(&source, &a.OwnerID, &a.TransactionID, &a.Path); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		a.Source = model.AttachmentSource(source)
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return items, nil
}
