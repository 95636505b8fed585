// Package repository contains data access abstractions for the ledger tables.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"

	"ledgervault/internal/model"
)

// LedgerRepository is the read-only view of business data the storage layer needs.
// No business logic here, strictly persistence queries.
type LedgerRepository interface {
	// Counts returns row counts for transactions, users, projects, settings and documents.
	Counts(ctx context.Context) (*model.TableCounts, error)

	// Totals returns income and expense sums across all transactions.
	Totals(ctx context.Context) (*model.LedgerTotals, error)

	// ListAttachments returns every non-empty file reference held by transactions and documents.
	ListAttachments(ctx context.Context) ([]model.Attachment, error)
}
