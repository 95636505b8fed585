package model

import "time"

// SnapshotType distinguishes the two kinds of documents written to the backup prefix.
type SnapshotType string

const (
	SnapshotFileMetadata   SnapshotType = "file_metadata"
	SnapshotDatabaseBackup SnapshotType = "database_backup"
)

// ObjectPrefix is the leading part of a snapshot object name.
func (t SnapshotType) ObjectPrefix() string {
	if t == SnapshotDatabaseBackup {
		return "db_backup"
	}
	return string(t)
}

// BackupSnapshot is the JSON document uploaded for every snapshot.
type BackupSnapshot struct {
	Type      SnapshotType `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   any          `json:"payload"`
}

// TableCounts holds row counts reported by the data collaborator.
type TableCounts struct {
	Transactions int64 `json:"transactions"`
	Users        int64 `json:"users"`
	Projects     int64 `json:"projects"`
	Settings     int64 `json:"settings"`
	Documents    int64 `json:"documents"`
}

// LedgerTotals holds income and expense sums across all transactions.
type LedgerTotals struct {
	Income  float64 `json:"totalIncome"`
	Expense float64 `json:"totalExpense"`
}

// DatabaseSummary is the payload of a database_backup snapshot.
type DatabaseSummary struct {
	TableCounts
	LedgerTotals
	NetBalance float64 `json:"netBalance"`
}

// NewDatabaseSummary derives the net balance from totals.
func NewDatabaseSummary(c TableCounts, t LedgerTotals) DatabaseSummary {
	return DatabaseSummary{
		TableCounts:  c,
		LedgerTotals: t,
		NetBalance:   t.Income - t.Expense,
	}
}
