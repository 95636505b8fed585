package model

import "time"

// MigrationStep is the phase a migration session is in.
type MigrationStep string

const (
	StepVerify   MigrationStep = "verify"
	StepBackup   MigrationStep = "backup"
	StepMigrate  MigrationStep = "migrate"
	StepComplete MigrationStep = "complete"
)

// MigrationStatus distinguishes fully and partially successful runs.
type MigrationStatus string

const (
	MigrationCompleted MigrationStatus = "completed"
	MigrationPartial   MigrationStatus = "partial"
)

// VerificationStats are the row counts observed during the verify phase.
type VerificationStats struct {
	Transactions         int64 `json:"transactions"`
	Documents            int64 `json:"documents"`
	FilesWithAttachments int64 `json:"filesWithAttachments"`
}

// MigrationResult is the outcome of one migrate call. A partial run is data, not an error.
type MigrationResult struct {
	TotalFiles            int             `json:"totalFiles"`
	MigratedFiles         int             `json:"migratedFiles"`
	FailedFiles           int             `json:"failedFiles"`
	PreservedTransactions int             `json:"preservedTransactions"`
	Errors                []string        `json:"errors"`
	Status                MigrationStatus `json:"status"`
}

// FullySuccessful reports whether every file reached cloud storage.
func (r MigrationResult) FullySuccessful() bool {
	return r.FailedFiles == 0
}

// MigrationSession is the state of one verify → backup → migrate → complete run.
type MigrationSession struct {
	ID                string            `json:"id"`
	PreviousSessionID string            `json:"previousSessionId,omitempty"`
	Step              MigrationStep     `json:"step"`
	Verified          bool              `json:"verified"`
	VerificationStats VerificationStats `json:"verificationStats"`
	BackupCompleted   bool              `json:"backupCompleted"`
	BackupObject      string            `json:"backupObject,omitempty"`
	BackupError       string            `json:"backupError,omitempty"`
	MigrationResult   *MigrationResult  `json:"migrationResult,omitempty"`
	StartedAt         time.Time         `json:"startedAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}
