package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"ledgervault/internal/migration"
	"ledgervault/internal/model"
)

var (
	ErrReaderNil     = errors.New("reader is nil")
	ErrFileTooLarge  = errors.New("file exceeds upload limit")
	ErrNoSession     = errors.New("no migration session")
	ErrEmptyCategory = errors.New("category is required")
)

// HealthResult is the service-level DTO for the storage health endpoint.
type HealthResult struct {
	Client    bool              `json:"client"`
	Storage   bool              `json:"storage"`
	Error     string            `json:"error,omitempty"`
	Local     model.LocalHealth `json:"local"`
	CheckedAt time.Time         `json:"checkedAt"`
}

// StorageService defines the use cases exposed over HTTP.
type StorageService interface {
	// Upload stores the content in the local file store. metadata, when non-nil, is also
	// backed up to cloud storage in the background.
	Upload(ctx context.Context, r io.Reader, originalFilename, category string, metadata map[string]any) (*model.StoredFile, error)

	// Health reports local and cloud storage readiness.
	Health(ctx context.Context) *HealthResult

	Verify(ctx context.Context) (*migration.VerifyResult, error)
	Backup(ctx context.Context) (*migration.BackupResult, error)
	Migrate(ctx context.Context) (*model.MigrationResult, error)

	// Session returns the current migration session or ErrNoSession.
	Session(ctx context.Context) (*model.MigrationSession, error)
}

// FileSaver persists uploaded bytes.
type FileSaver interface {
	Save(ctx context.Context, data []byte, originalName, category string, metadata map[string]any) (*model.StoredFile, error)
}

// HealthReporter computes a storage health report.
type HealthReporter interface {
	Report(ctx context.Context) model.StorageHealthReport
}

// Migrator runs the migration phases.
type Migrator interface {
	Verify(ctx context.Context) (*migration.VerifyResult, error)
	Backup(ctx context.Context) (*migration.BackupResult, error)
	Migrate(ctx context.Context) (*model.MigrationResult, error)
	Session() (model.MigrationSession, bool)
}

type storageService struct {
	files    FileSaver
	health   HealthReporter
	migrator Migrator
	maxBytes int64
}

// NewStorageService constructs a StorageService. maxBytes <= 0 disables the size limit.
func NewStorageService(files FileSaver, health HealthReporter, migrator Migrator, maxBytes int64) StorageService {
	return &storageService{files: files, health: health, migrator: migrator, maxBytes: maxBytes}
}

func (s *storageService) Upload(ctx context.Context, r io.Reader, originalFilename, category string, metadata map[string]any) (*model.StoredFile, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if category == "" {
		return nil, ErrEmptyCategory
	}

	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	return s.files.Save(ctx, data, originalFilename, category, metadata)
}

func (s *storageService) Health(ctx context.Context) *HealthResult {
	r := s.health.Report(ctx)
	return &HealthResult{
		Client:    r.Cloud.ClientReady,
		Storage:   r.Cloud.StorageReady,
		Error:     r.Cloud.Error,
		Local:     r.Local,
		CheckedAt: r.CheckedAt,
	}
}

func (s *storageService) Verify(ctx context.Context) (*migration.VerifyResult, error) {
	return s.migrator.Verify(ctx)
}

func (s *storageService) Backup(ctx context.Context) (*migration.BackupResult, error) {
	return s.migrator.Backup(ctx)
}

func (s *storageService) Migrate(ctx context.Context) (*model.MigrationResult, error) {
	return s.migrator.Migrate(ctx)
}

func (s *storageService) Session(ctx context.Context) (*model.MigrationSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session, ok := s.migrator.Session()
	if !ok {
		return nil, ErrNoSession
	}
	return &session, nil
}
