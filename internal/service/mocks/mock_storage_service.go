package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"ledgervault/internal/migration"
	"ledgervault/internal/model"
	"ledgervault/internal/service"
)

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) Upload(ctx context.Context, r io.Reader, originalFilename, category string, metadata map[string]any) (*model.StoredFile, error) {
	args := m.Called(ctx, r, originalFilename, category, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockStorageService) Health(ctx context.Context) *service.HealthResult {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.HealthResult)
}

func (m *MockStorageService) Verify(ctx context.Context) (*migration.VerifyResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*migration.VerifyResult), args.Error(1)
}

func (m *MockStorageService) Backup(ctx context.Context) (*migration.BackupResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*migration.BackupResult), args.Error(1)
}

func (m *MockStorageService) Migrate(ctx context.Context) (*model.MigrationResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MigrationResult), args.Error(1)
}

func (m *MockStorageService) Session(ctx context.Context) (*model.MigrationSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MigrationSession), args.Error(1)
}
