package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgervault/internal/apperror"
	"ledgervault/internal/migration"
	"ledgervault/internal/model"
)

type mockSaver struct{ mock.Mock }

func (m *mockSaver) Save(ctx context.Context, data []byte, originalName, category string, metadata map[string]any) (*model.StoredFile, error) {
	args := m.Called(ctx, data, originalName, category, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

type mockMigrator struct{ mock.Mock }

func (m *mockMigrator) Verify(ctx context.Context) (*migration.VerifyResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*migration.VerifyResult), args.Error(1)
}

func (m *mockMigrator) Backup(ctx context.Context) (*migration.BackupResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*migration.BackupResult), args.Error(1)
}

func (m *mockMigrator) Migrate(ctx context.Context) (*model.MigrationResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MigrationResult), args.Error(1)
}

func (m *mockMigrator) Session() (model.MigrationSession, bool) {
	args := m.Called()
	return args.Get(0).(model.MigrationSession), args.Bool(1)
}

type stubHealth struct{ report model.StorageHealthReport }

func (h stubHealth) Report(context.Context) model.StorageHealthReport { return h.report }

func TestStorageService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		reader     io.Reader
		category   string
		maxBytes   int64
		setupMock  func(m *mockSaver)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:     "happy path",
			reader:   strings.NewReader("hello world"),
			category: "receipts",
			maxBytes: 64,
			setupMock: func(m *mockSaver) {
				m.On("Save", ctx, []byte("hello world"), "a.txt", "receipts", map[string]any{"k": "v"}).
					Return(&model.StoredFile{StoredName: "1_a.txt"}, nil)
			},
		},
		{
			name:     "nil reader",
			category: "receipts",
			wantErr:  ErrReaderNil,
		},
		{
			name:    "missing category",
			reader:  strings.NewReader("x"),
			wantErr: ErrEmptyCategory,
		},
		{
			name:     "too large",
			reader:   strings.NewReader("0123456789"),
			category: "receipts",
			maxBytes: 4,
			wantErr:  ErrFileTooLarge,
		},
		{
			name:     "store error passes through",
			reader:   strings.NewReader("x"),
			category: "receipts",
			setupMock: func(m *mockSaver) {
				m.On("Save", ctx, []byte("x"), "a.txt", "receipts", map[string]any{"k": "v"}).
					Return(nil, &apperror.LocalIOError{Op: "write", Path: "/uploads/receipts", Err: errors.New("disk full")})
			},
			wantErrMsg: "local write /uploads/receipts: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := new(mockSaver)
			if tt.setupMock != nil {
				tt.setupMock(saver)
			}
			svc := NewStorageService(saver, stubHealth{}, new(mockMigrator), tt.maxBytes)

			file, err := svc.Upload(ctx, tt.reader, "a.txt", tt.category, map[string]any{"k": "v"})

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, "1_a.txt", file.StoredName)
			}
			saver.AssertExpectations(t)
		})
	}
}

func TestStorageService_Health(t *testing.T) {
	checked := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	svc := NewStorageService(new(mockSaver), stubHealth{model.StorageHealthReport{
		Local:     model.LocalHealth{Available: true, TotalFiles: 3},
		Cloud:     model.CloudHealth{ClientReady: true, Error: "bucket ledger does not exist"},
		CheckedAt: checked,
	}}, new(mockMigrator), 0)

	res := svc.Health(context.Background())

	assert.True(t, res.Client)
	assert.False(t, res.Storage)
	assert.Equal(t, "bucket ledger does not exist", res.Error)
	assert.EqualValues(t, 3, res.Local.TotalFiles)
	assert.Equal(t, checked, res.CheckedAt)
}

func TestStorageService_MigrationPhases(t *testing.T) {
	ctx := context.Background()
	m := new(mockMigrator)
	svc := NewStorageService(new(mockSaver), stubHealth{}, m, 0)

	m.On("Verify", ctx).Return(&migration.VerifyResult{Success: true, SessionID: "s1"}, nil).Once()
	m.On("Backup", ctx).Return(nil, apperror.ErrMigrationInProgress).Once()
	m.On("Migrate", ctx).Return(&model.MigrationResult{TotalFiles: 2, MigratedFiles: 2, Status: model.MigrationCompleted}, nil).Once()

	v, err := svc.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s1", v.SessionID)

	_, err = svc.Backup(ctx)
	assert.ErrorIs(t, err, apperror.ErrMigrationInProgress)

	r, err := svc.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.MigrationCompleted, r.Status)

	m.AssertExpectations(t)
}

func TestStorageService_Session(t *testing.T) {
	m := new(mockMigrator)
	svc := NewStorageService(new(mockSaver), stubHealth{}, m, 0)

	m.On("Session").Return(model.MigrationSession{}, false).Once()
	_, err := svc.Session(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	m.On("Session").Return(model.MigrationSession{ID: "s1", Step: model.StepBackup}, true).Once()
	s, err := svc.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StepBackup, s.Step)
}
