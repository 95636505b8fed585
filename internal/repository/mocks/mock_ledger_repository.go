package mocks

import (
	"context"

	"ledgervault/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Counts(ctx context.Context) (*model.TableCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TableCounts), args.Error(1)
}

func (m *MockLedgerRepository) Totals(ctx context.Context) (*model.LedgerTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LedgerTotals), args.Error(1)
}

func (m *MockLedgerRepository) ListAttachments(ctx context.Context) ([]model.Attachment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Attachment), args.Error(1)
}
