package cmd

import (
	"context"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock ImportBatchService ---
type MockImportBatchService struct {
	mock.Mock
}

func (m *MockImportBatchService) GetBatch(ctx context.Context, batchID string) (*domain.ImportBatch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportBatch), args.Error(1)
}

func (m *MockImportBatchService) ListBatches(ctx context.Context, accountID string, status *domain.ImportBatchStatus, limit int, nextToken *string) ([]domain.ImportBatch, *string, error) {
	args := m.Called(ctx, accountID, status, limit, nextToken)
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, token, args.Error(2)
	}
	return args.Get(0).([]domain.ImportBatch), token, args.Error(2)
}

func (m *MockImportBatchService) StageBatch(ctx context.Context, batch domain.ImportBatch) (*domain.ImportBatch, error) {
	args := m.Called(ctx, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportBatch), args.Error(1)
}

func (m *MockImportBatchService) ApproveBatch(ctx context.Context, batchID string, userID string) (*domain.ImportBatch, *domain.ImportResult, error) {
	args := m.Called(ctx, batchID, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.ImportBatch), args.Get(1).(*domain.ImportResult), args.Error(2)
}

func (m *MockImportBatchService) RejectBatch(ctx context.Context, batchID string, reason string, userID string) (*domain.ImportBatch, error) {
	args := m.Called(ctx, batchID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportBatch), args.Error(1)
}

var _ portssvc.ImportBatchSvcFacade = (*MockImportBatchService)(nil)

// --- Mock ImportService ---
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Import(ctx context.Context, req dto.ImportRequest) (*domain.ImportResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportResult), args.Error(1)
}

var _ portssvc.ImportSvc = (*MockImportService)(nil)

// --- Mock FxRateService ---
type MockFxRateService struct {
	mock.Mock
}

func (m *MockFxRateService) GetRate(ctx context.Context, from, to string, date time.Time) (*domain.ResolvedRate, error) {
	args := m.Called(ctx, from, to, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResolvedRate), args.Error(1)
}

func (m *MockFxRateService) ConvertAmount(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) (*decimal.Decimal, error) {
	args := m.Called(ctx, amount, from, to, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*decimal.Decimal), args.Error(1)
}

func (m *MockFxRateService) OverrideRate(ctx context.Context, from, to string, rate decimal.Decimal, date time.Time, source domain.FxSource) (*domain.FxRate, error) {
	args := m.Called(ctx, from, to, rate, date, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FxRate), args.Error(1)
}

func (m *MockFxRateService) ClearOverride(ctx context.Context, from, to string, date time.Time) error {
	args := m.Called(ctx, from, to, date)
	return args.Error(0)
}

func (m *MockFxRateService) SyncLatest(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

var _ portssvc.FxRateSvcFacade = (*MockFxRateService)(nil)
