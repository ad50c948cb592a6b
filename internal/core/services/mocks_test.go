package services_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/fxfeed"
	"github.com/stretchr/testify/mock"
)

// --- Mock FxRateRepository ---
type MockFxRateRepository struct {
	mock.Mock
}

func (m *MockFxRateRepository) FindRate(ctx context.Context, from, to string, date time.Time) (*domain.FxRate, error) {
	args := m.Called(ctx, from, to, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FxRate), args.Error(1)
}

func (m *MockFxRateRepository) UpsertAutomaticRates(ctx context.Context, rates []domain.FxRate) (int, error) {
	args := m.Called(ctx, rates)
	return args.Int(0), args.Error(1)
}

func (m *MockFxRateRepository) UpsertRate(ctx context.Context, rate domain.FxRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockFxRateRepository) DeleteRate(ctx context.Context, from, to string, date time.Time, sources []domain.FxSource) (bool, error) {
	args := m.Called(ctx, from, to, date, sources)
	return args.Bool(0), args.Error(1)
}

// --- Mock RateFeed ---
type MockRateFeed struct {
	mock.Mock
}

func (m *MockRateFeed) Fetch(ctx context.Context) ([]fxfeed.RateSheet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fxfeed.RateSheet), args.Error(1)
}

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- In-memory FxRateRepository ---
// memoryRateRepo keeps rows in a map so fetch-and-store flows can be checked end to end.
type memoryRateRepo struct {
	mu   sync.Mutex
	rows map[string]domain.FxRate
}

func newMemoryRateRepo() *memoryRateRepo {
	return &memoryRateRepo{rows: make(map[string]domain.FxRate)}
}

func rateKey(from, to string, date time.Time) string {
	return from + "|" + to + "|" + date.Format("2006-01-02")
}

func (r *memoryRateRepo) FindRate(ctx context.Context, from, to string, date time.Time) (*domain.FxRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[rateKey(from, to, date)]
	if !ok {
		return nil, apperrors.NewNotFoundError("fx rate not found")
	}
	return &row, nil
}

func (r *memoryRateRepo) UpsertAutomaticRates(ctx context.Context, rates []domain.FxRate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	written := 0
	for _, rate := range rates {
		key := rateKey(rate.CurrencyFrom, rate.CurrencyTo, rate.RateDate)
		if existing, ok := r.rows[key]; ok && !existing.Source.IsAutomatic() {
			continue
		}
		r.rows[key] = rate
		written++
	}
	return written, nil
}

func (r *memoryRateRepo) UpsertRate(ctx context.Context, rate domain.FxRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rateKey(rate.CurrencyFrom, rate.CurrencyTo, rate.RateDate)] = rate
	return nil
}

func (r *memoryRateRepo) DeleteRate(ctx context.Context, from, to string, date time.Time, sources []domain.FxSource) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rateKey(from, to, date)
	row, ok := r.rows[key]
	if !ok || !slices.Contains(sources, row.Source) {
		return false, nil
	}
	delete(r.rows, key)
	return true, nil
}

func (r *memoryRateRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Mock CategoryRepository ---
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) ListCategoriesByOwner(ctx context.Context, ownerID string) ([]domain.Category, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) ListTransactionsForAccount(ctx context.Context, accountID string, from, to time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveImportedTransactions(ctx context.Context, record domain.TransactionImport, txns []domain.Transaction) error {
	args := m.Called(ctx, record, txns)
	return args.Error(0)
}

// --- Mock ImportBatchRepository ---
type MockImportBatchRepository struct {
	mock.Mock
}

func (m *MockImportBatchRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.ImportBatch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportBatch), args.Error(1)
}

func (m *MockImportBatchRepository) ListBatchesByAccount(ctx context.Context, accountID string, status *domain.ImportBatchStatus, limit int, nextToken *string) ([]domain.ImportBatch, *string, error) {
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

func (m *MockImportBatchRepository) SaveBatch(ctx context.Context, batch domain.ImportBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockImportBatchRepository) ApplyBatch(ctx context.Context, batch domain.ImportBatch, txns []domain.Transaction, record domain.TransactionImport) error {
	args := m.Called(ctx, batch, txns, record)
	return args.Error(0)
}

func (m *MockImportBatchRepository) RejectBatch(ctx context.Context, batch domain.ImportBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
