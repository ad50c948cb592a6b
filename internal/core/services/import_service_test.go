package services_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/core/services"
	"github.com/SscSPs/statement_importer/internal/dto"
	"github.com/SscSPs/statement_importer/internal/statement/parsers"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// memoryTransactionRepo keeps committed transactions so re-imports see them.
type memoryTransactionRepo struct {
	mu      sync.Mutex
	txns    []domain.Transaction
	imports []domain.TransactionImport
}

func (r *memoryTransactionRepo) ListTransactionsForAccount(ctx context.Context, accountID string, from, to time.Time) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Transaction
	for _, t := range r.txns {
		if t.AccountID == accountID && !t.Date.Before(from) && !t.Date.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryTransactionRepo) SaveImportedTransactions(ctx context.Context, record domain.TransactionImport, txns []domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns = append(r.txns, txns...)
	r.imports = append(r.imports, record)
	return nil
}

type recordingArchive struct {
	key  string
	data []byte
	err  error
}

func (a *recordingArchive) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.key = key
	a.data, _ = io.ReadAll(r)
	return "file:///archive/" + key, nil
}

type recordingEvents struct {
	events []string
}

func (e *recordingEvents) Enqueue(distinctID string, event string, properties map[string]any) {
	e.events = append(e.events, distinctID+":"+event)
}

type ImportServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockAccountRepository
	mockCategoryRepo *MockCategoryRepository
	mockBatchRepo    *MockImportBatchRepository
	mockRateRepo     *MockFxRateRepository
	txnRepo          *memoryTransactionRepo
	archive          *recordingArchive
	events           *recordingEvents
	service          portssvc.ImportSvc
	ctx              context.Context
}

const santanderRow = "17/01/2025;Payment received;1500,00;7500,00;REF123\n"

func (suite *ImportServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCategoryRepo = new(MockCategoryRepository)
	suite.mockBatchRepo = new(MockImportBatchRepository)
	suite.mockRateRepo = new(MockFxRateRepository)
	suite.txnRepo = &memoryTransactionRepo{}
	suite.archive = &recordingArchive{}
	suite.events = &recordingEvents{}
	suite.ctx = context.Background()

	registry := parsers.NewRegistry()
	registry.Register("santander", parsers.NewSantanderCSV())

	now := func() time.Time { return time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC) }
	fx := services.NewFxRateService(suite.mockRateRepo)
	dedup := services.NewDedupMatcher()
	batches := services.NewImportBatchService(suite.mockBatchRepo, suite.mockAccountRepo, services.WithBatchClock(now))
	suite.service = services.NewImportService(
		registry,
		suite.mockAccountRepo,
		suite.txnRepo,
		dedup,
		services.NewCategorizationService(suite.mockCategoryRepo),
		batches,
		services.WithImportFxResolver(fx, "EUR"),
		services.WithArchive(suite.archive),
		services.WithImportEvents(suite.events),
		services.WithImportClock(now),
	)

	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, "acc-eur").
		Return(&domain.Account{AccountID: "acc-eur", OwnerID: "user-1", CurrencyCode: "EUR", IsActive: true}, nil)
	suite.mockCategoryRepo.On("ListCategoriesByOwner", mock.Anything, "user-1").Return([]domain.Category{}, nil)
}

func TestImportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ImportServiceTestSuite))
}

func (suite *ImportServiceTestSuite) request(content string, review bool) dto.ImportRequest {
	return dto.ImportRequest{
		AccountID:    "acc-eur",
		DeclaredType: "santander",
		FileName:     "movimientos.csv",
		Content:      []byte(content),
		Review:       review,
		UserID:       "user-1",
	}
}

func (suite *ImportServiceTestSuite) TestImport_DirectThenReimportIsDuplicate() {
	first, err := suite.service.Import(suite.ctx, suite.request(santanderRow, false))
	suite.Require().NoError(err)

	suite.Equal(domain.ImportDirect, first.Mode)
	suite.Equal(1, first.New)
	suite.Equal(0, first.Duplicates)
	suite.Equal(1, first.Committed)
	suite.Require().Len(suite.txnRepo.txns, 1)
	txn := suite.txnRepo.txns[0]
	suite.Equal("2025-01-17", txn.Date.Format("2006-01-02"))
	suite.Equal("1500.00", txn.OriginalAmount.StringFixed(2))
	suite.Equal("EUR", txn.OriginalCurrency)
	suite.Equal(domain.Credit, txn.Type)
	suite.Equal("1500.00", txn.ConvertedAmount.StringFixed(2))
	suite.Equal([]string{"ref:REF123"}, txn.Tags)
	suite.Equal(*first.ImportID, *txn.ImportID)

	suite.Require().Len(suite.txnRepo.imports, 1)
	suite.Require().NotNil(suite.txnRepo.imports[0].SourceFileURI)
	suite.True(strings.HasPrefix(suite.archive.key, "acc-eur/2025/02/01/"))
	suite.True(bytes.Equal([]byte(santanderRow), suite.archive.data))

	second, err := suite.service.Import(suite.ctx, suite.request(santanderRow, false))
	suite.Require().NoError(err)

	suite.Equal(1, second.Duplicates)
	suite.Equal(0, second.New)
	suite.Equal(0, second.Committed)
	suite.Len(suite.txnRepo.txns, 1)
	suite.Equal([]string{"user-1:statement_imported", "user-1:statement_imported"}, suite.events.events)
}

func (suite *ImportServiceTestSuite) TestImport_ReviewedStagesWithDuplicatesFlagged() {
	_, err := suite.service.Import(suite.ctx, suite.request(santanderRow, false))
	suite.Require().NoError(err)

	content := santanderRow + "18/01/2025;Coffee;-3,50;7496,50;\n"
	suite.mockBatchRepo.On("SaveBatch", mock.Anything, mock.MatchedBy(func(b domain.ImportBatch) bool {
		return b.Status == domain.BatchPending && len(b.ProposedTransactions) == 2 &&
			b.ProposedTransactions[0].Duplicate && !b.ProposedTransactions[1].Duplicate &&
			b.Parser == "santander_csv" && b.SourceFileURI != nil
	})).Return(nil).Once()

	res, err := suite.service.Import(suite.ctx, suite.request(content, true))

	suite.Require().NoError(err)
	suite.Equal(domain.ImportReviewed, res.Mode)
	suite.NotNil(res.BatchID)
	suite.Equal(1, res.Duplicates)
	suite.Equal(1, res.New)
	suite.Zero(res.Committed)
	suite.Len(suite.txnRepo.txns, 1, "a staged import must not commit transactions")
	suite.mockBatchRepo.AssertExpectations(suite.T())
}

func (suite *ImportServiceTestSuite) TestImport_ArchiveFailureDoesNotBlockImport() {
	suite.archive.err = errors.New("bucket unavailable")

	res, err := suite.service.Import(suite.ctx, suite.request(santanderRow, false))

	suite.Require().NoError(err)
	suite.Equal(1, res.Committed)
	suite.Nil(suite.txnRepo.imports[0].SourceFileURI)
}

func (suite *ImportServiceTestSuite) TestImport_Errors() {
	tests := []struct {
		name    string
		req     dto.ImportRequest
		wantErr error
	}{
		{
			name:    "missing declared type",
			req:     dto.ImportRequest{AccountID: "acc-eur", FileName: "a.csv", Content: []byte("x")},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "unknown bank",
			req:     dto.ImportRequest{AccountID: "acc-eur", DeclaredType: "ing", FileName: "a.csv", Content: []byte(santanderRow)},
			wantErr: apperrors.ErrUnknownParser,
		},
		{
			name:    "no pdf parser registered",
			req:     dto.ImportRequest{AccountID: "acc-eur", DeclaredType: "santander", FileName: "a.pdf", Content: []byte("%PDF")},
			wantErr: apperrors.ErrUnknownParser,
		},
		{
			name:    "malformed row",
			req:     suite.request(santanderRow+"32/13/2025;Bad;1,00;1,00;\n", false),
			wantErr: apperrors.ErrMalformedStatement,
		},
		{
			name:    "header only",
			req:     suite.request("Fecha;Concepto;Importe;Saldo;Referencia\n", false),
			wantErr: apperrors.ErrNoTransactionsFound,
		},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.Import(suite.ctx, tt.req)
			suite.ErrorIs(err, tt.wantErr)
		})
	}
	suite.Empty(suite.txnRepo.txns)
}

func (suite *ImportServiceTestSuite) TestImport_InactiveAccount() {
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, "acc-closed").
		Return(&domain.Account{AccountID: "acc-closed", IsActive: false}, nil).Once()
	req := suite.request(santanderRow, false)
	req.AccountID = "acc-closed"

	_, err := suite.service.Import(suite.ctx, req)

	suite.ErrorIs(err, apperrors.ErrValidation)
}
