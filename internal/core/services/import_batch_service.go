package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portsrepo "github.com/SscSPs/statement_importer/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/metrics"
	"github.com/google/uuid"
)

type importBatchService struct {
	BaseService
	batchRepo       portsrepo.ImportBatchRepositoryFacade
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionReader
	dedup           portssvc.DedupMatcherSvc
	builder         *transactionBuilder
	metrics         *metrics.Metrics
	now             func() time.Time
}

// ImportBatchOption configures the import batch service
type ImportBatchOption func(*importBatchService)

// WithBatchFxResolver converts approved transactions into reportingCurrency.
// An empty reportingCurrency converts into the account currency.
func WithBatchFxResolver(fx portssvc.FxRateReaderSvc, reportingCurrency string) ImportBatchOption {
	return func(s *importBatchService) {
		s.builder.fx = fx
		s.builder.reportingCurrency = reportingCurrency
	}
}

// WithBatchHistoryCheck re-matches drafts against committed history at approval time,
// so a batch approved after an overlapping import does not commit the same lines twice.
func WithBatchHistoryCheck(repo portsrepo.TransactionReader, dedup portssvc.DedupMatcherSvc) ImportBatchOption {
	return func(s *importBatchService) {
		s.transactionRepo = repo
		s.dedup = dedup
	}
}

// WithBatchMetrics records committed drafts.
func WithBatchMetrics(m *metrics.Metrics) ImportBatchOption {
	return func(s *importBatchService) {
		s.metrics = m
	}
}

// WithBatchClock sets the clock used for approval timestamps.
func WithBatchClock(now func() time.Time) ImportBatchOption {
	return func(s *importBatchService) {
		s.now = now
		s.builder.now = now
	}
}

// NewImportBatchService creates the review workflow service.
func NewImportBatchService(batchRepo portsrepo.ImportBatchRepositoryFacade, accountRepo portsrepo.AccountReader, options ...ImportBatchOption) portssvc.ImportBatchSvcFacade {
	svc := &importBatchService{
		batchRepo:   batchRepo,
		accountRepo: accountRepo,
		builder:     &transactionBuilder{now: time.Now},
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ImportBatchSvcFacade = (*importBatchService)(nil)

func (s *importBatchService) GetBatch(ctx context.Context, batchID string) (*domain.ImportBatch, error) {
	batch, err := s.batchRepo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch in service: %w", err)
	}
	return batch, nil
}

func (s *importBatchService) ListBatches(ctx context.Context, accountID string, status *domain.ImportBatchStatus, limit int, nextToken *string) ([]domain.ImportBatch, *string, error) {
	if status != nil {
		switch *status {
		case domain.BatchPending, domain.BatchApplied, domain.BatchRejected:
		default:
			return nil, nil, apperrors.NewValidationError(fmt.Sprintf("unknown batch status %q", *status))
		}
	}
	batches, token, err := s.batchRepo.ListBatchesByAccount(ctx, accountID, status, limit, nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list batches in service: %w", err)
	}
	return batches, token, nil
}

func (s *importBatchService) StageBatch(ctx context.Context, batch domain.ImportBatch) (*domain.ImportBatch, error) {
	now := s.now()
	if batch.BatchID == "" {
		batch.BatchID = uuid.NewString()
	}
	batch.Status = domain.BatchPending
	batch.TransactionCount = len(batch.ProposedTransactions)
	batch.RejectionReason = nil
	batch.ApprovedBy = nil
	batch.ApprovedAt = nil
	batch.CreatedAt = now
	batch.LastUpdatedAt = now
	batch.LastUpdatedBy = batch.CreatedBy

	if err := s.batchRepo.SaveBatch(ctx, batch); err != nil {
		s.LogError(ctx, err, "Failed to stage import batch",
			slog.String("account_id", batch.AccountID),
			slog.String("batch_id", batch.BatchID))
		return nil, fmt.Errorf("failed to stage batch in service: %w", err)
	}

	s.LogInfo(ctx, "Import batch staged",
		slog.String("batch_id", batch.BatchID),
		slog.String("account_id", batch.AccountID),
		slog.Int("drafts", batch.TransactionCount))
	return &batch, nil
}

func (s *importBatchService) ApproveBatch(ctx context.Context, batchID string, userID string) (*domain.ImportBatch, *domain.ImportResult, error) {
	batch, err := s.batchRepo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load batch for approval: %w", err)
	}
	if err := batch.Approve(userID, s.now()); err != nil {
		s.LogError(ctx, err, "Batch approval refused", slog.String("batch_id", batchID))
		return nil, nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, batch.AccountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load account %s for batch %s: %w", batch.AccountID, batchID, err)
	}

	drafts := batch.CommittableDrafts()
	if s.transactionRepo != nil && s.dedup != nil && len(drafts) > 0 {
		from, to := draftSpan(drafts)
		history, err := s.transactionRepo.ListTransactionsForAccount(ctx, account.AccountID, from, to)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load history for batch %s: %w", batchID, err)
		}
		drafts = s.dedup.Match(drafts, history).Unmatched
	}

	importID := uuid.NewString()
	txns, unconverted, err := s.builder.build(ctx, *account, drafts, commitRefs{importID: importID, batchID: &batch.BatchID, userID: userID})
	if err != nil {
		s.LogError(ctx, err, "Failed to build transactions for batch", slog.String("batch_id", batchID))
		return nil, nil, err
	}

	total := len(batch.ProposedTransactions)
	record := domain.TransactionImport{
		ImportID:       importID,
		AccountID:      account.AccountID,
		BatchID:        &batch.BatchID,
		Parser:         batch.Parser,
		FileName:       batch.FileName,
		SourceFileURI:  batch.SourceFileURI,
		TotalCount:     total,
		DuplicateCount: total - len(txns),
		ImportedCount:  len(txns),
		ImportedAt:     *batch.ApprovedAt,
		ImportedBy:     userID,
	}
	if err := s.batchRepo.ApplyBatch(ctx, *batch, txns, record); err != nil {
		s.LogError(ctx, err, "Failed to apply batch", slog.String("batch_id", batchID))
		return nil, nil, fmt.Errorf("failed to apply batch in service: %w", err)
	}
	s.metrics.RecordImport(batch.Parser, "approved")

	s.LogInfo(ctx, "Import batch applied",
		slog.String("batch_id", batchID),
		slog.String("approved_by", userID),
		slog.Int("committed", len(txns)))

	return batch, &domain.ImportResult{
		Mode:         domain.ImportReviewed,
		Parser:       batch.Parser,
		AccountID:    account.AccountID,
		ImportID:     &importID,
		BatchID:      &batch.BatchID,
		Total:        total,
		Duplicates:   record.DuplicateCount,
		New:          len(txns),
		Committed:    len(txns),
		Unconverted:  unconverted,
		Transactions: txns,
	}, nil
}

func (s *importBatchService) RejectBatch(ctx context.Context, batchID string, reason string, userID string) (*domain.ImportBatch, error) {
	batch, err := s.batchRepo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch for rejection: %w", err)
	}
	if err := batch.Reject(reason, userID, s.now()); err != nil {
		s.LogError(ctx, err, "Batch rejection refused", slog.String("batch_id", batchID))
		return nil, err
	}
	if err := s.batchRepo.RejectBatch(ctx, *batch); err != nil {
		s.LogError(ctx, err, "Failed to reject batch", slog.String("batch_id", batchID))
		return nil, fmt.Errorf("failed to reject batch in service: %w", err)
	}
	s.metrics.RecordImport(batch.Parser, "rejected")

	s.LogInfo(ctx, "Import batch rejected", slog.String("batch_id", batchID), slog.String("rejected_by", userID))
	return batch, nil
}

// draftSpan returns the earliest and latest draft dates.
func draftSpan(drafts []domain.TransactionDraft) (time.Time, time.Time) {
	if len(drafts) == 0 {
		return time.Time{}, time.Time{}
	}
	from, to := drafts[0].Date, drafts[0].Date
	for _, d := range drafts[1:] {
		if d.Date.Before(from) {
			from = d.Date
		}
		if d.Date.After(to) {
			to = d.Date
		}
	}
	return from, to
}
