package services

import (
	"context"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/dto"
)

// ImportSvc runs a statement file through parse, match and categorize, then commits or stages it.
type ImportSvc interface {
	Import(ctx context.Context, req dto.ImportRequest) (*domain.ImportResult, error)
}

// ImportBatchReaderSvc defines read operations for staged imports
type ImportBatchReaderSvc interface {
	GetBatch(ctx context.Context, batchID string) (*domain.ImportBatch, error)

	// ListBatches returns the account's batches newest first, optionally filtered by status.
	ListBatches(ctx context.Context, accountID string, status *domain.ImportBatchStatus, limit int, nextToken *string) ([]domain.ImportBatch, *string, error)
}

// ImportBatchWriterSvc drives the review state machine of staged imports
type ImportBatchWriterSvc interface {
	// StageBatch stores drafts as a new pending batch.
	StageBatch(ctx context.Context, batch domain.ImportBatch) (*domain.ImportBatch, error)

	// ApproveBatch commits the batch's non-duplicate drafts and marks it applied.
	ApproveBatch(ctx context.Context, batchID string, userID string) (*domain.ImportBatch, *domain.ImportResult, error)

	// RejectBatch marks the batch rejected. The reason must not be blank.
	RejectBatch(ctx context.Context, batchID string, reason string, userID string) (*domain.ImportBatch, error)
}

// ImportBatchSvcFacade combines all batch-related service interfaces
type ImportBatchSvcFacade interface {
	ImportBatchReaderSvc
	ImportBatchWriterSvc
}
