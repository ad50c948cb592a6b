package repositories

import (
	"context"

	"github.com/SscSPs/statement_importer/internal/core/domain"
)

// ImportBatchReader defines read operations for staged imports
type ImportBatchReader interface {
	// FindBatchByID retrieves a batch with its proposed drafts.
	FindBatchByID(ctx context.Context, batchID string) (*domain.ImportBatch, error)
	// ListBatchesByAccount returns the account's batches newest first using token-based pagination.
	// A nil status lists every status. The returned token is nil on the last page.
	ListBatchesByAccount(ctx context.Context, accountID string, status *domain.ImportBatchStatus, limit int, nextToken *string) ([]domain.ImportBatch, *string, error)
}

// ImportBatchWriter defines write operations for staged imports.
// Status changes only apply to rows that are still pending; otherwise
// apperrors.ErrInvalidStateTransition is returned and nothing is written.
type ImportBatchWriter interface {
	// SaveBatch persists a new pending batch.
	SaveBatch(ctx context.Context, batch domain.ImportBatch) error

	// ApplyBatch marks the batch applied and inserts its transactions and audit record atomically.
	ApplyBatch(ctx context.Context, batch domain.ImportBatch, txns []domain.Transaction, record domain.TransactionImport) error

	// RejectBatch marks the batch rejected with its reason.
	RejectBatch(ctx context.Context, batch domain.ImportBatch) error
}

// ImportBatchRepositoryFacade combines all batch-related repository interfaces
type ImportBatchRepositoryFacade interface {
	ImportBatchReader
	ImportBatchWriter
}

// ImportBatchRepositoryWithTx extends ImportBatchRepositoryFacade with transaction capabilities
type ImportBatchRepositoryWithTx interface {
	ImportBatchRepositoryFacade
	TransactionManager
}
