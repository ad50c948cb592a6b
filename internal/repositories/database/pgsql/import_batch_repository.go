package pgsql

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portsrepo "github.com/SscSPs/statement_importer/internal/core/ports/repositories"
	"github.com/SscSPs/statement_importer/internal/models"
	"github.com/SscSPs/statement_importer/internal/utils/mapping"
	"github.com/SscSPs/statement_importer/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultBatchPageSize = 20

type PgxImportBatchRepository struct {
	BaseRepository
}

func newPgxImportBatchRepository(pool *pgxpool.Pool) *PgxImportBatchRepository {
	return &PgxImportBatchRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ImportBatchRepositoryWithTx = (*PgxImportBatchRepository)(nil)

var batchColumns = []string{
	"batch_id", "account_id", "status", "proposed_transactions", "transaction_count",
	"rejection_reason", "approved_by", "approved_at", "parser", "file_name", "source_file_uri",
	"created_at", "created_by", "last_updated_at", "last_updated_by",
}

func scanBatch(row pgx.Row) (models.ImportBatch, error) {
	var m models.ImportBatch
	err := row.Scan(
		&m.BatchID, &m.AccountID, &m.Status, &m.ProposedTransactions, &m.TransactionCount,
		&m.RejectionReason, &m.ApprovedBy, &m.ApprovedAt, &m.Parser, &m.FileName, &m.SourceFileURI,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// SaveBatch persists a new pending batch.
func (r *PgxImportBatchRepository) SaveBatch(ctx context.Context, batch domain.ImportBatch) error {
	m, err := mapping.ToModelImportBatch(batch)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode batch", err)
	}
	query := `
		INSERT INTO import_batches (batch_id, account_id, status, proposed_transactions, transaction_count,
			rejection_reason, approved_by, approved_at, parser, file_name, source_file_uri,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.BatchID, m.AccountID, m.Status, m.ProposedTransactions, m.TransactionCount,
		m.RejectionReason, m.ApprovedBy, m.ApprovedAt, m.Parser, m.FileName, m.SourceFileURI,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: batch %s", apperrors.ErrDuplicate, m.BatchID)
		}
		return apperrors.NewAppError(500, "failed to save batch "+m.BatchID, err)
	}
	return nil
}

// FindBatchByID retrieves a batch with its proposed drafts.
func (r *PgxImportBatchRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.ImportBatch, error) {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(batchColumns...).
		From("import_batches").
		Where(sq.Eq{"batch_id": batchID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	m, err := scanBatch(r.Pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("batch " + batchID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find batch "+batchID, err)
	}
	batch, err := mapping.ToDomainImportBatch(m)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode batch "+batchID, err)
	}
	return &batch, nil
}

// ListBatchesByAccount returns the account's batches, newest first.
func (r *PgxImportBatchRepository) ListBatchesByAccount(ctx context.Context, accountID string, status *domain.ImportBatchStatus, limit int, nextToken *string) ([]domain.ImportBatch, *string, error) {
	if limit <= 0 {
		limit = defaultBatchPageSize
	}
	// One extra row tells whether another page exists.
	fetchLimit := limit + 1

	query := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(batchColumns...).
		From("import_batches").
		Where(sq.Eq{"account_id": accountID}).
		OrderBy("created_at DESC", "batch_id DESC").
		Limit(uint64(fetchLimit))
	if status != nil {
		query = query.Where(sq.Eq{"status": string(*status)})
	}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid nextToken")
		}
		query = query.Where(sq.Expr("(created_at, batch_id) < (?, ?)", lastCreatedAt, lastID))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query batches for account "+accountID, err)
	}
	defer rows.Close()

	modelBatches := make([]models.ImportBatch, 0, fetchLimit)
	for rows.Next() {
		m, err := scanBatch(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan batch", err)
		}
		modelBatches = append(modelBatches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to iterate batches", err)
	}

	var token *string
	if len(modelBatches) > limit {
		modelBatches = modelBatches[:limit]
		last := modelBatches[limit-1]
		newToken := pagination.EncodeToken(last.CreatedAt, last.BatchID)
		token = &newToken
	}

	out := make([]domain.ImportBatch, 0, len(modelBatches))
	for _, m := range modelBatches {
		batch, err := mapping.ToDomainImportBatch(m)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to decode batch "+m.BatchID, err)
		}
		out = append(out, batch)
	}
	return out, token, nil
}

// ApplyBatch marks a pending batch applied and inserts its transactions and audit record atomically.
func (r *PgxImportBatchRepository) ApplyBatch(ctx context.Context, batch domain.ImportBatch, txns []domain.Transaction, record domain.TransactionImport) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE import_batches
			SET status = $2, approved_by = $3, approved_at = $4, last_updated_at = $5, last_updated_by = $6
			WHERE batch_id = $1 AND status = 'pending';
		`
		tag, err := tx.Exec(ctx, query,
			batch.BatchID, string(domain.BatchApplied), batch.ApprovedBy, batch.ApprovedAt,
			batch.LastUpdatedAt, batch.LastUpdatedBy)
		if err != nil {
			return apperrors.NewAppError(500, "failed to apply batch "+batch.BatchID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: batch %s is no longer pending", apperrors.ErrInvalidStateTransition, batch.BatchID)
		}
		if err := insertImportRecord(ctx, tx, record); err != nil {
			return err
		}
		return insertTransactions(ctx, tx, txns)
	})
}

// RejectBatch marks a pending batch rejected with its reason.
func (r *PgxImportBatchRepository) RejectBatch(ctx context.Context, batch domain.ImportBatch) error {
	query := `
		UPDATE import_batches
		SET status = $2, rejection_reason = $3, last_updated_at = $4, last_updated_by = $5
		WHERE batch_id = $1 AND status = 'pending';
	`
	tag, err := r.Pool.Exec(ctx, query,
		batch.BatchID, string(domain.BatchRejected), batch.RejectionReason, batch.LastUpdatedAt, batch.LastUpdatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to reject batch "+batch.BatchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: batch %s is no longer pending", apperrors.ErrInvalidStateTransition, batch.BatchID)
	}
	return nil
}
