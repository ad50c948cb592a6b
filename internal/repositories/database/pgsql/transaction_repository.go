package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portsrepo "github.com/SscSPs/statement_importer/internal/core/ports/repositories"
	"github.com/SscSPs/statement_importer/internal/models"
	"github.com/SscSPs/statement_importer/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

var transactionColumns = []string{
	"transaction_id", "account_id", "transaction_date", "type",
	"original_amount", "original_currency_code",
	"converted_amount", "converted_currency_code", "fx_rate", "fx_source",
	"category_id", "counterparty_name", "description", "bank_description", "tags",
	"import_source", "import_id", "batch_id", "reconciled_at",
	"created_at", "created_by", "last_updated_at", "last_updated_by",
}

// ListTransactionsForAccount returns the account's transactions dated within [from, to], oldest first.
func (r *PgxTransactionRepository) ListTransactionsForAccount(ctx context.Context, accountID string, from, to time.Time) ([]domain.Transaction, error) {
	query := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"account_id": accountID}).
		Where(sq.GtOrEq{"transaction_date": from}).
		Where(sq.LtOrEq{"transaction_date": to}).
		OrderBy("transaction_date", "created_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list transactions", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var m models.Transaction
		if err := rows.Scan(
			&m.TransactionID, &m.AccountID, &m.TransactionDate, &m.Type,
			&m.OriginalAmount, &m.OriginalCurrency,
			&m.ConvertedAmount, &m.ConvertedCurrency, &m.FxRate, &m.FxSource,
			&m.CategoryID, &m.CounterpartyName, &m.Description, &m.BankDescription, &m.Tags,
			&m.ImportSource, &m.ImportID, &m.BatchID, &m.ReconciledAt,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction", err)
		}
		out = append(out, mapping.ToDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate transactions", err)
	}
	return out, nil
}

// SaveImportedTransactions persists the transactions and their audit record in one database transaction.
func (r *PgxTransactionRepository) SaveImportedTransactions(ctx context.Context, record domain.TransactionImport, txns []domain.Transaction) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := insertImportRecord(ctx, tx, record); err != nil {
			return err
		}
		return insertTransactions(ctx, tx, txns)
	})
}

func insertImportRecord(ctx context.Context, tx pgx.Tx, record domain.TransactionImport) error {
	m := mapping.ToModelTransactionImport(record)
	query := `
		INSERT INTO transaction_imports (import_id, account_id, batch_id, parser, file_name, source_file_uri,
			total_count, duplicate_count, imported_count, imported_at, imported_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		m.ImportID, m.AccountID, m.BatchID, m.Parser, m.FileName, m.SourceFileURI,
		m.TotalCount, m.DuplicateCount, m.ImportedCount, m.ImportedAt, m.ImportedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert import record "+m.ImportID, err)
	}
	return nil
}

func insertTransactions(ctx context.Context, tx pgx.Tx, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `
		INSERT INTO transactions (transaction_id, account_id, transaction_date, type,
			original_amount, original_currency_code,
			converted_amount, converted_currency_code, fx_rate, fx_source,
			category_id, counterparty_name, description, bank_description, tags,
			import_source, import_id, batch_id, reconciled_at,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	for _, txn := range txns {
		m := mapping.ToModelTransaction(txn)
		batch.Queue(query,
			m.TransactionID, m.AccountID, m.TransactionDate, m.Type,
			m.OriginalAmount, m.OriginalCurrency,
			m.ConvertedAmount, m.ConvertedCurrency, m.FxRate, m.FxSource,
			m.CategoryID, m.CounterpartyName, m.Description, m.BankDescription, m.Tags,
			m.ImportSource, m.ImportID, m.BatchID, m.ReconciledAt,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: transaction already stored", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to execute transaction batch", err)
	}
	return nil
}
