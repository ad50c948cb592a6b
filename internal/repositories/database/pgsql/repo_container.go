package pgsql

import (
	portsrepo "github.com/SscSPs/statement_importer/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds every pgx-backed repository on the shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool),
		CurrencyRepo:    newPgxCurrencyRepository(dbPool),
		CategoryRepo:    newPgxCategoryRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		FxRateRepo:      newPgxFxRateRepository(dbPool),
		ImportBatchRepo: newPgxImportBatchRepository(dbPool),
	}
}
