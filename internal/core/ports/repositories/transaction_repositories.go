package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
)

// TransactionReader defines read operations for committed transactions
type TransactionReader interface {
	// ListTransactionsForAccount returns the account's transactions dated within [from, to].
	ListTransactionsForAccount(ctx context.Context, accountID string, from, to time.Time) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for committed transactions
type TransactionWriter interface {
	// SaveImportedTransactions persists the transactions and their audit record in one database transaction.
	SaveImportedTransactions(ctx context.Context, record domain.TransactionImport, txns []domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
