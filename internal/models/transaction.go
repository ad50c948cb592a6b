package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a row of the transactions table. Pointer fields are nullable columns.
type Transaction struct {
	TransactionID     string           `db:"transaction_id"`
	AccountID         string           `db:"account_id"`
	TransactionDate   time.Time        `db:"transaction_date"`
	Type              string           `db:"type"` // debit or credit
	OriginalAmount    decimal.Decimal  `db:"original_amount"`
	OriginalCurrency  string           `db:"original_currency_code"`
	ConvertedAmount   *decimal.Decimal `db:"converted_amount"`
	ConvertedCurrency *string          `db:"converted_currency_code"`
	FxRate            *decimal.Decimal `db:"fx_rate"`
	FxSource          *string          `db:"fx_source"`
	CategoryID        *string          `db:"category_id"`
	CounterpartyName  *string          `db:"counterparty_name"`
	Description       string           `db:"description"`
	BankDescription   string           `db:"bank_description"`
	Tags              []string         `db:"tags"`
	ImportSource      string           `db:"import_source"`
	ImportID          *string          `db:"import_id"`
	BatchID           *string          `db:"batch_id"`
	ReconciledAt      *time.Time       `db:"reconciled_at"`
	AuditFields
}

// TransactionImport represents a row of the transaction_imports audit table.
type TransactionImport struct {
	ImportID       string    `db:"import_id"`
	AccountID      string    `db:"account_id"`
	BatchID        *string   `db:"batch_id"`
	Parser         string    `db:"parser"`
	FileName       string    `db:"file_name"`
	SourceFileURI  *string   `db:"source_file_uri"`
	TotalCount     int       `db:"total_count"`
	DuplicateCount int       `db:"duplicate_count"`
	ImportedCount  int       `db:"imported_count"`
	ImportedAt     time.Time `db:"imported_at"`
	ImportedBy     string    `db:"imported_by"`
}
