package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether money entered or left the account.
type TransactionType string

const (
	Debit  TransactionType = "debit"
	Credit TransactionType = "credit"
)

// Transaction is a committed statement line. It is only created through an import commit path.
type Transaction struct {
	TransactionID     string           `json:"transactionID"`
	AccountID         string           `json:"accountID"`
	Date              time.Time        `json:"date"`
	Type              TransactionType  `json:"type"`
	OriginalAmount    decimal.Decimal  `json:"originalAmount"`   // signed, in OriginalCurrency
	OriginalCurrency  string           `json:"originalCurrency"` // ISO code
	ConvertedAmount   *decimal.Decimal `json:"convertedAmount,omitempty"`
	ConvertedCurrency *string          `json:"convertedCurrency,omitempty"`
	FxRate            *decimal.Decimal `json:"fxRate,omitempty"`
	FxSource          *FxSource        `json:"fxSource,omitempty"`
	CategoryID        *string          `json:"categoryID,omitempty"`
	Counterparty      *string          `json:"counterparty,omitempty"`
	Description       string           `json:"description"`
	BankDescription   string           `json:"bankDescription,omitempty"`
	Tags              []string         `json:"tags,omitempty"`
	ImportSource      string           `json:"importSource"`
	ImportID          *string          `json:"importID,omitempty"`
	BatchID           *string          `json:"batchID,omitempty"`
	ReconciledAt      *time.Time       `json:"reconciledAt,omitempty"`
	AuditFields
}

// Signature returns the dedup key of the transaction, computed exactly like TransactionDraft.Signature.
func (t Transaction) Signature() string {
	return Signature(t.Date, t.OriginalAmount, t.Description)
}

// IsMultiCurrency reports whether the transaction carries a conversion into another currency.
func (t Transaction) IsMultiCurrency() bool {
	return t.ConvertedAmount != nil && t.ConvertedCurrency != nil && *t.ConvertedCurrency != t.OriginalCurrency
}
