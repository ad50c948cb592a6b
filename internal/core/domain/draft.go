package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDraft is a parsed, not yet persisted statement line.
// Amount is signed: positive for credits, negative for debits.
type TransactionDraft struct {
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	BankDescription  string          `json:"bankDescription,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	OriginalCurrency string          `json:"originalCurrency"`
	Counterparty     *string         `json:"counterparty,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	ImportSource     string          `json:"importSource"`
	CategoryID       *string         `json:"categoryId,omitempty"`
	CategoryName     *string         `json:"categoryName,omitempty"`
	Duplicate        bool            `json:"duplicate"`
}

// Signature returns the dedup key of the draft.
func (d TransactionDraft) Signature() string {
	return Signature(d.Date, d.Amount, d.Description)
}

// Type derives credit or debit from the sign of the amount.
func (d TransactionDraft) Type() TransactionType {
	if d.Amount.IsNegative() {
		return Debit
	}
	return Credit
}
