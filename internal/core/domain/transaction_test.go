package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_IsMultiCurrency(t *testing.T) {
	tests := []struct {
		name        string
		transaction domain.Transaction
		want        bool
	}{
		{
			name:        "not converted",
			transaction: domain.Transaction{OriginalCurrency: "EUR"},
			want:        false,
		},
		{
			name: "converted USD to EUR",
			transaction: domain.Transaction{
				OriginalCurrency:  "USD",
				ConvertedAmount:   decimalPtr(decimal.NewFromFloat(92.5)),
				ConvertedCurrency: stringPtr("EUR"),
			},
			want: true,
		},
		{
			name: "converted into the same currency",
			transaction: domain.Transaction{
				OriginalCurrency:  "EUR",
				ConvertedAmount:   decimalPtr(decimal.NewFromInt(10)),
				ConvertedCurrency: stringPtr("EUR"),
			},
			want: false,
		},
		{
			name: "converted currency missing",
			transaction: domain.Transaction{
				OriginalCurrency: "USD",
				ConvertedAmount:  decimalPtr(decimal.NewFromInt(10)),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.transaction.IsMultiCurrency())
		})
	}
}

func TestSignature_DraftAndTransactionAgree(t *testing.T) {
	date := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("1500")

	draft := domain.TransactionDraft{Date: date, Amount: amount, Description: "Payment received"}
	txn := domain.Transaction{Date: date, OriginalAmount: decimal.RequireFromString("1500.00"), Description: "Payment received"}

	assert.Equal(t, draft.Signature(), txn.Signature())
	assert.Regexp(t, `^2025-01-17\|1500\.00\|[0-9a-f]{8}$`, draft.Signature())
}

func TestSignature_Distinguishes(t *testing.T) {
	date := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	base := domain.Signature(date, decimal.NewFromInt(10), "Coffee")

	assert.NotEqual(t, base, domain.Signature(date.AddDate(0, 0, 1), decimal.NewFromInt(10), "Coffee"))
	assert.NotEqual(t, base, domain.Signature(date, decimal.NewFromInt(-10), "Coffee"))
	assert.NotEqual(t, base, domain.Signature(date, decimal.NewFromInt(10), "Tea"))
	assert.Equal(t, base, domain.Signature(date, decimal.NewFromInt(10), "  coffee "))
}

func TestTransactionDraft_Type(t *testing.T) {
	assert.Equal(t, domain.Debit, domain.TransactionDraft{Amount: decimal.NewFromInt(-5)}.Type())
	assert.Equal(t, domain.Credit, domain.TransactionDraft{Amount: decimal.NewFromInt(5)}.Type())
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func stringPtr(s string) *string {
	return &s
}
