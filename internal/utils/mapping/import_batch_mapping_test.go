package mapping_test

import (
	"testing"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/utils/mapping"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportBatchMapping_KeepsDraftOrderAndFlags(t *testing.T) {
	category := "cat-food"
	batch := domain.ImportBatch{
		BatchID:   "batch-1",
		AccountID: "acc-1",
		Status:    domain.BatchPending,
		ProposedTransactions: []domain.TransactionDraft{
			{Date: time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC), Description: "Payment received", Amount: decimal.RequireFromString("1500.00"), OriginalCurrency: "EUR", Duplicate: true},
			{Date: time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC), Description: "Coffee", Amount: decimal.RequireFromString("-3.50"), OriginalCurrency: "EUR", CategoryID: &category, Tags: []string{"ref:1"}},
		},
		TransactionCount: 2,
	}

	row, err := mapping.ToModelImportBatch(batch)
	require.NoError(t, err)
	assert.Equal(t, "pending", row.Status)

	back, err := mapping.ToDomainImportBatch(row)
	require.NoError(t, err)
	if diff := cmp.Diff(batch.ProposedTransactions, back.ProposedTransactions); diff != "" {
		t.Errorf("drafts changed (-want +got):\n%s", diff)
	}
}

func TestToDomainImportBatch_CorruptPayload(t *testing.T) {
	row, err := mapping.ToModelImportBatch(domain.ImportBatch{BatchID: "b"})
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(row.ProposedTransactions))

	row.ProposedTransactions = []byte("{not json")
	_, err = mapping.ToDomainImportBatch(row)
	assert.Error(t, err)
}
