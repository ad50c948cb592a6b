package models

import "time"

// ImportBatch represents a row of the import_batches table.
// ProposedTransactions holds the JSON encoded draft list.
type ImportBatch struct {
	BatchID              string     `db:"batch_id"`
	AccountID            string     `db:"account_id"`
	Status               string     `db:"status"`
	ProposedTransactions []byte     `db:"proposed_transactions"`
	TransactionCount     int        `db:"transaction_count"`
	RejectionReason      *string    `db:"rejection_reason"`
	ApprovedBy           *string    `db:"approved_by"`
	ApprovedAt           *time.Time `db:"approved_at"`
	Parser               string     `db:"parser"`
	FileName             string     `db:"file_name"`
	SourceFileURI        *string    `db:"source_file_uri"`
	AuditFields
}
