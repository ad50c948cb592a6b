package domain

import "time"

// TransactionImport is the audit record written for every committed import.
type TransactionImport struct {
	ImportID       string    `json:"importID"`
	AccountID      string    `json:"accountID"`
	BatchID        *string   `json:"batchID,omitempty"`
	Parser         string    `json:"parser"`
	FileName       string    `json:"fileName"`
	SourceFileURI  *string   `json:"sourceFileURI,omitempty"`
	TotalCount     int       `json:"totalCount"`
	DuplicateCount int       `json:"duplicateCount"`
	ImportedCount  int       `json:"importedCount"`
	ImportedAt     time.Time `json:"importedAt"`
	ImportedBy     string    `json:"importedBy"`
}
