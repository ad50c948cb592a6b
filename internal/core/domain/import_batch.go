package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
)

// ImportBatchStatus is the review state of a staged import.
type ImportBatchStatus string

const (
	BatchPending  ImportBatchStatus = "pending"
	BatchApplied  ImportBatchStatus = "applied"
	BatchRejected ImportBatchStatus = "rejected"
)

// ImportBatch holds parsed drafts awaiting a reviewer decision. Only pending batches may change.
type ImportBatch struct {
	BatchID              string             `json:"batchID"`
	AccountID            string             `json:"accountID"`
	Status               ImportBatchStatus  `json:"status"`
	ProposedTransactions []TransactionDraft `json:"proposedTransactions"`
	TransactionCount     int                `json:"transactionCount"`
	RejectionReason      *string            `json:"rejectionReason,omitempty"`
	ApprovedBy           *string            `json:"approvedBy,omitempty"`
	ApprovedAt           *time.Time         `json:"approvedAt,omitempty"`
	Parser               string             `json:"parser"`
	FileName             string             `json:"fileName"`
	SourceFileURI        *string            `json:"sourceFileURI,omitempty"`
	AuditFields
}

// Approve moves a pending batch to applied.
func (b *ImportBatch) Approve(approvedBy string, at time.Time) error {
	if b.Status != BatchPending {
		return fmt.Errorf("%w: batch %s is %s, cannot approve", apperrors.ErrInvalidStateTransition, b.BatchID, b.Status)
	}
	b.Status = BatchApplied
	b.ApprovedBy = &approvedBy
	b.ApprovedAt = &at
	b.LastUpdatedAt = at
	b.LastUpdatedBy = approvedBy
	return nil
}

// Reject moves a pending batch to rejected. The reason must not be blank.
func (b *ImportBatch) Reject(reason, rejectedBy string, at time.Time) error {
	if b.Status != BatchPending {
		return fmt.Errorf("%w: batch %s is %s, cannot reject", apperrors.ErrInvalidStateTransition, b.BatchID, b.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: rejection reason is required", apperrors.ErrValidation)
	}
	b.Status = BatchRejected
	b.RejectionReason = &reason
	b.LastUpdatedAt = at
	b.LastUpdatedBy = rejectedBy
	return nil
}

// CommittableDrafts returns the proposed drafts that are not flagged as duplicates, in order.
func (b *ImportBatch) CommittableDrafts() []TransactionDraft {
	out := make([]TransactionDraft, 0, len(b.ProposedTransactions))
	for _, d := range b.ProposedTransactions {
		if !d.Duplicate {
			out = append(out, d)
		}
	}
	return out
}
