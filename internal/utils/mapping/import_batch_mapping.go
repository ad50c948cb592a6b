package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/models"
)

// ToModelImportBatch converts a domain ImportBatch to a model ImportBatch, encoding the drafts as JSON.
func ToModelImportBatch(d domain.ImportBatch) (models.ImportBatch, error) {
	drafts := d.ProposedTransactions
	if drafts == nil {
		drafts = []domain.TransactionDraft{}
	}
	payload, err := json.Marshal(drafts)
	if err != nil {
		return models.ImportBatch{}, fmt.Errorf("encoding proposed transactions of batch %s: %w", d.BatchID, err)
	}
	return models.ImportBatch{
		BatchID:              d.BatchID,
		AccountID:            d.AccountID,
		Status:               string(d.Status),
		ProposedTransactions: payload,
		TransactionCount:     d.TransactionCount,
		RejectionReason:      d.RejectionReason,
		ApprovedBy:           d.ApprovedBy,
		ApprovedAt:           d.ApprovedAt,
		Parser:               d.Parser,
		FileName:             d.FileName,
		SourceFileURI:        d.SourceFileURI,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainImportBatch converts a model ImportBatch to a domain ImportBatch, decoding the drafts.
func ToDomainImportBatch(m models.ImportBatch) (domain.ImportBatch, error) {
	var drafts []domain.TransactionDraft
	if len(m.ProposedTransactions) > 0 {
		if err := json.Unmarshal(m.ProposedTransactions, &drafts); err != nil {
			return domain.ImportBatch{}, fmt.Errorf("decoding proposed transactions of batch %s: %w", m.BatchID, err)
		}
	}
	return domain.ImportBatch{
		BatchID:              m.BatchID,
		AccountID:            m.AccountID,
		Status:               domain.ImportBatchStatus(m.Status),
		ProposedTransactions: drafts,
		TransactionCount:     m.TransactionCount,
		RejectionReason:      m.RejectionReason,
		ApprovedBy:           m.ApprovedBy,
		ApprovedAt:           m.ApprovedAt,
		Parser:               m.Parser,
		FileName:             m.FileName,
		SourceFileURI:        m.SourceFileURI,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}, nil
}
