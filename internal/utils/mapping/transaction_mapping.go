package mapping

import (
	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	m := models.Transaction{
		TransactionID:     d.TransactionID,
		AccountID:         d.AccountID,
		TransactionDate:   d.Date,
		Type:              string(d.Type),
		OriginalAmount:    d.OriginalAmount,
		OriginalCurrency:  d.OriginalCurrency,
		ConvertedAmount:   d.ConvertedAmount,
		ConvertedCurrency: d.ConvertedCurrency,
		FxRate:            d.FxRate,
		CategoryID:        d.CategoryID,
		CounterpartyName:  d.Counterparty,
		Description:       d.Description,
		BankDescription:   d.BankDescription,
		Tags:              d.Tags,
		ImportSource:      d.ImportSource,
		ImportID:          d.ImportID,
		BatchID:           d.BatchID,
		ReconciledAt:      d.ReconciledAt,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
	if d.FxSource != nil {
		source := string(*d.FxSource)
		m.FxSource = &source
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	d := domain.Transaction{
		TransactionID:     m.TransactionID,
		AccountID:         m.AccountID,
		Date:              m.TransactionDate,
		Type:              domain.TransactionType(m.Type),
		OriginalAmount:    m.OriginalAmount,
		OriginalCurrency:  m.OriginalCurrency,
		ConvertedAmount:   m.ConvertedAmount,
		ConvertedCurrency: m.ConvertedCurrency,
		FxRate:            m.FxRate,
		CategoryID:        m.CategoryID,
		Counterparty:      m.CounterpartyName,
		Description:       m.Description,
		BankDescription:   m.BankDescription,
		Tags:              m.Tags,
		ImportSource:      m.ImportSource,
		ImportID:          m.ImportID,
		BatchID:           m.BatchID,
		ReconciledAt:      m.ReconciledAt,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
	if m.FxSource != nil {
		source := domain.FxSource(*m.FxSource)
		d.FxSource = &source
	}
	return d
}

// ToModelTransactionImport converts a domain TransactionImport to a model TransactionImport
func ToModelTransactionImport(d domain.TransactionImport) models.TransactionImport {
	return models.TransactionImport{
		ImportID:       d.ImportID,
		AccountID:      d.AccountID,
		BatchID:        d.BatchID,
		Parser:         d.Parser,
		FileName:       d.FileName,
		SourceFileURI:  d.SourceFileURI,
		TotalCount:     d.TotalCount,
		DuplicateCount: d.DuplicateCount,
		ImportedCount:  d.ImportedCount,
		ImportedAt:     d.ImportedAt,
		ImportedBy:     d.ImportedBy,
	}
}
