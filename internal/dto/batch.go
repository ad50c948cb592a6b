package dto

import (
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RejectBatchRequest defines the data needed to reject a pending batch.
type RejectBatchRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// DraftResponse mirrors domain.TransactionDraft with the date rendered as a calendar day.
type DraftResponse struct {
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	BankDescription string          `json:"bankDescription,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Counterparty    *string         `json:"counterparty,omitempty"`
	CategoryID      *string         `json:"categoryID,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	Duplicate       bool            `json:"duplicate"`
}

// BatchResponse defines the data returned for an import batch.
type BatchResponse struct {
	BatchID          string                   `json:"batchID"`
	AccountID        string                   `json:"accountID"`
	Status           domain.ImportBatchStatus `json:"status"`
	Parser           string                   `json:"parser"`
	FileName         string                   `json:"fileName"`
	SourceFileURI    *string                  `json:"sourceFileURI,omitempty"`
	TransactionCount int                      `json:"transactionCount"`
	RejectionReason  *string                  `json:"rejectionReason,omitempty"`
	ApprovedBy       *string                  `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time               `json:"approvedAt,omitempty"`
	Drafts           []DraftResponse          `json:"drafts"`
	CreatedAt        time.Time                `json:"createdAt"`
	CreatedBy        string                   `json:"createdBy"`
	LastUpdatedAt    time.Time                `json:"lastUpdatedAt"`
	LastUpdatedBy    string                   `json:"lastUpdatedBy"`
}

// ToDraftResponse converts a domain.TransactionDraft to DraftResponse DTO
func ToDraftResponse(d domain.TransactionDraft) DraftResponse {
	return DraftResponse{
		Date:            d.Date.Format("2006-01-02"),
		Description:     d.Description,
		BankDescription: d.BankDescription,
		Amount:          d.Amount,
		Currency:        d.OriginalCurrency,
		Counterparty:    d.Counterparty,
		CategoryID:      d.CategoryID,
		Tags:            d.Tags,
		Duplicate:       d.Duplicate,
	}
}

// ToListDraftResponse converts a slice of drafts, keeping their order.
func ToListDraftResponse(drafts []domain.TransactionDraft) []DraftResponse {
	res := make([]DraftResponse, len(drafts))
	for i, d := range drafts {
		res[i] = ToDraftResponse(d)
	}
	return res
}

// ToBatchResponse converts a domain.ImportBatch to BatchResponse DTO
func ToBatchResponse(b *domain.ImportBatch) BatchResponse {
	return BatchResponse{
		BatchID:          b.BatchID,
		AccountID:        b.AccountID,
		Status:           b.Status,
		Parser:           b.Parser,
		FileName:         b.FileName,
		SourceFileURI:    b.SourceFileURI,
		TransactionCount: b.TransactionCount,
		RejectionReason:  b.RejectionReason,
		ApprovedBy:       b.ApprovedBy,
		ApprovedAt:       b.ApprovedAt,
		Drafts:           ToListDraftResponse(b.ProposedTransactions),
		CreatedAt:        b.CreatedAt,
		CreatedBy:        b.CreatedBy,
		LastUpdatedAt:    b.LastUpdatedAt,
		LastUpdatedBy:    b.LastUpdatedBy,
	}
}

// ListBatchesParams binds the query of the batch list endpoint.
type ListBatchesParams struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending applied rejected"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// BatchSummaryResponse is a batch without its drafts, used in listings.
type BatchSummaryResponse struct {
	BatchID          string                   `json:"batchID"`
	Status           domain.ImportBatchStatus `json:"status"`
	Parser           string                   `json:"parser"`
	FileName         string                   `json:"fileName"`
	TransactionCount int                      `json:"transactionCount"`
	CreatedAt        time.Time                `json:"createdAt"`
	CreatedBy        string                   `json:"createdBy"`
}

// ListBatchesResponse is a page of batches. NextToken is absent on the last page.
type ListBatchesResponse struct {
	Batches   []BatchSummaryResponse `json:"batches"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToListBatchesResponse converts a page of batches to ListBatchesResponse DTO
func ToListBatchesResponse(batches []domain.ImportBatch, nextToken *string) ListBatchesResponse {
	res := ListBatchesResponse{Batches: make([]BatchSummaryResponse, len(batches)), NextToken: nextToken}
	for i, b := range batches {
		res.Batches[i] = BatchSummaryResponse{
			BatchID:          b.BatchID,
			Status:           b.Status,
			Parser:           b.Parser,
			FileName:         b.FileName,
			TransactionCount: b.TransactionCount,
			CreatedAt:        b.CreatedAt,
			CreatedBy:        b.CreatedBy,
		}
	}
	return res
}
