package dto

import (
	"github.com/SscSPs/statement_importer/internal/core/domain"
)

// ImportRequest is the input of one statement import.
// Content or Path must be set; Path is used by extraction tools that need a file.
type ImportRequest struct {
	AccountID    string
	DeclaredType string
	FileName     string
	Path         string
	Content      []byte
	Review       bool
	UserID       string
}

// ImportForm binds the multipart fields sent alongside the uploaded file.
type ImportForm struct {
	DeclaredType string `form:"declaredType" binding:"required"`
	Review       bool   `form:"review"`
}

// ImportResultResponse defines the data returned after an import or a batch approval.
type ImportResultResponse struct {
	Mode        domain.ImportMode `json:"mode"`
	Parser      string            `json:"parser"`
	AccountID   string            `json:"accountID"`
	ImportID    *string           `json:"importID,omitempty"`
	BatchID     *string           `json:"batchID,omitempty"`
	Total       int               `json:"total"`
	Duplicates  int               `json:"duplicates"`
	New         int               `json:"new"`
	Committed   int               `json:"committed"`
	Unconverted int               `json:"unconverted"`
	Drafts      []DraftResponse   `json:"drafts,omitempty"`
}

// ToImportResultResponse converts a domain.ImportResult to ImportResultResponse DTO
func ToImportResultResponse(res *domain.ImportResult) ImportResultResponse {
	return ImportResultResponse{
		Mode:        res.Mode,
		Parser:      res.Parser,
		AccountID:   res.AccountID,
		ImportID:    res.ImportID,
		BatchID:     res.BatchID,
		Total:       res.Total,
		Duplicates:  res.Duplicates,
		New:         res.New,
		Committed:   res.Committed,
		Unconverted: res.Unconverted,
		Drafts:      ToListDraftResponse(res.Drafts),
	}
}
