package services

import (
	"context"

	"github.com/SscSPs/statement_importer/internal/core/domain"
)

// CategorizationSvc assigns categories and counterparties to drafts.
type CategorizationSvc interface {
	// Resolve picks a category for one draft from the given categories and rules.
	Resolve(draft domain.TransactionDraft, categories []domain.Category, rules []domain.CategorizationRule) domain.Resolution

	// CategorizeDrafts resolves every draft against the account owner's categories and the configured rules.
	CategorizeDrafts(ctx context.Context, account domain.Account, drafts []domain.TransactionDraft) ([]domain.TransactionDraft, error)
}
