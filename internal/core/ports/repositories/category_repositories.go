package repositories

import (
	"context"

	"github.com/SscSPs/statement_importer/internal/core/domain"
)

// CategoryReader defines read operations for transaction categories
type CategoryReader interface {
	// ListCategoriesByOwner returns every category the owner has defined.
	ListCategoriesByOwner(ctx context.Context, ownerID string) ([]domain.Category, error)
}

// CategoryRepositoryFacade combines all category-related repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
}
