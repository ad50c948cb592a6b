package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
)

// FxRateReader defines read operations for stored exchange rates
type FxRateReader interface {
	// FindRate retrieves the rate stored for exactly (from, to, date).
	// Returns apperrors.ErrNotFound when no row exists.
	FindRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, date time.Time) (*domain.FxRate, error)
}

// FxRateWriter defines write operations for stored exchange rates
type FxRateWriter interface {
	// UpsertAutomaticRates stores fetched rates. Existing rows whose source is not
	// automatic are left untouched. Returns the number of rows written.
	UpsertAutomaticRates(ctx context.Context, rates []domain.FxRate) (int, error)

	// UpsertRate stores a rate unconditionally, replacing any row for the same (from, to, date).
	UpsertRate(ctx context.Context, rate domain.FxRate) error

	// DeleteRate removes the (from, to, date) row if its source is one of sources.
	DeleteRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, date time.Time, sources []domain.FxSource) (bool, error)
}

// FxRateRepositoryFacade combines all exchange rate-related repository interfaces
type FxRateRepositoryFacade interface {
	FxRateReader
	FxRateWriter
}
