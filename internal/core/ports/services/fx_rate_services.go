package services

import (
	"context"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FxRateReaderSvc resolves exchange rates. A nil rate with a nil error means no rate could be found.
type FxRateReaderSvc interface {
	// GetRate resolves the rate for (from, to) on the day of date.
	GetRate(ctx context.Context, from, to string, date time.Time) (*domain.ResolvedRate, error)

	// ConvertAmount multiplies amount by the resolved rate, rounded to two decimals.
	ConvertAmount(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) (*decimal.Decimal, error)
}

// FxRateWriterSvc manages stored exchange rates.
type FxRateWriterSvc interface {
	// OverrideRate pins a rate for one day. Fetched rates never replace it.
	OverrideRate(ctx context.Context, from, to string, rate decimal.Decimal, date time.Time, source domain.FxSource) (*domain.FxRate, error)

	// ClearOverride removes a pinned rate so fetched rates apply again.
	ClearOverride(ctx context.Context, from, to string, date time.Time) error

	// SyncLatest fetches the latest reference rates and stores them. Returns the number of rows written.
	SyncLatest(ctx context.Context) (int, error)
}

// FxRateSvcFacade combines all exchange rate-related service interfaces
type FxRateSvcFacade interface {
	FxRateReaderSvc
	FxRateWriterSvc
}
