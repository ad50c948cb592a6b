package services

import (
	"github.com/SscSPs/statement_importer/internal/archive"
	"github.com/SscSPs/statement_importer/internal/cache"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portsrepo "github.com/SscSPs/statement_importer/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/metrics"
	"github.com/SscSPs/statement_importer/internal/platform/config"
	"github.com/ulule/limiter/v3"
)

// Dependencies are the non-repository collaborators of the services. Nil fields disable the feature.
type Dependencies struct {
	Registry     ParserRegistry
	FxCache      cache.Client[domain.ResolvedRate]
	RateFeed     RateFeed
	FetchLimiter *limiter.Limiter
	Archive      archive.Store
	Metrics      *metrics.Metrics
	Events       EventEnqueuer
	Rules        []domain.CategorizationRule
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps Dependencies) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	fxOptions := []FxRateOption{WithFxMetrics(deps.Metrics)}
	if deps.FxCache != nil {
		fxOptions = append(fxOptions, WithFxCache(deps.FxCache, cfg.FxCacheTTL))
	}
	if deps.RateFeed != nil {
		fxOptions = append(fxOptions, WithRateFeed(deps.RateFeed))
	}
	if deps.FetchLimiter != nil {
		fxOptions = append(fxOptions, WithFetchLimiter(deps.FetchLimiter))
	}
	if repos.CurrencyRepo != nil {
		fxOptions = append(fxOptions, WithCurrencyCatalog(repos.CurrencyRepo))
	}
	container.FxRate = NewFxRateService(repos.FxRateRepo, fxOptions...)

	container.Dedup = NewDedupMatcher()
	container.Categorization = NewCategorizationService(repos.CategoryRepo, WithCategorizationRules(deps.Rules))

	container.ImportBatch = NewImportBatchService(
		repos.ImportBatchRepo,
		repos.AccountRepo,
		WithBatchFxResolver(container.FxRate, cfg.ReportingCurrency),
		WithBatchHistoryCheck(repos.TransactionRepo, container.Dedup),
		WithBatchMetrics(deps.Metrics),
	)

	importOptions := []ImportOption{
		WithImportFxResolver(container.FxRate, cfg.ReportingCurrency),
		WithImportMetrics(deps.Metrics),
	}
	if deps.Archive != nil {
		importOptions = append(importOptions, WithArchive(deps.Archive))
	}
	if deps.Events != nil {
		importOptions = append(importOptions, WithImportEvents(deps.Events))
	}
	container.Import = NewImportService(
		deps.Registry,
		repos.AccountRepo,
		repos.TransactionRepo,
		container.Dedup,
		container.Categorization,
		container.ImportBatch,
		importOptions...,
	)

	return container
}
