// Package app assembles the services shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/statement_importer/internal/archive"
	"github.com/SscSPs/statement_importer/internal/cache"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/core/services"
	"github.com/SscSPs/statement_importer/internal/fxfeed"
	"github.com/SscSPs/statement_importer/internal/metrics"
	"github.com/SscSPs/statement_importer/internal/platform/config"
	"github.com/SscSPs/statement_importer/internal/repositories/database/pgsql"
	"github.com/SscSPs/statement_importer/internal/statement/extract"
	"github.com/SscSPs/statement_importer/internal/statement/parsers"
	"github.com/SscSPs/statement_importer/internal/utils"
	"github.com/SscSPs/statement_importer/pkg/database"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"google.golang.org/api/option"
)

// App holds the wired services and the resources that must be released on shutdown.
type App struct {
	Config   *config.Config
	Pool     *pgxpool.Pool
	Services *portssvc.ServiceContainer
	Registry *prometheus.Registry
	Posthog  *utils.PosthogClientWrapper

	closers []func() error
}

// New connects to the database and wires every service from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, err
	}
	a.Pool = pool
	a.closers = append(a.closers, func() error { database.ClosePgxPool(pool); return nil })

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mtc := metrics.New(a.Registry)

	fxCache, err := a.newFxCache(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	fetchRate, err := limiter.NewRateFromFormatted(cfg.FxFetchRate)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid FX_FETCH_RATE %q: %w", cfg.FxFetchRate, err)
	}

	store, err := a.newArchive(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Posthog = utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	a.closers = append(a.closers, func() error { a.Posthog.Close(); return nil })

	deps := services.Dependencies{
		Registry:     NewParserRegistry(cfg, mtc),
		FxCache:      fxCache,
		RateFeed:     fxfeed.NewECBClient(resty.New().SetTimeout(cfg.FxFeedTimeout), cfg.FxFeedURL),
		FetchLimiter: limiter.New(memory.NewStore(), fetchRate),
		Archive:      store,
		Metrics:      mtc,
		Events:       a.Posthog,
		Rules:        cfg.CategorizationRules,
	}

	repos := pgsql.NewRepositoryProvider(pool)
	if err := services.ValidateReportingCurrency(ctx, repos.CurrencyRepo, cfg.ReportingCurrency); err != nil {
		a.Close()
		return nil, err
	}
	a.Services = services.NewServiceContainer(cfg, repos, deps)
	logger.Info("Services initialized",
		slog.String("fx_cache", cfg.FxCacheBackend),
		slog.String("archive", cfg.ArchiveBackend),
		slog.Int("categorization_rules", len(cfg.CategorizationRules)))
	return a, nil
}

// NewParserRegistry builds the extraction chain (text layer, then OCR) and registers every bank format.
func NewParserRegistry(cfg *config.Config, mtc *metrics.Metrics) *parsers.Registry {
	runner := extract.ExecRunner{Timeout: cfg.OCRTimeout}
	ocr := extract.NewOCR(runner,
		extract.WithBinaries(cfg.PDFToPPMPath, cfg.TesseractPath),
		extract.WithLanguage(cfg.OCRLanguage),
		extract.WithDPI(cfg.OCRDPI),
		extract.WithConcurrency(cfg.OCRConcurrency),
		extract.WithTempRoot(cfg.OCRTempDir),
		extract.WithPagesObserver(mtc.RecordOCRPages),
	)
	chain := extract.NewChain(extract.NewPDFTextLayer(runner, cfg.PDFToTextPath), ocr)
	return parsers.DefaultRegistry(chain, ocr)
}

func (a *App) newFxCache(ctx context.Context, cfg *config.Config) (cache.Client[domain.ResolvedRate], error) {
	if cfg.FxCacheBackend != config.CacheRedis {
		mem := cache.NewInMemoryClient[domain.ResolvedRate]()
		a.closers = append(a.closers, func() error { mem.Close(); return nil })
		return mem, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	a.closers = append(a.closers, rdb.Close)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return cache.NewRedisClient[domain.ResolvedRate](rdb, "fx:"), nil
}

// newArchive returns nil when archiving is disabled.
func (a *App) newArchive(ctx context.Context, cfg *config.Config) (archive.Store, error) {
	switch cfg.ArchiveBackend {
	case config.ArchiveLocal:
		return archive.NewLocalStore(cfg.ArchiveDir), nil
	case config.ArchiveGCS:
		var opts []option.ClientOption
		if cfg.GCSEndpoint != "" {
			opts = append(opts, option.WithEndpoint(cfg.GCSEndpoint), option.WithoutAuthentication())
		}
		store, err := archive.NewGCSStore(ctx, cfg.GCSBucket, opts...)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
	return nil, nil
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() error {
	var result *multierror.Error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	a.closers = nil
	return result.ErrorOrNil()
}
