package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/cache"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portsrepo "github.com/SscSPs/statement_importer/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/fxfeed"
	"github.com/SscSPs/statement_importer/internal/metrics"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
)

const (
	// DefaultFxCacheTTL is how long a resolved rate is served from the cache.
	DefaultFxCacheTTL = time.Hour

	rateScale   = 8
	amountScale = 2
)

// RateFeed downloads published reference rates.
type RateFeed interface {
	Fetch(ctx context.Context) ([]fxfeed.RateSheet, error)
}

type fxRateService struct {
	BaseService
	rateRepo portsrepo.FxRateRepositoryFacade
	cache    cache.Client[domain.ResolvedRate]
	cacheTTL time.Duration
	feed     RateFeed
	limiter  *limiter.Limiter
	metrics  *metrics.Metrics
	now      func() time.Time
	sources  []rateSource
	fetched  fetchedSpans

	currencies portsrepo.CurrencyReader
}

// FxRateOption configures the FX rate service
type FxRateOption func(*fxRateService)

// WithFxCache replaces the default in-memory cache.
func WithFxCache(c cache.Client[domain.ResolvedRate], ttl time.Duration) FxRateOption {
	return func(s *fxRateService) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithRateFeed enables the remote fetch step.
func WithRateFeed(feed RateFeed) FxRateOption {
	return func(s *fxRateService) {
		s.feed = feed
	}
}

// WithFetchLimiter throttles remote fetches.
func WithFetchLimiter(l *limiter.Limiter) FxRateOption {
	return func(s *fxRateService) {
		s.limiter = l
	}
}

// WithFxMetrics records which step resolved each rate.
func WithFxMetrics(m *metrics.Metrics) FxRateOption {
	return func(s *fxRateService) {
		s.metrics = m
	}
}

// WithFxClock sets the clock used for row timestamps.
func WithFxClock(now func() time.Time) FxRateOption {
	return func(s *fxRateService) {
		s.now = now
	}
}

// NewFxRateService creates the rate resolver. Without options it uses an in-memory
// cache with DefaultFxCacheTTL and never fetches remotely.
func NewFxRateService(repo portsrepo.FxRateRepositoryFacade, options ...FxRateOption) portssvc.FxRateSvcFacade {
	svc := &fxRateService{
		rateRepo: repo,
		cacheTTL: DefaultFxCacheTTL,
		now:      time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	if svc.cache == nil {
		svc.cache = cache.NewInMemoryClient[domain.ResolvedRate]()
	}
	svc.sources = svc.defaultSources()
	return svc
}

var _ portssvc.FxRateSvcFacade = (*fxRateService)(nil)

func (s *fxRateService) GetRate(ctx context.Context, from, to string, date time.Time) (*domain.ResolvedRate, error) {
	q, err := newRateQuery(from, to, date)
	if err != nil {
		return nil, err
	}

	if q.from == q.to {
		s.metrics.RecordFxResolution(sourceIdentity)
		return &domain.ResolvedRate{From: q.from, To: q.to, Date: q.day, Rate: decimal.NewFromInt(1), Source: domain.FxSourceIdentity}, nil
	}

	for _, src := range s.sources {
		rate, err := src.lookup(ctx, q)
		if err != nil {
			s.LogError(ctx, err, "FX rate lookup failed",
				slog.String("step", src.name),
				slog.String("from", q.from),
				slog.String("to", q.to))
			return nil, err
		}
		if rate == nil {
			continue
		}
		if src.name != sourceCache {
			if err := s.cache.Set(ctx, q.cacheKey(), *rate, s.cacheTTL); err != nil {
				s.LogWarn(ctx, err, "FX cache write failed", slog.String("key", q.cacheKey()))
			}
		}
		s.metrics.RecordFxResolution(src.name)
		s.LogDebug(ctx, "Resolved FX rate",
			slog.String("step", src.name),
			slog.String("from", q.from),
			slog.String("to", q.to),
			slog.String("rate", rate.Rate.String()))
		return rate, nil
	}

	s.metrics.RecordFxResolution(sourceAbsent)
	s.LogInfo(ctx, "No FX rate available",
		slog.String("from", q.from),
		slog.String("to", q.to),
		slog.String("date", q.day.Format("2006-01-02")))
	return nil, nil
}

func (s *fxRateService) ConvertAmount(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) (*decimal.Decimal, error) {
	rate, err := s.GetRate(ctx, from, to, date)
	if err != nil || rate == nil {
		return nil, err
	}
	converted := amount.Mul(rate.Rate).Round(amountScale)
	return &converted, nil
}

func (s *fxRateService) OverrideRate(ctx context.Context, from, to string, rate decimal.Decimal, date time.Time, source domain.FxSource) (*domain.FxRate, error) {
	q, err := newRateQuery(from, to, date)
	if err != nil {
		return nil, err
	}
	if q.from == q.to {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if source == "" {
		source = domain.FxSourceOverride
	}
	if !source.Valid() || source.IsAutomatic() {
		return nil, fmt.Errorf("%w: %q is not a manual rate source", apperrors.ErrValidation, source)
	}
	if err := s.checkCatalog(ctx, q.from, q.to); err != nil {
		return nil, err
	}

	row := s.newRateRow(q.from, q.to, rate, q.day, source)
	if err := s.rateRepo.UpsertRate(ctx, row); err != nil {
		s.LogError(ctx, err, "Failed to store rate override",
			slog.String("from", q.from), slog.String("to", q.to))
		return nil, fmt.Errorf("failed to override rate in service: %w", err)
	}
	s.invalidate(ctx, q)

	s.LogInfo(ctx, "FX rate overridden",
		slog.String("from", q.from),
		slog.String("to", q.to),
		slog.String("date", q.day.Format("2006-01-02")),
		slog.String("rate", row.Rate.String()),
		slog.String("source", string(source)))
	return &row, nil
}

func (s *fxRateService) ClearOverride(ctx context.Context, from, to string, date time.Time) error {
	q, err := newRateQuery(from, to, date)
	if err != nil {
		return err
	}

	deleted, err := s.rateRepo.DeleteRate(ctx, q.from, q.to, q.day, []domain.FxSource{domain.FxSourceManual, domain.FxSourceOverride})
	if err != nil {
		return fmt.Errorf("failed to clear rate override in service: %w", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError(fmt.Sprintf("no override for %s/%s on %s", q.from, q.to, q.day.Format("2006-01-02")))
	}
	s.invalidate(ctx, q)
	return nil
}

func (s *fxRateService) SyncLatest(ctx context.Context) (int, error) {
	if s.feed == nil {
		return 0, fmt.Errorf("%w: no reference rate feed configured", apperrors.ErrValidation)
	}
	sheets, err := s.feed.Fetch(ctx)
	if err != nil {
		s.LogError(ctx, err, "Reference rate sync failed")
		return 0, fmt.Errorf("failed to fetch reference rates: %w", err)
	}

	var rows []domain.FxRate
	for _, sheet := range sheets {
		rows = append(rows, s.sheetRows(sheet)...)
	}
	written, err := s.rateRepo.UpsertAutomaticRates(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to store reference rates: %w", err)
	}

	s.LogInfo(ctx, "Reference rates synced", slog.Int("days", len(sheets)), slog.Int("rows", written))
	return written, nil
}

// invalidate drops the pair in both directions since either may have been derived from the row.
func (s *fxRateService) invalidate(ctx context.Context, q rateQuery) {
	for _, key := range []string{cacheKey(q.from, q.to, q.day), cacheKey(q.to, q.from, q.day)} {
		if err := s.cache.Delete(ctx, key); err != nil && !errors.Is(err, cache.ErrNotExists) {
			s.LogWarn(ctx, err, "FX cache invalidation failed", slog.String("key", key))
		}
	}
}

func newRateQuery(from, to string, date time.Time) (rateQuery, error) {
	f, err := normalizeCode(from)
	if err != nil {
		return rateQuery{}, err
	}
	t, err := normalizeCode(to)
	if err != nil {
		return rateQuery{}, err
	}
	return rateQuery{from: f, to: t, day: domain.RateDay(date)}, nil
}
