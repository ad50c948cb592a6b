package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/cache"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/fxfeed"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	sourceCache    = "cache"
	sourceDirect   = "direct"
	sourceInverse  = "inverse"
	sourceRemote   = "remote"
	sourceIdentity = "identity"
	sourceAbsent   = "absent"

	remoteFetchKey = "fx-remote-fetch"
)

type rateQuery struct {
	from string
	to   string
	day  time.Time
}

func (q rateQuery) cacheKey() string {
	return cacheKey(q.from, q.to, q.day)
}

func cacheKey(from, to string, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s", from, to, day.Format("2006-01-02"))
}

// rateSource is one step of the resolution chain. A nil rate with a nil error passes to the next step.
type rateSource struct {
	name   string
	lookup func(ctx context.Context, q rateQuery) (*domain.ResolvedRate, error)
}

func (s *fxRateService) defaultSources() []rateSource {
	return []rateSource{
		{name: sourceCache, lookup: s.cachedRate},
		{name: sourceDirect, lookup: s.storedDirectRate},
		{name: sourceInverse, lookup: s.storedInverseRate},
		{name: sourceRemote, lookup: s.remoteRate},
	}
}

func (s *fxRateService) cachedRate(ctx context.Context, q rateQuery) (*domain.ResolvedRate, error) {
	r, err := s.cache.Get(ctx, q.cacheKey())
	if err != nil {
		if !errors.Is(err, cache.ErrNotExists) {
			s.LogWarn(ctx, err, "FX cache read failed", slog.String("key", q.cacheKey()))
		}
		return nil, nil
	}
	return &r, nil
}

// storedDirectRate returns the row stored for the pair, unless it was fetched and the
// opposite direction holds a manual rate for the same day. Manual rates win in both directions.
func (s *fxRateService) storedDirectRate(ctx context.Context, q rateQuery) (*domain.ResolvedRate, error) {
	row, err := s.findStored(ctx, q.from, q.to, q.day)
	if err != nil || row == nil {
		return nil, err
	}
	if row.Source.IsAutomatic() {
		reverse, err := s.findStored(ctx, q.to, q.from, q.day)
		if err != nil {
			return nil, err
		}
		if reverse != nil && !reverse.Source.IsAutomatic() && reverse.Rate.IsPositive() {
			return invertedRate(q, reverse), nil
		}
	}
	return &domain.ResolvedRate{From: q.from, To: q.to, Date: q.day, Rate: row.Rate, Source: row.Source}, nil
}

func (s *fxRateService) storedInverseRate(ctx context.Context, q rateQuery) (*domain.ResolvedRate, error) {
	row, err := s.findStored(ctx, q.to, q.from, q.day)
	if err != nil || row == nil {
		return nil, err
	}
	if !row.Rate.IsPositive() {
		return nil, nil
	}
	return invertedRate(q, row), nil
}

func invertedRate(q rateQuery, row *domain.FxRate) *domain.ResolvedRate {
	return &domain.ResolvedRate{
		From:     q.from,
		To:       q.to,
		Date:     q.day,
		Rate:     decimal.NewFromInt(1).DivRound(row.Rate, rateScale),
		Source:   row.Source,
		Inverted: true,
	}
}

// remoteRate downloads the reference document, stores every day it publishes and reads the
// pair back. Days covered by a recent download are not fetched again until the window expires,
// so a statement spanning weeks costs one download. Any fetch failure is logged and reported as absent.
func (s *fxRateService) remoteRate(ctx context.Context, q rateQuery) (*domain.ResolvedRate, error) {
	if s.feed == nil {
		return nil, nil
	}
	if s.fetched.covers(q.day, s.now()) {
		return nil, nil
	}

	if s.limiter != nil {
		lctx, err := s.limiter.Get(ctx, remoteFetchKey)
		if err != nil {
			s.LogWarn(ctx, err, "FX fetch limiter failed", slog.String("from", q.from), slog.String("to", q.to))
			return nil, nil
		}
		if lctx.Reached {
			s.LogInfo(ctx, "FX remote fetch throttled",
				slog.String("from", q.from), slog.String("to", q.to),
				slog.Int64("limit", lctx.Limit))
			return nil, nil
		}
	}

	sheets, err := s.feed.Fetch(ctx)
	if err != nil {
		s.LogWarn(ctx, err, "FX remote fetch failed",
			slog.String("from", q.from), slog.String("to", q.to),
			slog.String("date", q.day.Format("2006-01-02")))
		return nil, nil
	}

	var rows []domain.FxRate
	for _, sheet := range sheets {
		rows = append(rows, s.sheetRows(sheet)...)
		if q.from == sheet.Base || q.to == sheet.Base {
			continue
		}
		// cross pairs are stored too, base pairs resolve from the rows above
		if rate, ok := sheet.Rate(q.from, q.to); ok {
			rows = append(rows, s.newRateRow(q.from, q.to, rate, sheet.Date, domain.FxSourceECB))
		}
	}
	if len(rows) > 0 {
		if _, err := s.rateRepo.UpsertAutomaticRates(ctx, rows); err != nil {
			return nil, fmt.Errorf("failed to store fetched rates: %w", err)
		}
	}
	s.fetched.record(fetchedSpanFor(sheets, q.day, s.now()), s.now().Add(s.cacheTTL))
	s.LogDebug(ctx, "Fetched reference rates", slog.Int("days", len(sheets)), slog.Int("rows", len(rows)))

	rate, err := s.storedDirectRate(ctx, q)
	if err != nil || rate != nil {
		return rate, err
	}
	return s.storedInverseRate(ctx, q)
}

// fetchedSpan is the range of days one download answered for.
type fetchedSpan struct {
	from    time.Time
	to      time.Time
	expires time.Time
}

// fetchedSpans remembers recent downloads. A day inside a live span is either stored
// already or not published by the feed.
type fetchedSpans struct {
	mu    sync.Mutex
	spans []fetchedSpan
}

func (f *fetchedSpans) covers(day, now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	covered := false
	live := f.spans[:0]
	for _, sp := range f.spans {
		if !now.Before(sp.expires) {
			continue
		}
		live = append(live, sp)
		if !day.Before(sp.from) && !day.After(sp.to) {
			covered = true
		}
	}
	f.spans = live
	return covered
}

func (f *fetchedSpans) record(span fetchedSpan, expires time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	span.expires = expires
	f.spans = append(f.spans, span)
}

// fetchedSpanFor spans the oldest published day to today, stretched to include the requested day.
func fetchedSpanFor(sheets []fxfeed.RateSheet, requested, now time.Time) fetchedSpan {
	span := fetchedSpan{from: requested, to: requested}
	if today := domain.RateDay(now); today.After(span.to) {
		span.to = today
	}
	for _, sheet := range sheets {
		d := domain.RateDay(sheet.Date)
		if d.Before(span.from) {
			span.from = d
		}
		if d.After(span.to) {
			span.to = d
		}
	}
	return span
}

// findStored maps a missing row to nil.
func (s *fxRateService) findStored(ctx context.Context, from, to string, day time.Time) (*domain.FxRate, error) {
	row, err := s.rateRepo.FindRate(ctx, from, to, day)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read stored rate %s/%s: %w", from, to, err)
	}
	return row, nil
}

// sheetRows expands a reference sheet into base to currency rows.
func (s *fxRateService) sheetRows(sheet fxfeed.RateSheet) []domain.FxRate {
	rows := make([]domain.FxRate, 0, len(sheet.Rates))
	for code, rate := range sheet.Rates {
		if !rate.IsPositive() || code == sheet.Base {
			continue
		}
		rows = append(rows, s.newRateRow(sheet.Base, code, rate, sheet.Date, domain.FxSourceECB))
	}
	return rows
}

func (s *fxRateService) newRateRow(from, to string, rate decimal.Decimal, day time.Time, source domain.FxSource) domain.FxRate {
	now := s.now()
	return domain.FxRate{
		FxRateID:     uuid.NewString(),
		CurrencyFrom: from,
		CurrencyTo:   to,
		Rate:         rate.Round(rateScale),
		RateDate:     domain.RateDay(day),
		Source:       source,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency code %q must be 3 letters", apperrors.ErrValidation, code)
	}
	return code, nil
}
