package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portsrepo "github.com/SscSPs/statement_importer/internal/core/ports/repositories"
	"github.com/SscSPs/statement_importer/internal/models"
	"github.com/SscSPs/statement_importer/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxFxRateRepository struct {
	BaseRepository
}

func newPgxFxRateRepository(pool *pgxpool.Pool) *PgxFxRateRepository {
	return &PgxFxRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FxRateRepositoryFacade = (*PgxFxRateRepository)(nil)

// FindRate retrieves the rate stored for exactly (from, to, date).
func (r *PgxFxRateRepository) FindRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, date time.Time) (*domain.FxRate, error) {
	query := `
		SELECT fx_rate_id, currency_from_code, currency_to_code, rate, rate_date, source, created_at, updated_at
		FROM fx_rates
		WHERE currency_from_code = $1 AND currency_to_code = $2 AND rate_date = $3;
	`
	var m models.FxRate
	err := r.Pool.QueryRow(ctx, query, fromCurrencyCode, toCurrencyCode, domain.RateDay(date)).Scan(
		&m.FxRateID, &m.CurrencyFrom, &m.CurrencyTo, &m.Rate, &m.RateDate, &m.Source, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("no rate for %s/%s on %s",
				fromCurrencyCode, toCurrencyCode, date.Format("2006-01-02")))
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}
	rate := mapping.ToDomainFxRate(m)
	return &rate, nil
}

// UpsertAutomaticRates stores fetched rates without replacing rows a user entered.
func (r *PgxFxRateRepository) UpsertAutomaticRates(ctx context.Context, rates []domain.FxRate) (int, error) {
	if len(rates) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO fx_rates (fx_rate_id, currency_from_code, currency_to_code, rate, rate_date, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (currency_from_code, currency_to_code, rate_date) DO UPDATE
		SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at
		WHERE fx_rates.source = $6;
	`
	written := 0
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		for _, rate := range rates {
			m := rateRow(rate)
			tag, err := tx.Exec(ctx, query,
				m.FxRateID, m.CurrencyFrom, m.CurrencyTo, m.Rate, m.RateDate, m.Source, m.CreatedAt, m.UpdatedAt)
			if err != nil {
				return apperrors.NewAppError(500, "failed to store exchange rate", err)
			}
			written += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// UpsertRate stores a rate, replacing any row for the same pair and day.
func (r *PgxFxRateRepository) UpsertRate(ctx context.Context, rate domain.FxRate) error {
	query := `
		INSERT INTO fx_rates (fx_rate_id, currency_from_code, currency_to_code, rate, rate_date, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (currency_from_code, currency_to_code, rate_date) DO UPDATE
		SET rate = EXCLUDED.rate, source = EXCLUDED.source, updated_at = EXCLUDED.updated_at;
	`
	m := rateRow(rate)
	_, err := r.Pool.Exec(ctx, query,
		m.FxRateID, m.CurrencyFrom, m.CurrencyTo, m.Rate, m.RateDate, m.Source, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to store exchange rate", err)
	}
	return nil
}

// DeleteRate removes the row for (from, to, date) when its source is one of sources.
func (r *PgxFxRateRepository) DeleteRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, date time.Time, sources []domain.FxSource) (bool, error) {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, string(s))
	}
	query := `
		DELETE FROM fx_rates
		WHERE currency_from_code = $1 AND currency_to_code = $2 AND rate_date = $3 AND source = ANY($4);
	`
	tag, err := r.Pool.Exec(ctx, query, fromCurrencyCode, toCurrencyCode, domain.RateDay(date), names)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to delete exchange rate", err)
	}
	return tag.RowsAffected() > 0, nil
}

func rateRow(rate domain.FxRate) models.FxRate {
	m := mapping.ToModelFxRate(rate)
	if m.FxRateID == "" {
		m.FxRateID = uuid.NewString()
	}
	m.RateDate = domain.RateDay(m.RateDate)
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	return m
}
