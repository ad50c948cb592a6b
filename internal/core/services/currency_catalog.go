package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	portsrepo "github.com/SscSPs/statement_importer/internal/core/ports/repositories"
)

// WithCurrencyCatalog rejects overrides for currencies missing from the catalog.
func WithCurrencyCatalog(repo portsrepo.CurrencyReader) FxRateOption {
	return func(s *fxRateService) {
		s.currencies = repo
	}
}

func (s *fxRateService) checkCatalog(ctx context.Context, codes ...string) error {
	if s.currencies == nil {
		return nil
	}
	for _, code := range codes {
		if _, err := s.currencies.FindCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, code)
			}
			return fmt.Errorf("failed to look up currency %s: %w", code, err)
		}
	}
	return nil
}

// ValidateReportingCurrency fails when code is set but not in the currency catalog.
func ValidateReportingCurrency(ctx context.Context, repo portsrepo.CurrencyReader, code string) error {
	if code == "" {
		return nil
	}
	currencies, err := repo.ListCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to load currency catalog: %w", err)
	}
	known := make([]string, 0, len(currencies))
	for _, c := range currencies {
		if strings.EqualFold(c.CurrencyCode, code) {
			return nil
		}
		known = append(known, c.CurrencyCode)
	}
	return fmt.Errorf("%w: reporting currency %s is not in the catalog (%s)",
		apperrors.ErrValidation, code, strings.Join(known, ", "))
}
