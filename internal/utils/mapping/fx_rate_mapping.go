package mapping

import (
	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/models"
)

// ToModelFxRate converts a domain FxRate to a model FxRate
func ToModelFxRate(d domain.FxRate) models.FxRate {
	return models.FxRate{
		FxRateID:     d.FxRateID,
		CurrencyFrom: d.CurrencyFrom,
		CurrencyTo:   d.CurrencyTo,
		Rate:         d.Rate,
		RateDate:     domain.RateDay(d.RateDate),
		Source:       string(d.Source),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ToDomainFxRate converts a model FxRate to a domain FxRate
func ToDomainFxRate(m models.FxRate) domain.FxRate {
	return domain.FxRate{
		FxRateID:     m.FxRateID,
		CurrencyFrom: m.CurrencyFrom,
		CurrencyTo:   m.CurrencyTo,
		Rate:         m.Rate,
		RateDate:     domain.RateDay(m.RateDate),
		Source:       domain.FxSource(m.Source),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
