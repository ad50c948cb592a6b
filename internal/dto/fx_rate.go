package dto

import (
	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format accepted and returned by the FX endpoints.
const DateLayout = "2006-01-02"

// OverrideRateRequest defines the data needed to pin a rate for one day.
type OverrideRateRequest struct {
	Rate   decimal.Decimal `json:"rate" binding:"required"`
	Date   string          `json:"date" binding:"required,datetime=2006-01-02"`
	Source domain.FxSource `json:"source" binding:"omitempty,oneof=manual override"`
}

// FxRateResponse defines the data returned for a resolved rate.
type FxRateResponse struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Date     string          `json:"date"`
	Rate     decimal.Decimal `json:"rate"`
	Source   domain.FxSource `json:"source"`
	Inverted bool            `json:"inverted"`
}

// ConvertResponse defines the data returned by an amount conversion.
type ConvertResponse struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	Date            string          `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
}

// ToFxRateResponse converts a domain.ResolvedRate to FxRateResponse DTO
func ToFxRateResponse(r *domain.ResolvedRate) FxRateResponse {
	return FxRateResponse{
		From:     r.From,
		To:       r.To,
		Date:     r.Date.Format(DateLayout),
		Rate:     r.Rate,
		Source:   r.Source,
		Inverted: r.Inverted,
	}
}
