package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate stores the conversion rate between two currencies for one day.
type FxRate struct {
	FxRateID     string          `db:"fx_rate_id"`
	CurrencyFrom string          `db:"currency_from_code"`
	CurrencyTo   string          `db:"currency_to_code"`
	Rate         decimal.Decimal `db:"rate"`
	RateDate     time.Time       `db:"rate_date"`
	Source       string          `db:"source"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}
