package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxSource tells where an exchange rate came from.
type FxSource string

const (
	FxSourceECB      FxSource = "ecb"
	FxSourceManual   FxSource = "manual"
	FxSourceOverride FxSource = "override"
	// FxSourceIdentity marks the implicit 1:1 rate between a currency and itself. Never persisted.
	FxSourceIdentity FxSource = "identity"
)

// IsAutomatic reports whether rows with this source may be replaced by fetched rates.
func (s FxSource) IsAutomatic() bool {
	return s == FxSourceECB
}

// Valid reports whether the source can be stored.
func (s FxSource) Valid() bool {
	switch s {
	case FxSourceECB, FxSourceManual, FxSourceOverride:
		return true
	}
	return false
}

// FxRate is a stored rate for one currency pair on one date. (From, To, RateDate) is unique.
type FxRate struct {
	FxRateID     string          `json:"fxRateID"`
	CurrencyFrom string          `json:"currencyFrom"`
	CurrencyTo   string          `json:"currencyTo"`
	Rate         decimal.Decimal `json:"rate"` // > 0, 8 decimal places
	RateDate     time.Time       `json:"rateDate"`
	Source       FxSource        `json:"source"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ResolvedRate is the outcome of a rate lookup, possibly derived by inverting a stored rate.
type ResolvedRate struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Date     time.Time       `json:"date"`
	Rate     decimal.Decimal `json:"rate"`
	Source   FxSource        `json:"source"`
	Inverted bool            `json:"inverted"`
}

// RateDay truncates t to the calendar day in UTC, the granularity rates are stored at.
func RateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
