// Package fxfeed reads euro reference rates published by the European Central Bank.
package fxfeed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	// DailyURL serves the latest business day only; HistoryURL the last 90 days.
	DailyURL   = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"
	HistoryURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist-90d.xml"

	BaseCurrency = "EUR"
	dateLayout   = "2006-01-02"
)

var (
	ErrMissingDate = errors.New("reference rate document has no date")
	ErrNoRates     = errors.New("reference rate document has no rates")
)

// RateSheet holds the reference rates of one publication day, quoted as units per 1 EUR.
type RateSheet struct {
	Date  time.Time
	Base  string
	Rates map[string]decimal.Decimal
}

// Rate returns the rate converting one unit of from into to, using EUR as the pivot.
// It reports false when a leg is missing or zero.
func (s RateSheet) Rate(from, to string) (decimal.Decimal, bool) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), true
	}
	fromRate, ok := s.leg(from)
	if !ok {
		return decimal.Zero, false
	}
	toRate, ok := s.leg(to)
	if !ok {
		return decimal.Zero, false
	}
	return toRate.Div(fromRate), true
}

func (s RateSheet) leg(currency string) (decimal.Decimal, bool) {
	if currency == s.Base {
		return decimal.NewFromInt(1), true
	}
	r, ok := s.Rates[currency]
	if !ok || !r.IsPositive() {
		return decimal.Zero, false
	}
	return r, true
}

type envelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Cube    struct {
		Days []struct {
			Time  string `xml:"time,attr"`
			Rates []struct {
				Currency string `xml:"currency,attr"`
				Rate     string `xml:"rate,attr"`
			} `xml:"Cube"`
		} `xml:"Cube"`
	} `xml:"Cube"`
}

// Parse decodes an eurofxref document into one sheet per publication day, newest first as published.
func Parse(data []byte) ([]RateSheet, error) {
	var env envelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding reference rates: %w", err)
	}
	if len(env.Cube.Days) == 0 {
		return nil, ErrNoRates
	}

	sheets := make([]RateSheet, 0, len(env.Cube.Days))
	for _, day := range env.Cube.Days {
		if strings.TrimSpace(day.Time) == "" {
			return nil, ErrMissingDate
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(day.Time))
		if err != nil {
			return nil, fmt.Errorf("invalid reference rate date %q: %w", day.Time, err)
		}
		sheet := RateSheet{Date: date, Base: BaseCurrency, Rates: make(map[string]decimal.Decimal, len(day.Rates))}
		for _, r := range day.Rates {
			rate, err := decimal.NewFromString(strings.TrimSpace(r.Rate))
			if err != nil {
				return nil, fmt.Errorf("invalid rate %q for %s: %w", r.Rate, r.Currency, err)
			}
			sheet.Rates[strings.ToUpper(strings.TrimSpace(r.Currency))] = rate
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// ECBClient downloads reference rate documents. Each call is a single attempt.
type ECBClient struct {
	client *resty.Client
	url    string
}

// NewECBClient creates a client for url, defaulting to the daily feed.
func NewECBClient(client *resty.Client, url string) *ECBClient {
	if url == "" {
		url = DailyURL
	}
	return &ECBClient{client: client, url: url}
}

// Fetch downloads and parses the configured document.
func (c *ECBClient) Fetch(ctx context.Context) ([]RateSheet, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("failed send request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("reference rate feed returned %s", resp.Status())
	}
	return Parse(resp.Body())
}
