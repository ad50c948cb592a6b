package parsers_test

import (
	"testing"

	"github.com/SscSPs/statement_importer/internal/statement/parsers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		token   string
		want    string
		wantErr bool
	}{
		{token: "1.500,00", want: "1500"},
		{token: "1500,00", want: "1500"},
		{token: "1,234.56", want: "1234.56"},
		{token: "1,234", want: "1234"},
		{token: "12,5", want: "12.5"},
		{token: "1.234,5", want: "1234.5"},
		{token: "-0,7", want: "-0.7"},
		{token: "(12,50)", want: "-12.5"},
		{token: "-3,50 €", want: "-3.5"},
		{token: "€ 1.000,00", want: "1000"},
		{token: "12,50-", want: "-12.5"},
		{token: "+7,00", want: "7"},
		{token: "-45.10 USD", want: "-45.1"},
		{token: "abc", wantErr: true},
		{token: "1.5e3", wantErr: true},
		{token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := parsers.NormalizeAmount(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}
