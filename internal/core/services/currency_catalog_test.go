package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/core/services"
	"github.com/stretchr/testify/assert"
)

func TestValidateReportingCurrency(t *testing.T) {
	catalog := []domain.Currency{{CurrencyCode: "EUR"}, {CurrencyCode: "USD"}}
	tests := []struct {
		name    string
		code    string
		listErr error
		wantErr error
	}{
		{name: "unset skips the catalog", code: ""},
		{name: "known", code: "USD"},
		{name: "unknown", code: "XYZ", wantErr: apperrors.ErrValidation},
		{name: "catalog unavailable", code: "EUR", listErr: errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCurrencyRepository)
			if tt.code != "" {
				if tt.listErr != nil {
					repo.On("ListCurrencies", context.Background()).Return(nil, tt.listErr).Once()
				} else {
					repo.On("ListCurrencies", context.Background()).Return(catalog, nil).Once()
				}
			}

			err := services.ValidateReportingCurrency(context.Background(), repo, tt.code)

			switch {
			case tt.listErr != nil:
				assert.ErrorIs(t, err, tt.listErr)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "EUR, USD")
			default:
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}
