package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/google/uuid"
)

// transactionBuilder turns committable drafts into transactions, converting each amount
// into the reporting currency on the transaction date.
type transactionBuilder struct {
	BaseService
	fx                portssvc.FxRateReaderSvc
	reportingCurrency string
	now               func() time.Time
}

type commitRefs struct {
	importID string
	batchID  *string
	userID   string
}

// build returns the transactions and how many of them could not be converted.
// A missing rate leaves the conversion fields empty; a lookup failure aborts.
func (b *transactionBuilder) build(ctx context.Context, account domain.Account, drafts []domain.TransactionDraft, refs commitRefs) ([]domain.Transaction, int, error) {
	target := b.reportingCurrency
	if target == "" {
		target = account.CurrencyCode
	}

	now := b.now()
	txns := make([]domain.Transaction, 0, len(drafts))
	unconverted, crossCurrency := 0, 0
	for _, d := range drafts {
		if d.Duplicate {
			continue
		}
		importID := refs.importID
		txn := domain.Transaction{
			TransactionID:    uuid.NewString(),
			AccountID:        account.AccountID,
			Date:             d.Date,
			Type:             d.Type(),
			OriginalAmount:   d.Amount,
			OriginalCurrency: d.OriginalCurrency,
			CategoryID:       d.CategoryID,
			Counterparty:     d.Counterparty,
			Description:      d.Description,
			BankDescription:  d.BankDescription,
			Tags:             d.Tags,
			ImportSource:     d.ImportSource,
			ImportID:         &importID,
			BatchID:          refs.batchID,
			ReconciledAt:     &now,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     refs.userID,
				LastUpdatedAt: now,
				LastUpdatedBy: refs.userID,
			},
		}

		if b.fx != nil && target != "" {
			rate, err := b.fx.GetRate(ctx, d.OriginalCurrency, target, d.Date)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to resolve %s/%s rate for %s: %w",
					d.OriginalCurrency, target, d.Date.Format("2006-01-02"), err)
			}
			if rate != nil {
				converted := d.Amount.Mul(rate.Rate).Round(amountScale)
				currency := target
				fxRate := rate.Rate
				source := rate.Source
				txn.ConvertedAmount = &converted
				txn.ConvertedCurrency = &currency
				txn.FxRate = &fxRate
				txn.FxSource = &source
			} else {
				unconverted++
			}
		}
		if txn.IsMultiCurrency() {
			crossCurrency++
		}
		txns = append(txns, txn)
	}

	b.LogDebug(ctx, "Built transactions",
		slog.String("account_id", account.AccountID),
		slog.Int("count", len(txns)),
		slog.Int("cross_currency", crossCurrency))

	if unconverted > 0 {
		b.LogInfo(ctx, "Transactions committed without conversion",
			slog.String("account_id", account.AccountID),
			slog.String("target_currency", target),
			slog.Int("count", unconverted))
	}
	return txns, unconverted, nil
}
