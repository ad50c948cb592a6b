package parsers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/shopspring/decimal"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvRow is the bank-specific part of a parsed record.
type csvRow struct {
	description string
	amount      decimal.Decimal
	tags        []string
}

// csvDialect describes one bank's CSV export.
type csvDialect struct {
	name       string
	delimiter  rune
	decimalSep byte
	dateLayout string
	dateColumn int
	minFields  int
	currency   string
	row        func(d csvDialect, rec []string) (csvRow, error)
}

// csvStatementParser parses any CSV dialect. Blank and short rows are skipped; the first row is
// treated as a header when neither its date nor its amount cells parse. Any other bad row
// rejects the file.
type csvStatementParser struct {
	dialect csvDialect
}

func (p *csvStatementParser) Name() string   { return p.dialect.name }
func (p *csvStatementParser) Format() Format { return FormatCSV }

func (p *csvStatementParser) Parse(ctx context.Context, doc Document) ([]domain.TransactionDraft, error) {
	data, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEmptyDocument, doc.FileName)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = p.dialect.delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var drafts []domain.TransactionDraft
	firstRow := true
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrMalformedStatement, p.dialect.name, err)
		}
		line, _ := r.FieldPos(0)
		if blankRecord(rec) || len(rec) < p.dialect.minFields {
			continue
		}

		isFirst := firstRow
		firstRow = false

		dateCell := strings.TrimSpace(rec[p.dialect.dateColumn])
		date, err := time.Parse(p.dialect.dateLayout, dateCell)
		if err != nil {
			if _, rowErr := p.dialect.row(p.dialect, rec); isFirst && rowErr != nil {
				continue
			}
			return nil, malformed(p.dialect.name, line, "invalid date %q", dateCell)
		}

		row, err := p.dialect.row(p.dialect, rec)
		if err != nil {
			return nil, malformed(p.dialect.name, line, "%v", err)
		}

		drafts = append(drafts, domain.TransactionDraft{
			Date:             date,
			Description:      cleanDescription(row.description),
			BankDescription:  strings.TrimSpace(row.description),
			Amount:           row.amount,
			OriginalCurrency: p.dialect.currency,
			Tags:             row.tags,
			ImportSource:     p.dialect.name,
		})
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrNoTransactionsFound, doc.FileName, p.dialect.name)
	}
	return drafts, nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
