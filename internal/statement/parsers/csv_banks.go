package parsers

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// NewSantanderCSV parses Santander exports: date;description;amount;balance;reference,
// decimal comma, dd/mm/yyyy, EUR.
func NewSantanderCSV() StatementParser {
	return &csvStatementParser{dialect: csvDialect{
		name:       "santander_csv",
		delimiter:  ';',
		decimalSep: ',',
		dateLayout: "02/01/2006",
		dateColumn: 0,
		minFields:  3,
		currency:   "EUR",
		row: func(d csvDialect, rec []string) (csvRow, error) {
			amount, err := parseAmount(cell(rec, 2), d.decimalSep)
			if err != nil {
				return csvRow{}, err
			}
			var tags []string
			if ref := cell(rec, 4); ref != "" {
				tags = append(tags, "ref:"+ref)
			}
			return csvRow{description: cell(rec, 1), amount: amount, tags: tags}, nil
		},
	}}
}

// NewCaixaBankCSV parses CaixaBank exports with separate debit and credit columns:
// date;value_date;description;debit;credit;balance.
func NewCaixaBankCSV() StatementParser {
	return &csvStatementParser{dialect: csvDialect{
		name:       "caixabank_csv",
		delimiter:  ';',
		decimalSep: ',',
		dateLayout: "02/01/2006",
		dateColumn: 0,
		minFields:  5,
		currency:   "EUR",
		row: func(d csvDialect, rec []string) (csvRow, error) {
			debitCell, creditCell := cell(rec, 3), cell(rec, 4)
			if debitCell == "" && creditCell == "" {
				return csvRow{}, errors.New("neither debit nor credit present")
			}
			amount := decimal.Zero
			if creditCell != "" {
				credit, err := parseAmount(creditCell, d.decimalSep)
				if err != nil {
					return csvRow{}, err
				}
				amount = amount.Add(credit)
			}
			if debitCell != "" {
				debit, err := parseAmount(debitCell, d.decimalSep)
				if err != nil {
					return csvRow{}, err
				}
				amount = amount.Sub(debit.Abs())
			}
			return csvRow{description: cell(rec, 2), amount: amount}, nil
		},
	}}
}

// NewChaseCSV parses Chase checking exports:
// Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #. Amounts are signed, USD.
func NewChaseCSV() StatementParser {
	return &csvStatementParser{dialect: csvDialect{
		name:       "chase_csv",
		delimiter:  ',',
		decimalSep: '.',
		dateLayout: "01/02/2006",
		dateColumn: 1,
		minFields:  4,
		currency:   "USD",
		row: func(d csvDialect, rec []string) (csvRow, error) {
			amount, err := parseAmount(cell(rec, 3), d.decimalSep)
			if err != nil {
				return csvRow{}, err
			}
			var tags []string
			if kind := cell(rec, 4); kind != "" {
				tags = append(tags, "type:"+strings.ToLower(kind))
			}
			return csvRow{description: cell(rec, 2), amount: amount, tags: tags}, nil
		},
	}}
}
