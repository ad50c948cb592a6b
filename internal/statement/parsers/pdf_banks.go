package parsers

import (
	"regexp"
	"time"

	"github.com/SscSPs/statement_importer/internal/statement/extract"
)

const (
	dayMonth  = `\d{2}/\d{2}(?:/\d{2,4})?`
	euroToken = `\(?[-+]?\d[\d.]*,\d{2}\)?-?`
)

var (
	euroAmountLine = regexp.MustCompile(`^` + euroToken + `\s*(?:€|EUR)?$`)
	spanishHeaders = []string{"IMPORTE", "IMPORTE EUR", "IMPORTE (EUR)", "SALDO", "SALDO EUR", "SALDO (EUR)"}
	spanishAmounts = []string{"IMPORTE", "IMPORTE EUR", "IMPORTE (EUR)"}
	spanishLabels  = []string{"CONCEPTO", "DESCRIPCION", "DESCRIPCIÓN", "FECHA", "FECHA VALOR", "F. VALOR", "F. OPERACION", "F. OPERACIÓN"}
)

// NewSantanderPDF parses Santander statements: "dd/mm[/yyyy] description amount [balance]".
func NewSantanderPDF(textExtractor, ocr extract.TextExtractor, now func() time.Time) StatementParser {
	return &pdfStatementParser{
		layout: pdfLayout{
			name:     "santander_pdf",
			currency: "EUR",
			linePattern: regexp.MustCompile(
				`^(` + dayMonth + `)\s+(.+?)\s+(` + euroToken + `)\s*(?:€|EUR)?(?:\s+` + euroToken + `\s*(?:€|EUR)?)?$`),
			dateLine:      regexp.MustCompile(`^(` + dayMonth + `)$`),
			amountLine:    euroAmountLine,
			columnHeaders: spanishHeaders,
			amountHeaders: spanishAmounts,
			labelLines:    spanishLabels,
		},
		extractor: textExtractor,
		ocr:       ocr,
		now:       now,
	}
}

// NewBBVAPDF parses BBVA statements, which print operation and value dates:
// "dd/mm dd/mm description amount balance".
func NewBBVAPDF(textExtractor, ocr extract.TextExtractor, now func() time.Time) StatementParser {
	return &pdfStatementParser{
		layout: pdfLayout{
			name:     "bbva_pdf",
			currency: "EUR",
			linePattern: regexp.MustCompile(
				`^(` + dayMonth + `)\s+` + dayMonth + `\s+(.+?)\s+(` + euroToken + `)\s+` + euroToken + `$`),
			dateLine:      regexp.MustCompile(`^(` + dayMonth + `)(?:\s+` + dayMonth + `)?$`),
			amountLine:    euroAmountLine,
			columnHeaders: spanishHeaders,
			amountHeaders: spanishAmounts,
			labelLines:    spanishLabels,
		},
		extractor: textExtractor,
		ocr:       ocr,
		now:       now,
	}
}
