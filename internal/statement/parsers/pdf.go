package parsers

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/statement/extract"
)

// pdfLayout describes how one bank prints transactions in its PDF statements.
//
// linePattern matches a whole transaction on one line with groups date, description, amount.
// When no line matches, the text is read column by column: a block of dateLine lines (group 1
// is the date), then description lines up to a header, then amountLine lines following one of
// amountHeaders. Column titles listed in labelLines are ignored inside the description block.
type pdfLayout struct {
	name          string
	currency      string
	linePattern   *regexp.Regexp
	dateLine      *regexp.Regexp
	amountLine    *regexp.Regexp
	columnHeaders []string
	amountHeaders []string
	labelLines    []string
}

// pdfStatementParser parses text extracted from PDF statements.
type pdfStatementParser struct {
	layout    pdfLayout
	extractor extract.TextExtractor
	ocr       extract.TextExtractor
	now       func() time.Time
}

func (p *pdfStatementParser) Name() string   { return p.layout.name }
func (p *pdfStatementParser) Format() Format { return FormatPDF }

// Parse extracts text and parses it. When the text layer yields no transactions the document
// is run through OCR and parsed again before giving up.
func (p *pdfStatementParser) Parse(ctx context.Context, doc Document) ([]domain.TransactionDraft, error) {
	ext, err := p.extractor.Extract(ctx, doc.Path)
	if err != nil {
		return nil, err
	}
	if ext.Blank() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEmptyDocument, filepath.Base(doc.FileName))
	}

	drafts, err := p.parseText(ext.Text)
	if err != nil {
		return nil, err
	}

	if len(drafts) == 0 && ext.Method != extract.MethodOCR && p.ocr != nil {
		ocrExt, err := p.ocr.Extract(ctx, doc.Path)
		if err != nil {
			return nil, err
		}
		if !ocrExt.Blank() {
			if drafts, err = p.parseText(ocrExt.Text); err != nil {
				return nil, err
			}
		}
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrNoTransactionsFound, filepath.Base(doc.FileName), p.layout.name)
	}
	return drafts, nil
}

func (p *pdfStatementParser) parseText(text string) ([]domain.TransactionDraft, error) {
	period, _ := FindStatementPeriod(text)
	lines := nonBlankLines(text)

	var drafts []domain.TransactionDraft
	for i, line := range lines {
		m := p.layout.linePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		d, err := p.draft(m[1], m[2], m[3], period)
		if err != nil {
			return nil, malformed(p.layout.name, i+1, "%v", err)
		}
		drafts = append(drafts, d)
	}
	if len(drafts) > 0 {
		return drafts, nil
	}
	return p.parseColumns(lines, period)
}

// parseColumns rebuilds transactions from layouts where dates, descriptions and amounts are
// printed as separate blocks. Lists are zipped up to the shortest one.
func (p *pdfStatementParser) parseColumns(lines []string, period *StatementPeriod) ([]domain.TransactionDraft, error) {
	i := 0
	for i < len(lines) && !p.layout.dateLine.MatchString(lines[i]) {
		i++
	}
	if i == len(lines) {
		return nil, nil
	}

	var dates []string
	var dateLines []int
	for ; i < len(lines); i++ {
		m := p.layout.dateLine.FindStringSubmatch(lines[i])
		if m == nil {
			break
		}
		dates = append(dates, m[1])
		dateLines = append(dateLines, i+1)
	}

	var descriptions []string
	for ; i < len(lines); i++ {
		if isHeader(lines[i], p.layout.columnHeaders) || p.layout.amountLine.MatchString(lines[i]) {
			break
		}
		if isHeader(lines[i], p.layout.labelLines) {
			continue
		}
		descriptions = append(descriptions, lines[i])
	}

	for j := i; j < len(lines); j++ {
		if isHeader(lines[j], p.layout.amountHeaders) {
			i = j + 1
			break
		}
	}
	var amounts []string
	for ; i < len(lines); i++ {
		if !p.layout.amountLine.MatchString(lines[i]) {
			break
		}
		amounts = append(amounts, lines[i])
	}

	n := min(len(dates), len(descriptions), len(amounts))
	drafts := make([]domain.TransactionDraft, 0, n)
	for k := 0; k < n; k++ {
		d, err := p.draft(dates[k], descriptions[k], amounts[k], period)
		if err != nil {
			return nil, malformed(p.layout.name, dateLines[k], "column entry %d: %v", k+1, err)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func (p *pdfStatementParser) draft(dateToken, description, amountToken string, period *StatementPeriod) (domain.TransactionDraft, error) {
	date, err := parseStatementDate(dateToken, period, p.now().Year())
	if err != nil {
		return domain.TransactionDraft{}, err
	}
	amount, err := NormalizeAmount(amountToken)
	if err != nil {
		return domain.TransactionDraft{}, err
	}
	return domain.TransactionDraft{
		Date:             date,
		Description:      cleanDescription(description),
		BankDescription:  strings.TrimSpace(description),
		Amount:           amount,
		OriginalCurrency: p.layout.currency,
		ImportSource:     p.layout.name,
	}, nil
}

func nonBlankLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func isHeader(line string, headers []string) bool {
	for _, h := range headers {
		if strings.EqualFold(line, h) {
			return true
		}
	}
	return false
}
