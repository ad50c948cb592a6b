// Package parsers turns bank statement exports into transaction drafts.
package parsers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/core/domain"
)

// Format is the physical file format a parser understands.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// FormatFromFileName derives the format from the file extension.
func FormatFromFileName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: unsupported file extension %q", apperrors.ErrUnknownParser, filepath.Ext(name))
}

// Document is an uploaded statement. CSV parsers read Content (or Path when Content is nil);
// PDF parsers hand Path to the text extractors.
type Document struct {
	Path     string
	FileName string
	Content  []byte
}

// Bytes returns the raw document content.
func (d Document) Bytes() ([]byte, error) {
	if d.Content != nil {
		return d.Content, nil
	}
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.FileName, err)
	}
	return data, nil
}

// StatementParser converts one bank's export format into drafts, in file order.
type StatementParser interface {
	Name() string
	Format() Format
	Parse(ctx context.Context, doc Document) ([]domain.TransactionDraft, error)
}

func malformed(parser string, line int, format string, args ...any) error {
	return fmt.Errorf("%w: %s line %d: %s", apperrors.ErrMalformedStatement, parser, line, fmt.Sprintf(format, args...))
}

func cleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
