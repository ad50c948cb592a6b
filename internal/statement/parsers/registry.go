package parsers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/statement/extract"
)

type registryKey struct {
	declaredType string
	format       Format
}

// Registry selects a parser by the bank type the user declared and the file format.
type Registry struct {
	parsers map[registryKey]StatementParser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[registryKey]StatementParser)}
}

// Register adds p under declaredType, replacing any parser of the same format.
func (r *Registry) Register(declaredType string, p StatementParser) {
	r.parsers[registryKey{declaredType: normalizeType(declaredType), format: p.Format()}] = p
}

// Lookup returns the parser for declaredType and format.
func (r *Registry) Lookup(declaredType string, format Format) (StatementParser, error) {
	p, ok := r.parsers[registryKey{declaredType: normalizeType(declaredType), format: format}]
	if !ok {
		return nil, fmt.Errorf("%w: no %s parser for %q, known types: %s",
			apperrors.ErrUnknownParser, format, declaredType, strings.Join(r.DeclaredTypes(), ", "))
	}
	return p, nil
}

// DeclaredTypes lists the registered bank types, sorted.
func (r *Registry) DeclaredTypes() []string {
	seen := make(map[string]struct{})
	for k := range r.parsers {
		seen[k.declaredType] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// DefaultRegistry wires every built-in bank format. textExtractor is the full fallback chain,
// ocr the OCR strategy alone, used to retry PDFs whose text layer held no transactions.
func DefaultRegistry(textExtractor, ocr extract.TextExtractor) *Registry {
	r := NewRegistry()
	r.Register("santander", NewSantanderCSV())
	r.Register("caixabank", NewCaixaBankCSV())
	r.Register("chase", NewChaseCSV())
	r.Register("santander", NewSantanderPDF(textExtractor, ocr, time.Now))
	r.Register("bbva", NewBBVAPDF(textExtractor, ocr, time.Now))
	return r
}
