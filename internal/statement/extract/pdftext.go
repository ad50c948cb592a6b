package extract

import (
	"context"
	"fmt"

	"github.com/SscSPs/statement_importer/internal/apperrors"
)

// PDFTextLayer reads the embedded text layer of a born-digital PDF with poppler's pdftotext.
type PDFTextLayer struct {
	runner CommandRunner
	binary string
}

// NewPDFTextLayer creates a text layer extractor. An empty binary defaults to "pdftotext".
func NewPDFTextLayer(runner CommandRunner, binary string) *PDFTextLayer {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PDFTextLayer{runner: runner, binary: binary}
}

// Extract returns the layout-preserving text of the document. Scanned PDFs come back blank.
func (p *PDFTextLayer) Extract(ctx context.Context, path string) (Extraction, error) {
	out, err := p.runner.Run(ctx, p.binary, "-layout", path, "-")
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: reading text layer: %w", apperrors.ErrExtraction, err)
	}
	return Extraction{Text: string(out), Method: MethodTextLayer}, nil
}
