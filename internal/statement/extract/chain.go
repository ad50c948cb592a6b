package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/hashicorp/go-multierror"
)

// Chain tries its strategies in order and returns the first non-blank text.
type Chain struct {
	strategies []TextExtractor
}

// NewChain builds a fallback chain, typically text layer first and OCR second.
func NewChain(strategies ...TextExtractor) *Chain {
	return &Chain{strategies: strategies}
}

// Extract fails with ErrExtraction when no strategy produced text and at least one failed,
// and with ErrEmptyDocument when every strategy ran but found only whitespace.
func (c *Chain) Extract(ctx context.Context, path string) (Extraction, error) {
	var errs *multierror.Error
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}
		res, err := s.Extract(ctx, path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if !res.Blank() {
			return res, nil
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return Extraction{}, fmt.Errorf("%w: %s: %w", apperrors.ErrExtraction, filepath.Base(path), err)
	}
	return Extraction{}, fmt.Errorf("%w: %s", apperrors.ErrEmptyDocument, filepath.Base(path))
}
