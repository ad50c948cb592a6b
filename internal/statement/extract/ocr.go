package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"golang.org/x/sync/errgroup"
)

const (
	defaultOCRDPI      = 200
	defaultOCRLanguage = "spa"
	pagePrefix         = "page"
)

// OCR rasterizes every page with pdftoppm and recognizes each image with tesseract.
// Intermediate images live in a private temp directory that is removed on every return path.
type OCR struct {
	runner      CommandRunner
	converter   string
	recognizer  string
	language    string
	dpi         int
	concurrency int
	tempRoot    string
	onPages     func(pages int)
}

// OCROption configures an OCR extractor.
type OCROption func(*OCR)

// WithBinaries overrides the converter and recognizer executables.
func WithBinaries(converter, recognizer string) OCROption {
	return func(o *OCR) {
		if converter != "" {
			o.converter = converter
		}
		if recognizer != "" {
			o.recognizer = recognizer
		}
	}
}

// WithLanguage sets the tesseract language pack.
func WithLanguage(lang string) OCROption {
	return func(o *OCR) {
		if lang != "" {
			o.language = lang
		}
	}
}

// WithDPI sets the rasterization resolution.
func WithDPI(dpi int) OCROption {
	return func(o *OCR) {
		if dpi > 0 {
			o.dpi = dpi
		}
	}
}

// WithConcurrency bounds how many pages are recognized at once.
func WithConcurrency(n int) OCROption {
	return func(o *OCR) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithTempRoot places the per-call working directories under root instead of os.TempDir.
func WithTempRoot(root string) OCROption {
	return func(o *OCR) {
		o.tempRoot = root
	}
}

// WithPagesObserver is called with the page count of every successfully recognized document.
func WithPagesObserver(fn func(pages int)) OCROption {
	return func(o *OCR) {
		o.onPages = fn
	}
}

// NewOCR creates an OCR extractor.
func NewOCR(runner CommandRunner, opts ...OCROption) *OCR {
	o := &OCR{
		runner:      runner,
		converter:   "pdftoppm",
		recognizer:  "tesseract",
		language:    defaultOCRLanguage,
		dpi:         defaultOCRDPI,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Extract returns the recognized text of all pages in page order, separated by a blank line.
func (o *OCR) Extract(ctx context.Context, path string) (Extraction, error) {
	dir, err := os.MkdirTemp(o.tempRoot, "statement-ocr-")
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: creating work dir: %w", apperrors.ErrExtraction, err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, pagePrefix)
	if _, err := o.runner.Run(ctx, o.converter, "-r", strconv.Itoa(o.dpi), "-png", path, prefix); err != nil {
		return Extraction{}, fmt.Errorf("%w: rasterizing %s: %w", apperrors.ErrExtraction, filepath.Base(path), err)
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: listing page images: %w", apperrors.ErrExtraction, err)
	}
	if len(images) == 0 {
		return Extraction{}, fmt.Errorf("%w: %s produced no page images", apperrors.ErrExtraction, o.converter)
	}
	sortPages(images)

	texts := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, img := range images {
		g.Go(func() error {
			out, err := o.runner.Run(gctx, o.recognizer, img, "stdout", "-l", o.language)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			texts[i] = strings.TrimSpace(string(out))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Extraction{}, fmt.Errorf("%w: recognizing %s: %w", apperrors.ErrExtraction, filepath.Base(path), err)
	}

	if o.onPages != nil {
		o.onPages(len(images))
	}
	return Extraction{Text: strings.Join(texts, "\n\n"), Method: MethodOCR}, nil
}

// sortPages orders pdftoppm output by page number; zero padding varies with page count.
func sortPages(images []string) {
	sort.SliceStable(images, func(i, j int) bool {
		return pageNumber(images[i]) < pageNumber(images[j])
	})
}

func pageNumber(img string) int {
	base := strings.TrimSuffix(filepath.Base(img), ".png")
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
