package extract_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/SscSPs/statement_importer/internal/apperrors"
	"github.com/SscSPs/statement_importer/internal/statement/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticExtractor struct {
	res   extract.Extraction
	err   error
	calls int
}

func (s *staticExtractor) Extract(ctx context.Context, path string) (extract.Extraction, error) {
	s.calls++
	return s.res, s.err
}

func TestChain_Extract(t *testing.T) {
	textLayer := extract.Extraction{Text: "native text", Method: extract.MethodTextLayer}
	ocrText := extract.Extraction{Text: "ocr text", Method: extract.MethodOCR}
	blank := extract.Extraction{Text: " \n\t ", Method: extract.MethodTextLayer}

	tests := []struct {
		name       string
		first      *staticExtractor
		second     *staticExtractor
		want       extract.Extraction
		wantErr    error
		secondCall int
	}{
		{
			name:       "text layer wins",
			first:      &staticExtractor{res: textLayer},
			second:     &staticExtractor{res: ocrText},
			want:       textLayer,
			secondCall: 0,
		},
		{
			name:       "blank text layer falls back to OCR",
			first:      &staticExtractor{res: blank},
			second:     &staticExtractor{res: ocrText},
			want:       ocrText,
			secondCall: 1,
		},
		{
			name:       "failing text layer falls back to OCR",
			first:      &staticExtractor{err: apperrors.ErrExtraction},
			second:     &staticExtractor{res: ocrText},
			want:       ocrText,
			secondCall: 1,
		},
		{
			name:       "everything blank",
			first:      &staticExtractor{res: blank},
			second:     &staticExtractor{res: extract.Extraction{Method: extract.MethodOCR}},
			wantErr:    apperrors.ErrEmptyDocument,
			secondCall: 1,
		},
		{
			name:       "OCR failure after blank text layer",
			first:      &staticExtractor{res: blank},
			second:     &staticExtractor{err: errors.New("tesseract missing")},
			wantErr:    apperrors.ErrExtraction,
			secondCall: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extract.NewChain(tt.first, tt.second).Extract(context.Background(), "/tmp/s.pdf")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.secondCall, tt.second.calls)
		})
	}
}

func TestExecRunner_Run(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	runner := extract.ExecRunner{Timeout: 5 * time.Second}

	out, err := runner.Run(context.Background(), "sh", "-c", "printf hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	_, err = runner.Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
