// Package extract turns statement files into plain text, either from the embedded
// PDF text layer or by rasterizing pages and running OCR on them.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Method records which strategy produced the text.
type Method string

const (
	MethodTextLayer Method = "text_layer"
	MethodOCR       Method = "ocr"
)

// Extraction is the text pulled out of a document.
type Extraction struct {
	Text   string
	Method Method
}

// Blank reports whether the extraction holds only whitespace.
func (e Extraction) Blank() bool {
	return strings.TrimSpace(e.Text) == ""
}

// TextExtractor pulls plain text out of the file at path.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (Extraction, error)
}

// CommandRunner runs an external tool and returns what it wrote to stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec, killing them once Timeout elapses.
type ExecRunner struct {
	Timeout time.Duration
}

// Run executes name with args. A non-zero exit status is returned as an error carrying stderr.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s timed out after %s: %w", name, r.Timeout, ctx.Err())
		}
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
