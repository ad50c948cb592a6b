// Package metrics exposes Prometheus counters for statement imports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "statement_importer"

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	imports       *prometheus.CounterVec
	drafts        *prometheus.CounterVec
	fxResolutions *prometheus.CounterVec
	ocrPages      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	mtc := &Metrics{
		imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "imports_total",
				Help:      "Number of statement imports by parser and outcome",
			},
			[]string{"parser", "outcome"},
		),
		drafts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drafts_total",
				Help:      "Number of parsed statement lines by dedup result",
			},
			[]string{"result"},
		),
		fxResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fx_resolutions_total",
				Help:      "Number of exchange rate lookups by the source that answered",
			},
			[]string{"source"},
		),
		ocrPages: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ocr_pages_total",
				Help:      "Number of statement pages run through OCR",
			},
		),
	}

	reg.MustRegister(mtc.imports, mtc.drafts, mtc.fxResolutions, mtc.ocrPages)
	return mtc
}

func (m *Metrics) RecordImport(parser, outcome string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(parser, outcome).Inc()
}

func (m *Metrics) RecordDrafts(newCount, duplicates int) {
	if m == nil {
		return
	}
	m.drafts.WithLabelValues("new").Add(float64(newCount))
	m.drafts.WithLabelValues("duplicate").Add(float64(duplicates))
}

// RecordFxResolution counts a lookup answered by source; "absent" when no rate was found.
func (m *Metrics) RecordFxResolution(source string) {
	if m == nil {
		return
	}
	m.fxResolutions.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordOCRPages(pages int) {
	if m == nil {
		return
	}
	m.ocrPages.Add(float64(pages))
}
