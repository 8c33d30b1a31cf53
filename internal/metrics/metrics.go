package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesRendered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookocr",
			Name:      "pages_rendered_total",
			Help:      "Total input pages rendered to raster images",
		},
	)

	halvesOCR = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookocr",
			Name:      "halves_ocr_total",
			Help:      "Total page halves pushed through OCR by result (success, empty, error)",
		},
		[]string{"result"},
	)

	ocrLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bookocr",
			Name:      "ocr_duration_seconds",
			Help:      "Duration of OCR per page half",
			Buckets:   prometheus.DefBuckets,
		},
	)

	ocrChars = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookocr",
			Name:      "ocr_chars_total",
			Help:      "Total characters recognized by OCR",
		},
	)

	corrections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookocr",
			Name:      "spell_corrections_total",
			Help:      "Spell-correction calls by backend and result",
		},
		[]string{"backend", "result"},
	)

	outputPages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookocr",
			Name:      "output_pages_total",
			Help:      "Total pages written to the output PDF",
		},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(pagesRendered, halvesOCR, ocrLatency, ocrChars, corrections, outputPages)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncRendered() { pagesRendered.Inc() }

func ObserveOCR(result string, chars int, dur time.Duration) {
	halvesOCR.WithLabelValues(result).Inc()
	ocrLatency.Observe(dur.Seconds())
	if chars > 0 {
		ocrChars.Add(float64(chars))
	}
}

func IncCorrection(backend, result string) { corrections.WithLabelValues(backend, result).Inc() }

func IncOutputPage() { outputPages.Inc() }
