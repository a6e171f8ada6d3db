// Package metrics provides Prometheus metrics for docmeta
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joseph-ayodele/docmeta/constants"
)

// Metrics holds all Prometheus metrics for docmeta
type Metrics struct {
	Registry *prometheus.Registry

	// Extraction metrics
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec

	// Persistence metrics
	RecordsSavedTotal    prometheus.Counter
	DuplicateSavesTotal  prometheus.Counter
	VerifiedRecordsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	m := &Metrics{Registry: reg}

	m.ExtractionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docmeta_extractions_total",
			Help: "Total number of metadata extractions",
		},
		[]string{"format", "status"},
	)

	m.ExtractionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docmeta_extraction_duration_seconds",
			Help:    "Duration of metadata extractions in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"format"},
	)

	m.RecordsSavedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docmeta_records_saved_total",
			Help: "Total number of metadata records saved",
		},
	)

	m.DuplicateSavesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docmeta_duplicate_saves_total",
			Help: "Saved records whose hash matched an earlier record",
		},
	)

	m.VerifiedRecordsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docmeta_verified_records_total",
			Help: "Records checked by verify, by outcome",
		},
		[]string{"status"},
	)

	return m
}

// ObserveExtraction records one dispatch. Unsupported files carry no format.
func (m *Metrics) ObserveExtraction(format constants.Format, ok bool, elapsed time.Duration) {
	label := string(format)
	if label == "" {
		label = "unsupported"
	}
	status := "success"
	if !ok {
		status = "error"
	}
	m.ExtractionsTotal.WithLabelValues(label, status).Inc()
	m.ExtractionDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordSaved(duplicate bool) {
	m.RecordsSavedTotal.Inc()
	if duplicate {
		m.DuplicateSavesTotal.Inc()
	}
}

func (m *Metrics) RecordVerified(checked, failed int) {
	m.VerifiedRecordsTotal.WithLabelValues("ok").Add(float64(checked - failed))
	m.VerifiedRecordsTotal.WithLabelValues("failed").Add(float64(failed))
}
