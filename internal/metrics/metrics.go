// Package metrics holds the Prometheus collectors of a run. Collectors live
// on a private registry so several runs (and tests) never collide, and the
// registry can be dumped in the textfile exposition format at the end of a
// run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Year outcomes.
const (
	OutcomeRecords = "records"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
)

// Fetch sources.
const (
	SourceCache   = "cache"
	SourceNetwork = "network"
)

// Metrics holds the run collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Registry *prometheus.Registry

	YearsTotal     *prometheus.CounterVec
	RecordsTotal   *prometheus.CounterVec
	TablesTotal    *prometheus.CounterVec
	SchemaMismatch *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		YearsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewind_years_total",
				Help: "Years processed, by topic and outcome",
			},
			[]string{"topic", "outcome"},
		),
		RecordsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewind_records_total",
				Help: "Canonical records emitted, by topic",
			},
			[]string{"topic"},
		),
		TablesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewind_tables_total",
				Help: "Tables located in scope, by topic",
			},
			[]string{"topic"},
		),
		SchemaMismatch: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewind_schema_mismatch_total",
				Help: "Tables with neither a header row nor a positional schema, by topic",
			},
			[]string{"topic"},
		),
		FetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rewind_fetch_duration_seconds",
				Help:    "Document fetch duration, by source",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}
}

// ObserveYear counts one processed year.
func (m *Metrics) ObserveYear(topic, outcome string, records int) {
	if m == nil {
		return
	}
	m.YearsTotal.WithLabelValues(topic, outcome).Inc()
	if records > 0 {
		m.RecordsTotal.WithLabelValues(topic).Add(float64(records))
	}
}

// ObserveTables counts tables found in a section.
func (m *Metrics) ObserveTables(topic string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TablesTotal.WithLabelValues(topic).Add(float64(n))
}

// ObserveSchemaMismatch counts one table that could not be mapped.
func (m *Metrics) ObserveSchemaMismatch(topic string) {
	if m == nil {
		return
	}
	m.SchemaMismatch.WithLabelValues(topic).Inc()
}

// ObserveFetch records how long a document took to obtain.
func (m *Metrics) ObserveFetch(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// WriteTextfile writes every collector to path in the text exposition
// format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
