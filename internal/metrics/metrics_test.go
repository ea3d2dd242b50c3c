package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveYear("awards", OutcomeRecords, 12)
	m.ObserveYear("awards", OutcomeEmpty, 0)
	m.ObserveYear("awards", OutcomeRecords, 3)
	m.ObserveTables("awards", 2)
	m.ObserveSchemaMismatch("awards")
	m.ObserveFetch(SourceCache, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.YearsTotal.WithLabelValues("awards", OutcomeRecords)))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.RecordsTotal.WithLabelValues("awards")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TablesTotal.WithLabelValues("awards")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchemaMismatch.WithLabelValues("awards")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveYear("x", OutcomeFailed, 1)
	m.ObserveTables("x", 1)
	m.ObserveSchemaMismatch("x")
	m.ObserveFetch(SourceNetwork, time.Second)
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveYear("films-gross", OutcomeRecords, 10)
	path := filepath.Join(t.TempDir(), "rewind.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `rewind_records_total{topic="films-gross"} 10`)
}
