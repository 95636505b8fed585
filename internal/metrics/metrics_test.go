package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.SnapshotUpload("database_backup", OutcomeSuccess)
	m.SnapshotUpload("database_backup", OutcomeSuccess)
	m.SchedulerTick(OutcomeSkipped)
	m.MigratedFile(OutcomeFailure)
	m.LocalSave("docs", OutcomeSuccess)
	m.MigrationRun("partial")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.snapshotUploads.WithLabelValues("database_backup", OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.schedulerTicks.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.migratedFiles.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.localSaves.WithLabelValues("docs", OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.migrationRuns.WithLabelValues("partial")))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SnapshotUpload("file_metadata", OutcomeFailure)
		m.SchedulerTick(OutcomeSuccess)
		m.MigratedFile(OutcomeSuccess)
		m.LocalSave("docs", OutcomeFailure)
		m.MigrationRun("completed")
	})
}
