// Package metrics holds the Prometheus collectors for backups and migrations.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ledgervault"

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeSkipped  = "skipped"
	OutcomeDisabled = "disabled"
	OutcomeDropped  = "dropped"
)

type Metrics struct {
	snapshotUploads *prometheus.CounterVec
	schedulerTicks  *prometheus.CounterVec
	migratedFiles   *prometheus.CounterVec
	localSaves      *prometheus.CounterVec
	migrationRuns   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		snapshotUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_uploads_total",
			Help:      "Snapshot uploads to cloud storage by snapshot type and outcome.",
		}, []string{"type", "outcome"}),
		schedulerTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_scheduler_ticks_total",
			Help:      "Backup scheduler ticks by outcome.",
		}, []string{"outcome"}),
		migratedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_files_total",
			Help:      "Files processed by the cloud migration by outcome.",
		}, []string{"outcome"}),
		localSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "local_saves_total",
			Help:      "Local file saves by category and outcome.",
		}, []string{"category", "outcome"}),
		migrationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_runs_total",
			Help:      "Completed migrate phases by final status.",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{
		m.snapshotUploads, m.schedulerTicks, m.migratedFiles, m.localSaves, m.migrationRuns,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) SnapshotUpload(snapshotType, outcome string) {
	if m == nil {
		return
	}
	m.snapshotUploads.WithLabelValues(snapshotType, outcome).Inc()
}

func (m *Metrics) SchedulerTick(outcome string) {
	if m == nil {
		return
	}
	m.schedulerTicks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) MigratedFile(outcome string) {
	if m == nil {
		return
	}
	m.migratedFiles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LocalSave(category, outcome string) {
	if m == nil {
		return
	}
	m.localSaves.WithLabelValues(category, outcome).Inc()
}

func (m *Metrics) MigrationRun(status string) {
	if m == nil {
		return
	}
	m.migrationRuns.WithLabelValues(status).Inc()
}
