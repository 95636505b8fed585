// Package scheduler runs the periodic database_backup snapshot.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/clock"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ledgervault/internal/config"
	"ledgervault/internal/metrics"
	"ledgervault/internal/model"
	"ledgervault/internal/otel"
	"ledgervault/internal/repository"
)

// SnapshotUploader uploads a named JSON snapshot to cloud storage.
type SnapshotUploader interface {
	UploadSnapshot(ctx context.Context, t model.SnapshotType, payload any) (string, error)
}

// Scheduler owns a single timer loop. Ticks never overlap: a tick that fires while the
// previous snapshot is still running is skipped.
type Scheduler struct {
	repo     repository.LedgerRepository
	uploader SnapshotUploader
	clock    clock.Clock
	log      zerolog.Logger
	metrics  *metrics.Metrics

	mu  sync.Mutex
	cfg config.BackupConfig

	reset   chan struct{}
	running atomic.Bool

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

type Option func(*Scheduler)

func WithClock(c clock.Clock) Option { return func(s *Scheduler) { s.clock = c } }

func WithLogger(l zerolog.Logger) Option { return func(s *Scheduler) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Scheduler) { s.metrics = m } }

func New(repo repository.LedgerRepository, uploader SnapshotUploader, cfg config.BackupConfig, opts ...Option) *Scheduler {
	s := &Scheduler{
		repo:     repo,
		uploader: uploader,
		cfg:      normalize(cfg),
		clock:    clock.WallClock,
		log:      zerolog.Nop(),
		reset:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalize(cfg config.BackupConfig) config.BackupConfig {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	return cfg
}

// Config returns the active configuration.
func (s *Scheduler) Config() config.BackupConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// UpdateConfig replaces the configuration. A changed interval restarts the timer;
// Enabled takes effect on the next tick.
func (s *Scheduler) UpdateConfig(cfg config.BackupConfig) {
	cfg = normalize(cfg)

	s.mu.Lock()
	changed := cfg.Interval != s.cfg.Interval
	s.cfg = cfg
	s.mu.Unlock()

	s.log.Info().
		Bool("enabled", cfg.Enabled).
		Dur("interval", cfg.Interval).
		Msg("backup schedule updated")

	if changed {
		select {
		case s.reset <- struct{}{}:
		default:
		}
	}
}

// Start launches the timer loop. Calling Start on a running scheduler does nothing;
// a stopped scheduler can be started again and waits InitialDelay once more.
func (s *Scheduler) Start(ctx context.Context) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.cancel != nil {
		return
	}
	select {
	case <-s.reset:
	default:
	}

	ctx, s.cancel = context.WithCancel(ctx)
	cfg := s.Config()
	s.log.Info().
		Bool("enabled", cfg.Enabled).
		Dur("initial_delay", cfg.InitialDelay).
		Dur("interval", cfg.Interval).
		Msg("backup scheduler started")

	s.wg.Add(1)
	go s.loop(ctx, cfg.InitialDelay)
}

// Stop cancels the timer and waits for the loop and any in-flight tick to exit.
func (s *Scheduler) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil
}

func (s *Scheduler) loop(ctx context.Context, first time.Duration) {
	defer s.wg.Done()

	timer := s.clock.NewTimer(first)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("backup scheduler stopped")
			return
		case <-s.reset:
			timer.Stop()
			timer.Reset(s.Config().Interval)
		case <-timer.Chan():
			s.tick(ctx)
			timer.Reset(s.Config().Interval)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.Config().Enabled {
		s.metrics.SchedulerTick(metrics.OutcomeDisabled)
		s.log.Debug().Msg("backup tick skipped: disabled")
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		s.metrics.SchedulerTick(metrics.OutcomeSkipped)
		s.log.Warn().Msg("backup tick skipped: previous snapshot still running")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		start := s.clock.Now()
		name, err := s.Snapshot(ctx)
		if err != nil {
			s.metrics.SchedulerTick(metrics.OutcomeFailure)
			s.log.Error().Err(err).Msg("scheduled backup failed")
			return
		}
		s.metrics.SchedulerTick(metrics.OutcomeSuccess)
		s.log.Info().
			Str("snapshot", name).
			Dur("elapsed", s.clock.Now().Sub(start)).
			Msg("scheduled backup uploaded")
	}()
}

// Snapshot collects table counts and ledger totals and uploads them as one database_backup.
func (s *Scheduler) Snapshot(ctx context.Context) (string, error) {
	ctx, span := otel.Tracer("scheduler").Start(ctx, "backup.snapshot")
	defer span.End()

	name, err := s.snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("snapshot.name", name))
	return name, nil
}

func (s *Scheduler) snapshot(ctx context.Context) (string, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return "", fmt.Errorf("collect counts: %w", err)
	}
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return "", fmt.Errorf("collect totals: %w", err)
	}
	summary := model.NewDatabaseSummary(*counts, *totals)
	return s.uploader.UploadSnapshot(ctx, model.SnapshotDatabaseBackup, summary)
}
