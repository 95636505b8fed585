// Package migration drives the verify → backup → migrate → complete workflow that copies
// local attachments to cloud storage. Local files are only read, never removed.
package migration

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ledgervault/internal/apperror"
	"ledgervault/internal/metrics"
	"ledgervault/internal/model"
	"ledgervault/internal/otel"
	"ledgervault/internal/repository"
)

// Snapshotter takes one synchronous database backup.
type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
}

// HealthReporter reports storage readiness.
type HealthReporter interface {
	Report(ctx context.Context) model.StorageHealthReport
}

// FileSource reads files referenced by the ledger from the local root.
type FileSource interface {
	Resolve(ref string) (string, error)
	Relative(path string) string
	ReadFile(ctx context.Context, ref string) ([]byte, error)
	Exists(ref string) bool
}

// ObjectUploader writes one object to cloud storage and confirms it landed intact.
type ObjectUploader interface {
	PutFile(ctx context.Context, key string, body []byte, contentType string) error
	VerifyFile(ctx context.Context, key string, size int64) error
}

// VerifyResult is returned by Verify.
type VerifyResult struct {
	Success   bool                    `json:"success"`
	SessionID string                  `json:"sessionId"`
	Stats     model.VerificationStats `json:"stats"`
}

// BackupResult is returned by Backup. A failed backup is reported here, not as an error.
type BackupResult struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	Snapshot  string `json:"snapshot,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Config tunes the migrate phase.
type Config struct {
	Workers      int
	FileTimeout  time.Duration
	ObjectPrefix string
}

// Orchestrator holds a single migration session. It is safe for concurrent use.
type Orchestrator struct {
	repo     repository.LedgerRepository
	snapshot Snapshotter
	health   HealthReporter
	files    FileSource
	uploader ObjectUploader
	cfg      Config
	clock    clock.Clock
	log      zerolog.Logger
	metrics  *metrics.Metrics

	mu       sync.Mutex
	inFlight bool
	session  *model.MigrationSession
	refs     []string
	txRefs   []model.Attachment
}

type Option func(*Orchestrator)

func WithClock(c clock.Clock) Option { return func(o *Orchestrator) { o.clock = c } }

func WithLogger(l zerolog.Logger) Option { return func(o *Orchestrator) { o.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(o *Orchestrator) { o.metrics = m } }

func New(repo repository.LedgerRepository, snap Snapshotter, health HealthReporter, files FileSource, uploader ObjectUploader, cfg Config, opts ...Option) *Orchestrator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.FileTimeout <= 0 {
		cfg.FileTimeout = time.Minute
	}
	if cfg.ObjectPrefix == "" {
		cfg.ObjectPrefix = "files"
	}
	o := &Orchestrator{
		repo:     repo,
		snapshot: snap,
		health:   health,
		files:    files,
		uploader: uploader,
		cfg:      cfg,
		clock:    clock.WallClock,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Session returns a copy of the current session, or false when none was started.
func (o *Orchestrator) Session() (model.MigrationSession, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return model.MigrationSession{}, false
	}
	return copySession(o.session), true
}

func copySession(s *model.MigrationSession) model.MigrationSession {
	c := *s
	if s.MigrationResult != nil {
		r := *s.MigrationResult
		r.Errors = append([]string(nil), s.MigrationResult.Errors...)
		c.MigrationResult = &r
	}
	return c
}

// Verify counts ledger rows and collects attachment references, starting a fresh session.
func (o *Orchestrator) Verify(ctx context.Context) (*VerifyResult, error) {
	ctx, span := otel.Tracer("migration").Start(ctx, "migration.verify")
	defer span.End()

	o.mu.Lock()
	busy := o.inFlight
	o.mu.Unlock()
	if busy {
		return nil, apperror.ErrMigrationInProgress
	}

	counts, err := o.repo.Counts(ctx)
	if err != nil {
		return nil, traceErr(span, fmt.Errorf("verify counts: %w", err))
	}
	attachments, err := o.repo.ListAttachments(ctx)
	if err != nil {
		return nil, traceErr(span, fmt.Errorf("verify attachments: %w", err))
	}
	refs, txRefs := collectRefs(attachments)

	now := o.clock.Now().UTC()
	session := &model.MigrationSession{
		ID:       uuid.NewString(),
		Step:     model.StepVerify,
		Verified: true,
		VerificationStats: model.VerificationStats{
			Transactions:         counts.Transactions,
			Documents:            counts.Documents,
			FilesWithAttachments: int64(len(refs)),
		},
		StartedAt: now,
		UpdatedAt: now,
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, apperror.ErrMigrationInProgress
	}
	o.session, o.refs, o.txRefs = session, refs, txRefs
	o.mu.Unlock()

	span.SetAttributes(
		attribute.String("migration.session_id", session.ID),
		attribute.Int("migration.files", len(refs)),
	)
	o.log.Info().
		Str("session_id", session.ID).
		Int64("transactions", counts.Transactions).
		Int64("documents", counts.Documents).
		Int("files", len(refs)).
		Msg("migration verified")

	return &VerifyResult{Success: true, SessionID: session.ID, Stats: session.VerificationStats}, nil
}

// collectRefs returns distinct attachment paths in first-seen order and the transaction references.
func collectRefs(attachments []model.Attachment) ([]string, []model.Attachment) {
	seen := make(map[string]struct{}, len(attachments))
	refs := make([]string, 0, len(attachments))
	var txRefs []model.Attachment
	for _, a := range attachments {
		p := strings.TrimSpace(a.Path)
		if p == "" {
			continue
		}
		if a.Source == model.AttachmentFromTransaction {
			a.Path = p
			txRefs = append(txRefs, a)
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		refs = append(refs, p)
	}
	return refs, txRefs
}

// begin marks a phase as in flight after checking the session is in one of allowed steps.
func (o *Orchestrator) begin(allowed ...model.MigrationStep) (*model.MigrationSession, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return nil, apperror.ErrMigrationInProgress
	}
	if o.session == nil || !o.session.Verified {
		return nil, fmt.Errorf("%w: verify has not run", apperror.ErrPhaseNotAllowed)
	}
	for _, step := range allowed {
		if o.session.Step == step {
			o.inFlight = true
			return o.session, nil
		}
	}
	return nil, fmt.Errorf("%w: session is in step %s", apperror.ErrPhaseNotAllowed, o.session.Step)
}

func (o *Orchestrator) finish(update func(s *model.MigrationSession)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil {
		update(o.session)
		o.session.UpdatedAt = o.clock.Now().UTC()
	}
	o.inFlight = false
}

// Backup confirms cloud readiness and takes one database snapshot.
func (o *Orchestrator) Backup(ctx context.Context) (*BackupResult, error) {
	ctx, span := otel.Tracer("migration").Start(ctx, "migration.backup")
	defer span.End()

	session, err := o.begin(model.StepVerify, model.StepBackup)
	if err != nil {
		return nil, traceErr(span, err)
	}
	res := &BackupResult{SessionID: session.ID}

	cloud := o.health.Report(ctx).Cloud
	if !cloud.StorageReady {
		res.Error = "cloud storage not ready"
		if cloud.Error != "" {
			res.Error += ": " + cloud.Error
		}
	} else if name, err := o.snapshot.Snapshot(ctx); err != nil {
		res.Error = fmt.Sprintf("backup failed: %v", err)
	} else {
		res.Success = true
		res.Snapshot = name
	}

	o.finish(func(s *model.MigrationSession) {
		if res.Success {
			s.Step = model.StepMigrate
			s.BackupCompleted = true
			s.BackupObject = res.Snapshot
			s.BackupError = ""
			return
		}
		s.Step = model.StepBackup
		s.BackupError = res.Error
	})

	if !res.Success {
		span.SetStatus(codes.Error, res.Error)
		o.log.Warn().Str("session_id", res.SessionID).Str("error", res.Error).Msg("migration backup failed")
		return res, nil
	}
	span.SetAttributes(attribute.String("snapshot.name", res.Snapshot))
	o.log.Info().Str("session_id", res.SessionID).Str("snapshot", res.Snapshot).Msg("migration backup completed")
	return res, nil
}

// Migrate copies every verified attachment to cloud storage. It may run again after a completed
// run; the re-run gets a successor session and overwrites the same object keys.
func (o *Orchestrator) Migrate(ctx context.Context) (*model.MigrationResult, error) {
	ctx, span := otel.Tracer("migration").Start(ctx, "migration.migrate")
	defer span.End()

	session, err := o.begin(model.StepMigrate, model.StepComplete)
	if err != nil {
		return nil, traceErr(span, err)
	}

	o.mu.Lock()
	if session.Step == model.StepComplete {
		now := o.clock.Now().UTC()
		o.session = &model.MigrationSession{
			ID:                uuid.NewString(),
			PreviousSessionID: session.ID,
			Step:              model.StepMigrate,
			Verified:          true,
			VerificationStats: session.VerificationStats,
			BackupCompleted:   session.BackupCompleted,
			BackupObject:      session.BackupObject,
			StartedAt:         now,
			UpdatedAt:         now,
		}
		session = o.session
	}
	sessionID := session.ID
	refs := append([]string(nil), o.refs...)
	txRefs := append([]model.Attachment(nil), o.txRefs...)
	o.mu.Unlock()

	span.SetAttributes(
		attribute.String("migration.session_id", sessionID),
		attribute.Int("migration.files", len(refs)),
		attribute.Int("migration.workers", o.cfg.Workers),
	)
	o.log.Info().Str("session_id", sessionID).Int("files", len(refs)).Int("workers", o.cfg.Workers).Msg("migration started")

	errs := o.migrateAll(ctx, refs)

	result := model.MigrationResult{TotalFiles: len(refs), Errors: []string{}}
	for i, err := range errs {
		if err != nil {
			result.FailedFiles++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", refs[i], err))
			o.metrics.MigratedFile(metrics.OutcomeFailure)
			continue
		}
		result.MigratedFiles++
		o.metrics.MigratedFile(metrics.OutcomeSuccess)
	}
	result.PreservedTransactions = o.preserved(ctx, txRefs)
	result.Status = model.MigrationCompleted
	if !result.FullySuccessful() {
		result.Status = model.MigrationPartial
	}

	o.finish(func(s *model.MigrationSession) {
		if s.ID != sessionID {
			return
		}
		r := result
		s.MigrationResult = &r
		s.Step = model.StepComplete
	})
	o.metrics.MigrationRun(string(result.Status))

	span.SetAttributes(
		attribute.Int("migration.migrated", result.MigratedFiles),
		attribute.Int("migration.failed", result.FailedFiles),
		attribute.String("migration.status", string(result.Status)),
	)
	o.log.Info().
		Str("session_id", sessionID).
		Int("migrated", result.MigratedFiles).
		Int("failed", result.FailedFiles).
		Int("preserved_transactions", result.PreservedTransactions).
		Str("status", string(result.Status)).
		Msg("migration finished")

	return &result, nil
}

// migrateAll returns one error slot per ref, in ref order.
func (o *Orchestrator) migrateAll(ctx context.Context, refs []string) []error {
	errs := make([]error, len(refs))
	if o.cfg.Workers <= 1 {
		for i, ref := range refs {
			errs[i] = o.migrateFile(ctx, ref)
		}
		return errs
	}

	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)
	for i, ref := range refs {
		g.Go(func() error {
			errs[i] = o.migrateFile(ctx, ref)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (o *Orchestrator) migrateFile(ctx context.Context, ref string) error {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.FileTimeout)
	defer cancel()

	abs, err := o.files.Resolve(ref)
	if err != nil {
		return err
	}
	data, err := o.files.ReadFile(ctx, ref)
	if err != nil {
		return err
	}
	key := path.Join(o.cfg.ObjectPrefix, o.files.Relative(abs))
	if err := o.uploader.PutFile(ctx, key, data, contentType(abs)); err != nil {
		return err
	}
	if err := o.uploader.VerifyFile(ctx, key, int64(len(data))); err != nil {
		return err
	}
	o.log.Debug().Str("file", ref).Str("key", key).Int("bytes", len(data)).Msg("file migrated")
	return nil
}

// preserved counts transaction attachments from verify that are still referenced and still on disk.
func (o *Orchestrator) preserved(ctx context.Context, txRefs []model.Attachment) int {
	current, err := o.repo.ListAttachments(ctx)
	if err != nil {
		o.log.Warn().Err(err).Msg("could not re-read attachment references")
		return 0
	}
	still := make(map[string]struct{}, len(current))
	for _, a := range current {
		if a.Source == model.AttachmentFromTransaction {
			still[a.OwnerID+"\x00"+strings.TrimSpace(a.Path)] = struct{}{}
		}
	}

	n := 0
	for _, a := range txRefs {
		if _, ok := still[a.OwnerID+"\x00"+a.Path]; ok && o.files.Exists(a.Path) {
			n++
		}
	}
	return n
}

func contentType(p string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(p))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func traceErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
