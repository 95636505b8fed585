// Package localstore persists uploaded files under a category-scoped local directory.
//
// Layout: <root>/<category>/<stamp>_<originalName>. The stamp is a process-wide,
// strictly increasing nanosecond value, so stored names never collide within a category.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ledgervault/internal/apperror"
	"ledgervault/internal/metrics"
	"ledgervault/internal/model"
	"ledgervault/internal/tasks"
)

const (
	dirPerm  = 0o770
	filePerm = 0o640

	// saveAttempts bounds retries when a stamp collides with a file left by a previous process.
	saveAttempts = 5
)

// SnapshotUploader is the part of the cloud client used for best-effort metadata backups.
type SnapshotUploader interface {
	UploadSnapshot(ctx context.Context, t model.SnapshotType, payload any) (string, error)
}

// Dispatcher accepts fire-and-forget work.
type Dispatcher interface {
	Submit(t tasks.Task) bool
}

// Store is the local file store. It is safe for concurrent use.
type Store struct {
	root       string
	uploader   SnapshotUploader
	dispatcher Dispatcher
	log        zerolog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

type Option func(*Store)

// WithMetadataBackup enables the per-file metadata snapshot sent through d.
func WithMetadataBackup(u SnapshotUploader, d Dispatcher) Option {
	return func(s *Store) {
		s.uploader = u
		s.dispatcher = d
	}
}

func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Store) { s.metrics = m } }

// New returns a store rooted at root. The directory is created lazily on the first save.
func New(root string, opts ...Option) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("upload root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}
	s := &Store{root: abs, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute upload root.
func (s *Store) Root() string { return s.root }

var lastStamp atomic.Int64

// nextStamp returns a nanosecond timestamp strictly greater than any previously returned one.
func nextStamp(now time.Time) int64 {
	candidate := now.UnixNano()
	for {
		last := lastStamp.Load()
		next := candidate
		if next <= last {
			next = last + 1
		}
		if lastStamp.CompareAndSwap(last, next) {
			return next
		}
	}
}

// Save writes data to <root>/<category>/<stamp>_<originalName> with a single write call.
// When metadata is non-nil a file_metadata snapshot is queued; its outcome never affects Save.
func (s *Store) Save(ctx context.Context, data []byte, originalName, category string, metadata map[string]any) (*model.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	name, err := cleanName(originalName)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		s.metrics.LocalSave(category, metrics.OutcomeFailure)
		return nil, &apperror.LocalIOError{Op: "mkdir", Path: dir, Err: err}
	}

	var (
		created time.Time
		stored  string
		full    string
	)
	for attempt := 0; ; attempt++ {
		created = s.now()
		stored = fmt.Sprintf("%d_%s", nextStamp(created), name)
		full = filepath.Join(dir, stored)

		err = writeExclusive(full, data)
		if err == nil {
			break
		}
		if errors.Is(err, fs.ErrExist) && attempt+1 < saveAttempts {
			continue
		}
		s.metrics.LocalSave(category, metrics.OutcomeFailure)
		return nil, &apperror.LocalIOError{Op: "write", Path: full, Err: err}
	}

	file := &model.StoredFile{
		Category:     category,
		OriginalName: name,
		StoredName:   stored,
		LocalPath:    full,
		RelativePath: filepath.ToSlash(filepath.Join(category, stored)),
		SizeBytes:    int64(len(data)),
		CreatedAt:    created.UTC(),
		Metadata:     maps.Clone(metadata),
	}
	s.metrics.LocalSave(category, metrics.OutcomeSuccess)
	s.log.Info().
		Str("category", category).
		Str("stored_name", stored).
		Int64("size_bytes", file.SizeBytes).
		Msg("file saved")

	if metadata != nil {
		s.backupMetadata(*file)
	}
	return file, nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// backupMetadata queues the snapshot without waiting for it.
func (s *Store) backupMetadata(file model.StoredFile) {
	if s.uploader == nil || s.dispatcher == nil {
		return
	}
	file.Metadata = maps.Clone(file.Metadata)
	s.dispatcher.Submit(tasks.Task{
		Name: "file_metadata:" + file.RelativePath,
		Run: func(ctx context.Context) error {
			name, err := s.uploader.UploadSnapshot(ctx, model.SnapshotFileMetadata, file)
			if err != nil {
				s.log.Warn().Err(err).Str("file", file.RelativePath).Msg("metadata backup failed")
				return nil
			}
			s.log.Debug().Str("file", file.RelativePath).Str("snapshot", name).Msg("metadata backed up")
			return nil
		},
	})
}

// Resolve maps a stored reference onto an absolute path inside the root.
// Accepted forms: "<category>/<name>", "/uploads/<category>/<name>" and absolute paths
// already inside the root. The root directory name is only dropped from rooted forms
// ("/x" or "./x"), so a category named like the root still resolves.
func (s *Store) Resolve(ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", apperror.ErrInvalidFilename
	}
	var candidate string
	if filepath.IsAbs(ref) && isWithin(s.root, filepath.Clean(ref)) {
		candidate = filepath.Clean(ref)
	} else {
		slashed := filepath.ToSlash(ref)
		rooted := strings.HasPrefix(slashed, "/") || strings.HasPrefix(slashed, "./")
		rel := strings.TrimLeft(slashed, "/")
		rel = strings.TrimPrefix(rel, "./")
		if base := filepath.Base(s.root) + "/"; rooted && strings.HasPrefix(rel, base) {
			rel = strings.TrimPrefix(rel, base)
		}
		candidate = filepath.Join(s.root, filepath.FromSlash(rel))
	}
	if !isWithin(s.root, candidate) || candidate == s.root {
		return "", apperror.ErrOutsideRoot
	}
	return candidate, nil
}

// Relative returns path relative to the root in slash form.
func (s *Store) Relative(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// ReadFile reads the file a reference points to. Files are only ever read, never removed.
func (s *Store) ReadFile(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Resolve(ref)
	if err != nil {
		return nil, &apperror.LocalIOError{Op: "resolve", Path: ref, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperror.LocalIOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// Exists reports whether a reference points at a regular file.
func (s *Store) Exists(ref string) bool {
	path, err := s.Resolve(ref)
	if err != nil {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func validateCategory(category string) error {
	if category == "" || category == "." || category == ".." ||
		strings.ContainsAny(category, `/\`) || strings.ContainsRune(category, 0) {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidCategory, category)
	}
	return nil
}

func cleanName(original string) (string, error) {
	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(original, `\`, "/")))
	if name == "/" || name == "." || name == ".." || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidFilename, original)
	}
	return name, nil
}
