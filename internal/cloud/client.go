// Package cloud uploads snapshots and migrated files to the single object-store bucket.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/rs/zerolog"

	"ledgervault/internal/apperror"
	"ledgervault/internal/metrics"
	"ledgervault/internal/model"
	"ledgervault/internal/storage"
)

const (
	jsonContentType     = "application/json"
	defaultProbeTimeout = 5 * time.Second
)

// Client is the cloud backup client. A Client built without a store is valid:
// every upload fails fast with a ConfigurationError and Probe reports not ready.
type Client struct {
	store        storage.Storage
	reason       string
	prefix       string
	clock        clock.Clock
	log          zerolog.Logger
	metrics      *metrics.Metrics
	probeTimeout time.Duration

	mu   sync.Mutex
	last map[model.SnapshotType]int64
}

type Option func(*Client)

func WithClock(c clock.Clock) Option { return func(cl *Client) { cl.clock = c } }

func WithLogger(l zerolog.Logger) Option { return func(cl *Client) { cl.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(cl *Client) { cl.metrics = m } }

// WithSnapshotPrefix sets the key prefix snapshots are written under.
func WithSnapshotPrefix(p string) Option { return func(cl *Client) { cl.prefix = p } }

func WithProbeTimeout(d time.Duration) Option { return func(cl *Client) { cl.probeTimeout = d } }

// New returns a client writing to store.
func New(store storage.Storage, opts ...Option) *Client {
	c := &Client{
		store:        store,
		prefix:       "backups",
		clock:        clock.WallClock,
		log:          zerolog.Nop(),
		probeTimeout: defaultProbeTimeout,
		last:         make(map[model.SnapshotType]int64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewUnconfigured returns a client that rejects every call, reporting reason.
func NewUnconfigured(reason string, opts ...Option) *Client {
	c := New(nil, opts...)
	c.reason = reason
	return c
}

// Configured reports whether an object store is attached.
func (c *Client) Configured() bool {
	return c.store != nil
}

func (c *Client) notConfigured() error {
	reason := c.reason
	if reason == "" {
		reason = "object store client not initialized"
	}
	return apperror.NotConfigured(reason)
}

// Upload writes payload as a JSON object named name under the snapshot prefix.
// Re-uploading the same name overwrites the object.
func (c *Client) Upload(ctx context.Context, name string, payload []byte) error {
	if c.store == nil {
		return c.notConfigured()
	}
	key := path.Join(c.prefix, name)
	_, err := c.store.Put(ctx, key, bytes.NewReader(payload), storage.PutObjectOptions{
		Size:        int64(len(payload)),
		ContentType: jsonContentType,
	})
	if err != nil {
		return &apperror.CloudUploadError{Key: key, Err: err}
	}
	return nil
}

// NextName returns a fresh snapshot object name and its timestamp.
// Names of one type are strictly increasing within the process, even within one millisecond.
func (c *Client) NextName(t model.SnapshotType) (string, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ms := c.clock.Now().UnixMilli()
	if last := c.last[t]; ms <= last {
		ms = last + 1
	}
	c.last[t] = ms
	return fmt.Sprintf("%s_%d.json", t.ObjectPrefix(), ms), time.UnixMilli(ms).UTC()
}

// UploadSnapshot wraps payload in a BackupSnapshot, names it and uploads it.
func (c *Client) UploadSnapshot(ctx context.Context, t model.SnapshotType, payload any) (string, error) {
	if c.store == nil {
		c.metrics.SnapshotUpload(string(t), metrics.OutcomeFailure)
		return "", c.notConfigured()
	}

	name, ts := c.NextName(t)
	body, err := json.Marshal(model.BackupSnapshot{Type: t, Timestamp: ts, Payload: payload})
	if err != nil {
		c.metrics.SnapshotUpload(string(t), metrics.OutcomeFailure)
		return "", fmt.Errorf("encode %s snapshot: %w", t, err)
	}

	if err := c.Upload(ctx, name, body); err != nil {
		c.metrics.SnapshotUpload(string(t), metrics.OutcomeFailure)
		return "", err
	}

	c.metrics.SnapshotUpload(string(t), metrics.OutcomeSuccess)
	c.log.Debug().Str("snapshot", name).Int("bytes", len(body)).Msg("snapshot uploaded")
	return name, nil
}

// PutFile uploads raw file bytes under key, replacing any object already there.
func (c *Client) PutFile(ctx context.Context, key string, body []byte, contentType string) error {
	if c.store == nil {
		return c.notConfigured()
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := c.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: contentType,
	})
	if err != nil {
		return &apperror.CloudUploadError{Key: key, Err: err}
	}
	return nil
}

// VerifyFile reads back the object under key and checks that the bucket holds exactly want bytes.
func (c *Client) VerifyFile(ctx context.Context, key string, want int64) error {
	if c.store == nil {
		return c.notConfigured()
	}
	rc, info, err := c.store.Get(ctx, key)
	if err != nil {
		return &apperror.CloudUploadError{Key: key, Err: fmt.Errorf("verify: %w", err)}
	}
	rc.Close()
	if info.Size != want {
		return &apperror.CloudUploadError{Key: key, Err: fmt.Errorf("verify: stored %d bytes, want %d", info.Size, want)}
	}
	return nil
}

// Probe checks readiness within a bounded timeout. It never returns an error.
func (c *Client) Probe(ctx context.Context) model.CloudHealth {
	if c.store == nil {
		return model.CloudHealth{Error: c.notConfigured().Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	ready, err := c.store.BucketReady(ctx)
	if err != nil {
		return model.CloudHealth{ClientReady: true, Error: err.Error()}
	}
	if !ready {
		return model.CloudHealth{ClientReady: true, Error: fmt.Sprintf("bucket %s does not exist", c.store.Bucket())}
	}
	return model.CloudHealth{ClientReady: true, StorageReady: true}
}
