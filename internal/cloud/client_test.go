package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgervault/internal/apperror"
	"ledgervault/internal/model"
	"ledgervault/internal/storage"
	storeMocks "ledgervault/internal/storage/mocks"
)

var epoch = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func TestClient_NotConfigured(t *testing.T) {
	c := NewUnconfigured("minio endpoint missing")
	ctx := context.Background()

	assert.False(t, c.Configured())

	err := c.Upload(ctx, "db_backup_1.json", []byte(`{}`))
	assert.True(t, apperror.IsConfiguration(err))
	assert.ErrorIs(t, err, apperror.ErrNotConfigured)

	_, err = c.UploadSnapshot(ctx, model.SnapshotDatabaseBackup, model.DatabaseSummary{})
	assert.True(t, apperror.IsConfiguration(err))

	err = c.PutFile(ctx, "files/docs/a.txt", []byte("a"), "")
	assert.True(t, apperror.IsConfiguration(err))

	h := c.Probe(ctx)
	assert.False(t, h.ClientReady)
	assert.False(t, h.StorageReady)
	assert.Contains(t, h.Error, "minio endpoint missing")
}

func TestClient_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("writes json under prefix", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		c := New(mStore, WithSnapshotPrefix("dr"))
		payload := []byte(`{"type":"database_backup"}`)

		mStore.On("Put", ctx, "dr/db_backup_42.json", mock.Anything, storage.PutObjectOptions{
			Size:        int64(len(payload)),
			ContentType: "application/json",
		}).Return(storage.ObjectInfo{Key: "dr/db_backup_42.json"}, nil).Once()

		require.NoError(t, c.Upload(ctx, "db_backup_42.json", payload))
		mStore.AssertExpectations(t)
	})

	t.Run("store failure is a cloud upload error", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		c := New(mStore)

		mStore.On("Put", ctx, "backups/x.json", mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, errors.New("connection refused")).Once()

		err := c.Upload(ctx, "x.json", []byte(`{}`))

		assert.True(t, apperror.IsCloudUpload(err))
		assert.EqualError(t, err, "cloud upload backups/x.json: connection refused")
		mStore.AssertExpectations(t)
	})
}

func TestClient_NextName_StrictlyIncreasing(t *testing.T) {
	clk := testclock.NewClock(epoch)
	c := New(new(storeMocks.MockStorage), WithClock(clk))

	first, ts1 := c.NextName(model.SnapshotDatabaseBackup)
	second, ts2 := c.NextName(model.SnapshotDatabaseBackup)
	other, _ := c.NextName(model.SnapshotFileMetadata)

	assert.Equal(t, "db_backup_1772357400000.json", first)
	assert.Equal(t, "db_backup_1772357400001.json", second)
	assert.True(t, ts2.After(ts1))
	assert.Equal(t, "file_metadata_1772357400000.json", other)

	clk.Advance(time.Second)
	third, _ := c.NextName(model.SnapshotDatabaseBackup)
	assert.Equal(t, "db_backup_1772357401000.json", third)
}

func TestClient_UploadSnapshot(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	c := New(mStore, WithClock(testclock.NewClock(epoch)))

	var body []byte
	mStore.On("Put", ctx, "backups/db_backup_1772357400000.json", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			b, err := io.ReadAll(args.Get(2).(io.Reader))
			require.NoError(t, err)
			body = b
		}).
		Return(storage.ObjectInfo{}, nil).Once()

	summary := model.NewDatabaseSummary(
		model.TableCounts{Transactions: 5, Users: 2},
		model.LedgerTotals{Income: 100, Expense: 40},
	)
	name, err := c.UploadSnapshot(ctx, model.SnapshotDatabaseBackup, summary)

	require.NoError(t, err)
	assert.Equal(t, "db_backup_1772357400000.json", name)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "database_backup", doc["type"])
	payload := doc["payload"].(map[string]any)
	assert.Equal(t, float64(5), payload["transactions"])
	assert.Equal(t, float64(60), payload["netBalance"])
	mStore.AssertExpectations(t)
}

func TestClient_PutFile(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	c := New(mStore)

	mStore.On("Put", ctx, "files/docs/1_a.txt", mock.Anything, storage.PutObjectOptions{
		Size:        3,
		ContentType: "application/octet-stream",
	}).Return(storage.ObjectInfo{}, nil).Once()
	mStore.On("Put", ctx, "files/docs/2_b.txt", mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, context.DeadlineExceeded).Once()

	assert.NoError(t, c.PutFile(ctx, "files/docs/1_a.txt", []byte("abc"), ""))

	err := c.PutFile(ctx, "files/docs/2_b.txt", []byte("b"), "text/plain")
	assert.True(t, apperror.IsCloudUpload(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	mStore.AssertExpectations(t)
}

func TestClient_VerifyFile(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	c := New(mStore)

	mStore.On("Get", ctx, "files/docs/1_a.txt").
		Return(io.NopCloser(strings.NewReader("abc")), storage.ObjectInfo{Key: "files/docs/1_a.txt", Size: 3}, nil).Twice()
	mStore.On("Get", ctx, "files/docs/2_b.txt").
		Return(nil, storage.ObjectInfo{}, errors.New("The specified key does not exist.")).Once()

	assert.NoError(t, c.VerifyFile(ctx, "files/docs/1_a.txt", 3))

	err := c.VerifyFile(ctx, "files/docs/1_a.txt", 4)
	assert.True(t, apperror.IsCloudUpload(err))
	assert.Contains(t, err.Error(), "stored 3 bytes, want 4")

	err = c.VerifyFile(ctx, "files/docs/2_b.txt", 1)
	assert.True(t, apperror.IsCloudUpload(err))
	assert.Contains(t, err.Error(), "does not exist")

	assert.True(t, apperror.IsConfiguration(NewUnconfigured("no endpoint").VerifyFile(ctx, "k", 1)))
	mStore.AssertExpectations(t)
}

func TestClient_Probe(t *testing.T) {
	ctx := context.Background()

	t.Run("ready", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("BucketReady", mock.Anything).Return(true, nil).Once()

		h := New(mStore).Probe(ctx)

		assert.Equal(t, model.CloudHealth{ClientReady: true, StorageReady: true}, h)
	})

	t.Run("missing bucket", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("BucketReady", mock.Anything).Return(false, nil).Once()
		mStore.On("Bucket").Return("ledger").Once()

		h := New(mStore).Probe(ctx)

		assert.True(t, h.ClientReady)
		assert.False(t, h.StorageReady)
		assert.Equal(t, "bucket ledger does not exist", h.Error)
	})

	t.Run("unreachable", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("BucketReady", mock.Anything).Return(false, errors.New("dial tcp: i/o timeout")).Once()

		h := New(mStore).Probe(ctx)

		assert.True(t, h.ClientReady)
		assert.False(t, h.StorageReady)
		assert.Contains(t, h.Error, "i/o timeout")
	})
}
