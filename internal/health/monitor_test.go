package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgervault/internal/model"
)

type stubProber struct{ health model.CloudHealth }

func (s stubProber) Probe(context.Context) model.CloudHealth { return s.health }

func fixedUsage(free uint64) func(context.Context, string) (*disk.UsageStat, error) {
	return func(context.Context, string) (*disk.UsageStat, error) {
		return &disk.UsageStat{Free: free}, nil
	}
}

func TestReport_CountsFilesRecursively(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "receipts", "2026"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "receipts", "a.pdf"), make([]byte, 1024*1024), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "receipts", "2026", "b.pdf"), make([]byte, 512*1024), 0o644))

	m := NewMonitor(root, stubProber{model.CloudHealth{ClientReady: true, StorageReady: true}}, zerolog.Nop())
	m.usage = fixedUsage(10 * 1024 * 1024)

	r := m.Report(context.Background())

	assert.True(t, r.Local.Available)
	assert.EqualValues(t, 2, r.Local.TotalFiles)
	assert.EqualValues(t, 1536*1024, r.Local.TotalSizeBytes)
	assert.Equal(t, 1.5, r.Local.TotalSizeMB)
	assert.Equal(t, "1.5 MiB", r.Local.HumanSize)
	assert.Equal(t, 10.0, r.Local.FreeSpaceMB)
	assert.True(t, r.Cloud.ClientReady)
	assert.True(t, r.Cloud.StorageReady)
	assert.False(t, r.CheckedAt.IsZero())
}

func TestReport_MissingRoot(t *testing.T) {
	m := NewMonitor(filepath.Join(t.TempDir(), "absent"), stubProber{}, zerolog.Nop())

	r := m.Report(context.Background())

	assert.False(t, r.Local.Available)
	assert.Zero(t, r.Local.TotalFiles)
	assert.False(t, r.Cloud.StorageReady)
}

func TestReport_SymlinkLoopIsNotFollowed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("abc"), 0o644))
	if err := os.Symlink(root, filepath.Join(root, "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	m := NewMonitor(root, nil, zerolog.Nop())
	m.usage = fixedUsage(0)

	r := m.Report(context.Background())

	assert.EqualValues(t, 1, r.Local.TotalFiles)
	assert.EqualValues(t, 3, r.Local.TotalSizeBytes)
	assert.Equal(t, "cloud storage not configured", r.Cloud.Error)
}

func TestReport_DiskUsageFailureKeepsLocalStats(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("abc"), 0o644))

	m := NewMonitor(root, stubProber{}, zerolog.Nop())
	m.usage = func(context.Context, string) (*disk.UsageStat, error) { return nil, errors.New("statfs failed") }

	r := m.Report(context.Background())

	assert.True(t, r.Local.Available)
	assert.EqualValues(t, 1, r.Local.TotalFiles)
	assert.Zero(t, r.Local.FreeSpaceMB)
}
