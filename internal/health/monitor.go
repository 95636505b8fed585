// Package health reports on the local upload root and cloud storage readiness.
package health

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"ledgervault/internal/model"
)

const bytesPerMB = 1024 * 1024

// CloudProber reports cloud readiness without returning errors.
type CloudProber interface {
	Probe(ctx context.Context) model.CloudHealth
}

// Monitor computes storage health on demand. It holds no mutable state.
type Monitor struct {
	root  string
	cloud CloudProber
	log   zerolog.Logger
	now   func() time.Time
	usage func(ctx context.Context, path string) (*disk.UsageStat, error)
}

func NewMonitor(root string, cloud CloudProber, log zerolog.Logger) *Monitor {
	return &Monitor{
		root:  root,
		cloud: cloud,
		log:   log,
		now:   time.Now,
		usage: disk.UsageWithContext,
	}
}

// Report never fails: unavailable parts are reported as such.
func (m *Monitor) Report(ctx context.Context) model.StorageHealthReport {
	report := model.StorageHealthReport{
		Local:     m.local(ctx),
		CheckedAt: m.now().UTC(),
	}
	if m.cloud != nil {
		report.Cloud = m.cloud.Probe(ctx)
	} else {
		report.Cloud = model.CloudHealth{Error: "cloud storage not configured"}
	}
	return report
}

func (m *Monitor) local(ctx context.Context) model.LocalHealth {
	h := model.LocalHealth{Root: m.root}

	fi, err := os.Stat(m.root)
	if err != nil || !fi.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.log.Warn().Err(err).Str("root", m.root).Msg("upload root not accessible")
		}
		return h
	}
	h.Available = true

	// WalkDir does not follow symlinks.
	_ = filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			h.SkippedEntries++
			m.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() && path != m.root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			h.SkippedEntries++
			m.log.Warn().Err(err).Str("path", path).Msg("skipping entry that failed to stat")
			return nil
		}
		h.TotalFiles++
		h.TotalSizeBytes += info.Size()
		return nil
	})

	h.TotalSizeMB = roundMB(h.TotalSizeBytes)
	h.HumanSize = humanize.IBytes(uint64(h.TotalSizeBytes))

	if u, err := m.usage(ctx, m.root); err != nil {
		m.log.Warn().Err(err).Str("root", m.root).Msg("disk usage unavailable")
	} else {
		h.FreeSpaceMB = roundMB(int64(u.Free))
	}
	return h
}

// roundMB converts bytes to megabytes with two decimals.
func roundMB(b int64) float64 {
	return float64(int64(float64(b)/bytesPerMB*100+0.5)) / 100
}
