package scratch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultWorkspaceTTL    = time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// StartJanitor sweeps abandoned workspaces every interval until ctx is done.
func (m *Manager) StartJanitor(ctx context.Context, log *slog.Logger, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if ttl <= 0 {
		ttl = DefaultWorkspaceTTL
	}
	if log == nil {
		log = slog.Default()
	}
	go m.cleanupLoop(ctx, log, interval, ttl)
}

func (m *Manager) cleanupLoop(ctx context.Context, log *slog.Logger, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := m.Sweep(ttl)
			if err != nil {
				log.Error("sweep scratch dir", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("removed stale workspaces", "count", removed)
			}
		}
	}
}

// Sweep deletes workspace directories last modified more than ttl ago and
// reports how many were removed. Loose files in the root are left alone.
func (m *Manager) Sweep(ttl time.Duration) (int, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-ttl)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// raced with Release
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.root, entry.Name())); err != nil {
			slog.Warn("remove stale workspace failed", "dir", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
