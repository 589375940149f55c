package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
)

// StartLogRetentionCleaner removes *.log files older than retentionDays from logDir,
// once immediately and then every 24 hours until ctx is done.
func StartLogRetentionCleaner(ctx context.Context, retentionDays int, logDir string) {
	if retentionDays <= 0 {
		Logger.Debug("log retention disabled", zap.Int("log_retention_days", retentionDays))
		return
	}
	if strings.TrimSpace(logDir) == "" {
		Logger.Warn("log retention enabled but log directory is empty", zap.Int("log_retention_days", retentionDays))
		return
	}

	purge := func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
		paths, err := expiredLogFiles(logDir, cutoff)
		if err != nil {
			Logger.Warn("log retention cleanup failed", zap.Error(err))
			return
		}
		for _, p := range paths {
			if err := os.Remove(p); err != nil {
				Logger.Warn("failed to delete expired log file", zap.String("log_path", p), zap.Error(err))
				continue
			}
			Logger.Info("deleted expired log file", zap.String("log_path", p))
		}
	}

	purge()
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purge()
			}
		}
	}()
}

// expiredLogFiles lists the .log files in dir last modified before cutoff.
func expiredLogFiles(dir string, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read log directory")
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().UTC().Before(cutoff) {
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	return out, nil
}
