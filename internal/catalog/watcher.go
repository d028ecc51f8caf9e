package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 200 * time.Millisecond

// ReloadCallback is called after the catalog content changed on disk.
type ReloadCallback func(checksum string)

// Watch observes the catalog file at path and reloads c when it changes,
// until ctx is cancelled. The parent directory is watched so that editors
// replacing the file through a rename are picked up. Bursts of events are
// collapsed into one reload. A file that fails to parse or validate leaves
// the current content in place.
func Watch(ctx context.Context, c *Catalog, path string, logger *slog.Logger, cb ReloadCallback) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("catalog watcher: started", slog.String("path", abs))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(reloadDelay)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(reloadDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("catalog watcher: stopped")
			return nil

		case <-reloadCh:
			reload(c, abs, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("catalog watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func reload(c *Catalog, path string, logger *slog.Logger, cb ReloadCallback) {
	raw, err := os.ReadFile(path)
	if err != nil {
		// Removed or mid-rename; the next event retries.
		logger.Warn("catalog watcher: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	changed, err := c.Replace(raw)
	if err != nil {
		logger.Warn("catalog watcher: reload rejected", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if !changed {
		logger.Debug("catalog watcher: content unchanged", slog.String("path", path))
		return
	}
	sum := c.Checksum()
	logger.Info("catalog watcher: reloaded", slog.String("path", path), slog.String("checksum", sum))
	if cb != nil {
		cb(sum)
	}
}
