package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/loop-guard/internal/logger"
)

// reloadDebounce collapses the burst of events editors produce on save.
const reloadDebounce = 100 * time.Millisecond

// Watch reloads the settings file whenever it changes and passes every valid
// result to onChange. Invalid files are logged and skipped so the previous
// settings stay in effect. Watch blocks until ctx is canceled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve settings path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	// Watch the directory: editors replace files by rename, which drops a
	// watch placed on the file itself.
	if err = watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	logger.InfoKV(ctx, "Watching settings file", "path", target)

	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			fire = time.After(reloadDebounce)
		case <-fire:
			fire = nil

			cfg, err := Load(target)
			if err != nil {
				logger.ErrorKV(ctx, "Settings reload failed, keeping previous settings", "path", target, "error", err)
				continue
			}

			logger.InfoKV(ctx, "Settings reloaded", "path", target, "threshold", cfg.Guard.Threshold)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorKV(ctx, "Settings watcher error", "error", err)
		}
	}
}
