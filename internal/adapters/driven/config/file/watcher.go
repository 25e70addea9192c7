package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/tablesync/internal/logger"
)

// reloadDelay coalesces the burst of events an editor save produces.
const reloadDelay = 200 * time.Millisecond

// Watch reloads the configuration whenever the file changes, calling
// onReload after each successful reload. A file that fails to parse is
// logged and the previous configuration stays active, as does one that
// was removed or renamed away.
// Watch blocks until ctx is done.
func (s *ConfigStore) Watch(ctx context.Context, onReload func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file by rename.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(s.filePath), err)
	}

	name := filepath.Clean(s.filePath)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(reloadDelay)
			fire = timer.C

		case <-fire:
			fire = nil
			if _, err := os.Stat(s.filePath); errors.Is(err, fs.ErrNotExist) {
				logger.Warn("Config file %s is gone, keeping previous configuration", s.filePath)
				continue
			}
			if err := s.Load(); err != nil {
				logger.Error("Config reload failed, keeping previous configuration: %v", err)
				continue
			}
			logger.Info("Reloaded configuration from %s", s.filePath)
			if onReload != nil {
				onReload(s.Config())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher: %v", err)
		}
	}
}
