package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/recordhub/recordhub-cli/internal/logger"
)

// Watch watches the config directory and invokes onChange after every
// relevant change: an edit to config.toml (reloaded first) or to the
// sources file, which is re-read per operation and only needs the
// notification. It blocks until the context is cancelled. Editors often
// replace files instead of writing in place, so the parent directory is
// watched rather than the files themselves.
func (s *ConfigStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	sourcesPath := filepath.Join(dir, sourcesFileName)

	logger.Debug("watching config directory: %s", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			switch filepath.Clean(event.Name) {
			case s.filePath:
				if err := s.Load(); err != nil {
					logger.Warn("reloading config: %v", err)
					continue
				}
				logger.Debug("config reloaded")
			case sourcesPath:
				logger.Debug("sources file changed")
			default:
				continue
			}
			if onChange != nil {
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher: %v", err)
		}
	}
}
