package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/jhump/attrdef/processor"
)

// settle is how long to wait after a change before re-running, so that a
// burst of writes from an editor results in a single run.
const settle = 200 * time.Millisecond

// watchPackages watches the source directories of the given packages and
// calls run whenever a Go source file changes. Generated files are ignored.
// It returns when stop is closed or the watcher fails.
func watchPackages(pkgPaths []string, logger zerolog.Logger, run func() error, stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, pkgPath := range pkgPaths {
		dir, err := processor.PackageDir(pkgPath)
		if err != nil {
			return err
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
		logger.Info().Str("package", pkgPath).Str("dir", dir).Msg("watching for changes")
	}

	var timer <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isWatchedSource(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("source file changed")
				timer = time.After(settle)
			}

		case <-timer:
			timer = nil
			if err := run(); err != nil {
				logger.Error().Err(err).Msg("processing failed")
			} else {
				logger.Info().Msg("processing complete")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("file watcher error")

		case <-stop:
			return nil
		}
	}
}

func isWatchedSource(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".go") && !strings.HasSuffix(base, ".attrdef.go")
}
