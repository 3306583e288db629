// Package configwatch reports changes to a single configuration file.
package configwatch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jobtrackr/jobtrackr/internal/checksum"
)

const debounce = 200 * time.Millisecond

// ChangeFunc receives the new file contents.
type ChangeFunc func(data []byte)

// Watch watches path until ctx is cancelled and calls onChange with the
// file contents whenever they change.
//
// The parent directory is watched rather than the file itself, so editors
// that save by writing a temp file and renaming it over the original are
// handled. Bursts of events are debounced, and a reload whose content hashes
// the same as the last one is not reported.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange ChangeFunc) error {
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

	last := ""
	if data, err := os.ReadFile(abs); err == nil {
		last = checksum.Sum(data)
	}

	logger.Info("config watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-timerCh:
			data, readErr := os.ReadFile(abs)
			if readErr != nil {
				logger.Warn("config watcher: read failed",
					slog.String("path", abs),
					slog.String("error", readErr.Error()))
				continue
			}
			sum := checksum.Sum(data)
			if sum == last {
				continue
			}
			last = sum
			logger.Debug("config watcher: changed", slog.String("path", abs))
			onChange(data)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
