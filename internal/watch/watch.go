// Package watch re-reads a single file once writes to it settle.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/codalotl/editview/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// Watcher watches one file. Each write, create, or rename of the file (re)starts a settle timer; when the timer fires, OnChange gets the file's content as of
// that moment. Changes that arrive while a timer is pending replace it, so only the last of a burst is delivered.
type Watcher struct {
	path     string
	delay    time.Duration
	onChange func(content []byte)
	logger   *slog.Logger
}

// New returns a Watcher for path that waits delay after the last change before calling onChange. A nil logger discards.
func New(path string, delay time.Duration, logger *slog.Logger, onChange func(content []byte)) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch: empty path")
	}
	if delay < 0 {
		return nil, fmt.Errorf("watch: negative settle delay %s", delay)
	}
	if onChange == nil {
		return nil, errors.New("watch: nil callback")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	return &Watcher{path: abs, delay: delay, onChange: onChange, logger: logging.OrDiscard(logger)}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers the file's current content (if it exists), then watches until ctx is done. OnChange is always called from Run's goroutine.
//
// The parent directory is watched rather than the file so that editors and tools that save by renaming a temp file over it are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}

	w.deliver()

	var timer *time.Timer
	var timerC <-chan time.Time

	stopTimer := func() {
		if timer == nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer, timerC = nil, nil
	}

	armTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.delay)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.delay)
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				stopTimer()
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.logger.Debug("watch: change", slog.String("path", w.path), slog.String("op", ev.Op.String()))
				armTimer()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				stopTimer()
				return nil
			}
			w.logger.Warn("watch: watcher error", slog.Any("err", err))
		case <-timerC:
			timer, timerC = nil, nil
			w.deliver()
		}
	}
}

func (w *Watcher) deliver() {
	content, err := os.ReadFile(w.path)
	if err != nil {
		// Missing is normal between a rename-away and the next create.
		w.logger.Debug("watch: read failed", slog.String("path", w.path), slog.Any("err", err))
		return
	}
	w.onChange(content)
}
