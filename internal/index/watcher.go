package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/content"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/storage"
)

// DefaultDebounce is the quiet period between the last file event and
// the resync it triggers.
const DefaultDebounce = 200 * time.Millisecond

// EventCallback is called for each change applied by a watcher-driven
// sync.
type EventCallback func(c Change)

// Watch watches the content directory and resyncs the index after file
// events settle, until ctx is cancelled. Directories created at runtime
// are added to the watch list.
func Watch(ctx context.Context, db PostIndex, store content.Store, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(DefaultDebounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(DefaultDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			resync(ctx, db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}
			if !storage.IsContentFile(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// Poll resyncs the index every interval until ctx is cancelled. It
// serves stores without change notifications, such as the CMS.
func Poll(ctx context.Context, db PostIndex, store content.Store, interval time.Duration, logger *slog.Logger, cb EventCallback) {
	t := time.NewTicker(interval)
	defer t.Stop()
	logger.Info("poller: started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("poller: stopped")
			return
		case <-t.C:
			resync(ctx, db, store, logger, cb)
		}
	}
}

func resync(ctx context.Context, db PostIndex, store content.Store, logger *slog.Logger, cb EventCallback) {
	changes, err := Sync(ctx, db, store, logger)
	if err != nil {
		logger.Warn("resync failed", slog.String("error", err.Error()))
		return
	}
	if len(changes) > 0 {
		logger.Info("index updated", slog.Int("changes", len(changes)))
	}
	if cb == nil {
		return
	}
	for _, c := range changes {
		cb(c)
	}
}

// addDirsRecursive adds root and its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
