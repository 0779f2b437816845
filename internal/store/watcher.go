package store

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/okrtrack/internal/journal"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the journal root and keeps the
// reflection index in step with hand edits until ctx is cancelled. It calls
// cb (if non-nil) after each successful index mutation.
//
// Period directories created at runtime are added to the watch list. Rename
// events trigger a debounced reconciliation pass.
func Watch(ctx context.Context, db *DB, j journal.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	notify := func(kind, rel string) {
		if cb != nil {
			cb(kind, rel)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, j, logger, cb)

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
					// Files may land before the directory is watched.
					scheduleReconcile()
					continue
				}
			}

			if !strings.HasSuffix(ev.Name, ".md") || strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := j.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				if idxErr := IndexReflection(db, rel, data, time.Now()); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path only; the new path shows up as
				// a Create, and the reconcile pass catches anything missed.
				if delErr := db.DeleteReflection(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				notify("deleted", rel)
				if ev.Op&fsnotify.Rename != 0 {
					scheduleReconcile()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index rows without a file on disk and indexes files
// whose checksum differs from the index.
func reconcile(db *DB, j journal.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllReflectionChecksums()
	if err != nil {
		logger.Warn("reconcile: checksums failed", slog.String("error", err.Error()))
		return
	}
	files, err := j.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(files))
	for _, f := range files {
		disk[f.Path] = f.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteReflection(p); err == nil {
			logger.Debug("reconcile: removed stale", slog.String("path", p))
			if cb != nil {
				cb("deleted", p)
			}
		}
	}

	for p, cs := range disk {
		old, known := checksums[p]
		if old == cs {
			continue
		}
		data, err := j.Read(p)
		if err != nil {
			continue
		}
		if err := IndexReflection(db, p, data, time.Now()); err != nil {
			continue
		}
		logger.Debug("reconcile: indexed", slog.String("path", p))
		if cb != nil {
			kind := "updated"
			if !known {
				kind = "created"
			}
			cb(kind, p)
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
