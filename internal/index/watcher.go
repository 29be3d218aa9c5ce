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

	"github.com/kedbin/ai-devops-journal/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "removed".
type EventCallback func(kind string, path string)

// Watch observes the archive root with fsnotify and keeps the index
// consistent with out-of-band changes. The pipeline is the only writer inside
// the process, but retention is an external policy: operators prune or
// restore artifacts directly on disk, and those changes must be reflected in
// the index without a restart.
//
// Remove and rename events are debounced into a reconciliation pass that
// drops index entries whose artifacts no longer exist.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
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
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
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
			reconcileRemovals(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New directories (e.g. a restored subject tree) must be watched.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleReconcile()
					indexDir(db, store, root, ev.Name, logger, cb)
					continue
				}
			}

			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(rel)
				if readErr != nil {
					continue
				}
				if err := indexArtifact(db, rel, data, time.Now()); err != nil {
					logger.Warn("watcher: index failed",
						slog.String("path", rel),
						slog.String("error", err.Error()))
					continue
				}
				if cb != nil {
					cb("created", rel)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if err := db.DeleteEntry(rel); err != nil {
					logger.Warn("watcher: delete failed",
						slog.String("path", rel),
						slog.String("error", err.Error()))
					continue
				}
				if cb != nil {
					cb("removed", rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcileRemovals drops index entries whose artifacts are gone from disk.
func reconcileRemovals(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	metas, err := store.List("")
	if err != nil {
		logger.Warn("watcher: reconcile list failed", slog.String("error", err.Error()))
		return
	}
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("watcher: reconcile checksums failed", slog.String("error", err.Error()))
		return
	}
	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteEntry(p); err != nil {
			logger.Warn("watcher: reconcile delete failed",
				slog.String("path", p),
				slog.String("error", err.Error()))
			continue
		}
		if cb != nil {
			cb("removed", p)
		}
	}
}

// indexDir indexes .md artifacts already present in a newly created directory.
func indexDir(db *DB, store storage.Provider, root, dir string, logger *slog.Logger, cb EventCallback) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return
	}
	metas, err := store.List(filepath.ToSlash(rel))
	if err != nil {
		return
	}
	for _, m := range metas {
		data, readErr := store.Read(m.Path)
		if readErr != nil {
			continue
		}
		if err := indexArtifact(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("watcher: index failed",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}
		if cb != nil {
			cb("created", m.Path)
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
