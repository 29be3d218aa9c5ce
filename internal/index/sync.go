package index

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kedbin/ai-devops-journal/internal/checksum"
	"github.com/kedbin/ai-devops-journal/internal/parser"
	"github.com/kedbin/ai-devops-journal/internal/storage"
)

// Sync walks the archive and brings the index up to date:
//   - new/changed artifacts are parsed and upserted
//   - artifacts removed from disk (external retention) are dropped from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexArtifact(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove entries whose artifacts are gone.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteEntry(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexArtifact parses a stored document and upserts it into the DB.
func indexArtifact(db *DB, path string, data []byte, createdAt time.Time) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	row := EntryRow{
		Path:      path,
		Subject:   subjectFromPath(path),
		Title:     res.Title,
		Date:      res.Date,
		Tags:      res.Tags,
		Checksum:  checksum.Sum(data),
		CreatedAt: createdAt,
	}
	return db.UpsertEntry(row, res.Body)
}

// subjectFromPath extracts the subject identifier from the artifact layout
// uploads/<subject>/<file>.md. Unknown layouts yield an empty subject.
func subjectFromPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) >= 3 && parts[0] == "uploads" {
		return parts[1]
	}
	return ""
}
