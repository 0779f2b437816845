package store

import (
	"log/slog"
	"time"

	"github.com/starford/okrtrack/internal/checksum"
	"github.com/starford/okrtrack/internal/journal"
	"github.com/starford/okrtrack/internal/models"
	"github.com/starford/okrtrack/internal/parser"
)

// Sync walks the journal and brings the reflection index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, j journal.Provider, logger *slog.Logger) error {
	files, err := j.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllReflectionChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}

		if checksums[f.Path] == f.Checksum {
			continue
		}

		data, err := j.Read(f.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexReflection(db, f.Path, data, f.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", f.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", f.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteReflection(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexReflection parses a journal file and upserts it. Period and week come
// from the frontmatter and fall back to the file's location in the journal.
func IndexReflection(db *DB, path string, data []byte, modTime time.Time) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	r := models.Reflection{
		Path:       path,
		PeriodID:   res.Frontmatter.Period,
		Week:       res.Frontmatter.Week,
		Title:      res.Title,
		Confidence: res.Frontmatter.Confidence,
		Tags:       res.Tags,
		Checksum:   checksum.Sum(data),
		UpdatedAt:  modTime,
	}
	if periodID, week, ok := journal.SplitReflectionPath(path); ok {
		if r.PeriodID == "" {
			r.PeriodID = periodID
		}
		if r.Week == 0 {
			r.Week = week
		}
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	return db.UpsertReflection(r, res.Body)
}
