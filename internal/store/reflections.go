package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/okrtrack/internal/apperr"
	"github.com/starford/okrtrack/internal/models"
)

const reflectionColumns = `path, period_id, week, title, confidence, tags, checksum, updated_at`

func scanReflection(row interface{ Scan(...any) error }) (models.Reflection, error) {
	var (
		r               models.Reflection
		tags, updatedAt string
	)
	if err := row.Scan(&r.Path, &r.PeriodID, &r.Week, &r.Title, &r.Confidence, &tags, &r.Checksum, &updatedAt); err != nil {
		return r, err
	}
	_ = json.Unmarshal([]byte(tags), &r.Tags)
	if r.Tags == nil {
		r.Tags = []string{}
	}
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

// UpsertReflection indexes a reflection file and its body.
func (db *DB) UpsertReflection(r models.Reflection, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.Exec(`
		INSERT INTO reflections (path, period_id, week, title, confidence, tags, body, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			period_id  = excluded.period_id,
			week       = excluded.week,
			title      = excluded.title,
			confidence = excluded.confidence,
			tags       = excluded.tags,
			body       = excluded.body,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, r.Path, r.PeriodID, r.Week, r.Title, r.Confidence, string(tagsJSON), body, r.Checksum, formatTime(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: upsert reflection: %w", err)
	}
	if err := ftsUpsert(tx, kindReflection, r.Path, r.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteReflection removes a reflection from the index.
func (db *DB) DeleteReflection(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM reflections WHERE path = ?`, path); err != nil {
		return fmt.Errorf("store: delete reflection: %w", err)
	}
	if err := ftsPurge(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// GetReflection returns the index row for path.
func (db *DB) GetReflection(path string) (*models.Reflection, error) {
	r, err := scanReflection(db.conn.QueryRow(`SELECT `+reflectionColumns+` FROM reflections WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get reflection: %w", err)
	}
	return &r, nil
}

// ListReflections returns a period's reflections ordered by week.
func (db *DB) ListReflections(periodID string) ([]models.Reflection, error) {
	rows, err := db.conn.Query(`SELECT `+reflectionColumns+` FROM reflections WHERE period_id = ? ORDER BY week, path`, periodID)
	if err != nil {
		return nil, fmt.Errorf("store: list reflections: %w", err)
	}
	defer rows.Close()

	var out []models.Reflection
	for rows.Next() {
		r, err := scanReflection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReflectionChecksum returns the indexed checksum for path, or "" if the
// path is not indexed.
func (db *DB) ReflectionChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM reflections WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: reflection checksum: %w", err)
	}
	return cs, nil
}

// AllReflectionChecksums maps every indexed path to its checksum.
func (db *DB) AllReflectionChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM reflections`)
	if err != nil {
		return nil, fmt.Errorf("store: all reflection checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
