package store

import (
	"fmt"

	"github.com/starford/okrtrack/internal/models"
)

func scanProgress(row interface{ Scan(...any) error }) (models.WeeklyProgress, error) {
	var (
		p              models.WeeklyProgress
		week, recorded string
		status         string
	)
	if err := row.Scan(&p.ID, &p.KeyResultID, &week, &p.Value, &status, &p.Note, &recorded); err != nil {
		return p, err
	}
	p.WeekStartDate = parseDate(week)
	p.Status = models.Status(status)
	p.RecordedAt = parseTime(recorded)
	return p, nil
}

// InsertProgress appends a check-in. Entries are never updated in place; a
// later RecordedAt for the same week supersedes earlier ones on read.
func (db *DB) InsertProgress(p models.WeeklyProgress) error {
	_, err := db.conn.Exec(`
		INSERT INTO weekly_progress (id, key_result_id, week_start_date, value, status, note, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.KeyResultID, formatDate(p.WeekStartDate), p.Value, string(p.Status), p.Note, formatTime(p.RecordedAt))
	if err != nil {
		return fmt.Errorf("store: insert progress: %w", err)
	}
	return nil
}

// ListProgress returns every check-in of a key result in insertion order.
func (db *DB) ListProgress(krID string) ([]models.WeeklyProgress, error) {
	rows, err := db.conn.Query(`
		SELECT id, key_result_id, week_start_date, value, status, note, recorded_at
		FROM weekly_progress WHERE key_result_id = ? ORDER BY rowid
	`, krID)
	if err != nil {
		return nil, fmt.Errorf("store: list progress: %w", err)
	}
	defer rows.Close()

	var out []models.WeeklyProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (db *DB) progressForPeriod(periodID string) (map[string][]models.WeeklyProgress, error) {
	rows, err := db.conn.Query(`
		SELECT w.id, w.key_result_id, w.week_start_date, w.value, w.status, w.note, w.recorded_at
		FROM weekly_progress w
		JOIN key_results k ON k.id = w.key_result_id
		JOIN objectives o ON o.id = k.objective_id
		WHERE o.period_id = ?
		ORDER BY w.rowid
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("store: list period progress: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.WeeklyProgress)
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out[p.KeyResultID] = append(out[p.KeyResultID], p)
	}
	return out, rows.Err()
}
