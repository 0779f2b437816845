package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/okrtrack/internal/apperr"
	"github.com/starford/okrtrack/internal/models"
)

const periodColumns = `id, name, start_date, end_date, is_active, created_at`

func scanPeriod(row interface{ Scan(...any) error }) (models.Period, error) {
	var (
		p                   models.Period
		start, end, created string
		active              int
	)
	if err := row.Scan(&p.ID, &p.Name, &start, &end, &active, &created); err != nil {
		return p, err
	}
	p.StartDate = parseDate(start)
	p.EndDate = parseDate(end)
	p.IsActive = active != 0
	p.CreatedAt = parseTime(created)
	return p, nil
}

// InsertPeriod stores a new period. Activation is handled by ActivatePeriod.
func (db *DB) InsertPeriod(p models.Period) error {
	_, err := db.conn.Exec(`
		INSERT INTO periods (id, name, start_date, end_date, is_active, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, p.ID, p.Name, formatDate(p.StartDate), formatDate(p.EndDate), formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: insert period: %w", err)
	}
	return nil
}

// UpdatePeriod replaces name and dates of an existing period.
func (db *DB) UpdatePeriod(p models.Period) error {
	res, err := db.conn.Exec(`
		UPDATE periods SET name = ?, start_date = ?, end_date = ? WHERE id = ?
	`, p.Name, formatDate(p.StartDate), formatDate(p.EndDate), p.ID)
	if err != nil {
		return fmt.Errorf("store: update period: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// GetPeriod returns a single period.
func (db *DB) GetPeriod(id string) (*models.Period, error) {
	p, err := scanPeriod(db.conn.QueryRow(`SELECT `+periodColumns+` FROM periods WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get period: %w", err)
	}
	return &p, nil
}

// ActivePeriod returns the active period, or apperr.ErrNoActivePeriod.
func (db *DB) ActivePeriod() (*models.Period, error) {
	p, err := scanPeriod(db.conn.QueryRow(`SELECT ` + periodColumns + ` FROM periods WHERE is_active = 1 LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNoActivePeriod
	}
	if err != nil {
		return nil, fmt.Errorf("store: active period: %w", err)
	}
	return &p, nil
}

// ListPeriods returns all periods, most recent start first.
func (db *DB) ListPeriods() ([]models.Period, error) {
	rows, err := db.conn.Query(`SELECT ` + periodColumns + ` FROM periods ORDER BY start_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list periods: %w", err)
	}
	defer rows.Close()

	var out []models.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ActivatePeriod marks id as the only active period.
func (db *DB) ActivatePeriod(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	if err := tx.QueryRow(`SELECT count(*) FROM periods WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("store: activate period: %w", err)
	}
	if exists == 0 {
		return apperr.ErrNotFound
	}
	if _, err := tx.Exec(`UPDATE periods SET is_active = (id = ?)`, id); err != nil {
		return fmt.Errorf("store: activate period: %w", err)
	}
	return tx.Commit()
}

// DeletePeriod removes a period with its objectives, key results and
// progress, plus the reflection index rows that reference it.
func (db *DB) DeletePeriod(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM periods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete period: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	if _, err := tx.Exec(`DELETE FROM reflections WHERE period_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete period reflections: %w", err)
	}
	if err := ftsPurge(tx); err != nil {
		return err
	}
	return tx.Commit()
}
