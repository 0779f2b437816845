package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/okrtrack/internal/apperr"
	"github.com/starford/okrtrack/internal/models"
)

const (
	objectiveColumns = `id, period_id, title, description, position, created_at`
	keyResultColumns = `id, objective_id, title, target_value, unit, target_mode, weekly_targets, created_at`
)

func scanObjective(row interface{ Scan(...any) error }) (models.Objective, error) {
	var (
		o       models.Objective
		created string
	)
	if err := row.Scan(&o.ID, &o.PeriodID, &o.Title, &o.Description, &o.Position, &created); err != nil {
		return o, err
	}
	o.CreatedAt = parseTime(created)
	return o, nil
}

func scanKeyResult(row interface{ Scan(...any) error }) (models.KeyResult, error) {
	var (
		kr      models.KeyResult
		weekly  sql.NullString
		created string
	)
	if err := row.Scan(&kr.ID, &kr.ObjectiveID, &kr.Title, &kr.TargetValue, &kr.Unit, &kr.TargetMode, &weekly, &created); err != nil {
		return kr, err
	}
	if weekly.Valid && weekly.String != "" {
		// A corrupt array reads as absent; the engine then falls back to linear.
		_ = json.Unmarshal([]byte(weekly.String), &kr.WeeklyTargets)
	}
	kr.CreatedAt = parseTime(created)
	return kr, nil
}

func encodeTargets(targets []float64) sql.NullString {
	if len(targets) == 0 {
		return sql.NullString{}
	}
	b, _ := json.Marshal(targets)
	return sql.NullString{String: string(b), Valid: true}
}

// UpsertObjective inserts or updates an objective.
func (db *DB) UpsertObjective(o models.Objective) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO objectives (id, period_id, title, description, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			description = excluded.description,
			position    = excluded.position
	`, o.ID, o.PeriodID, o.Title, o.Description, o.Position, formatTime(o.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: upsert objective: %w", err)
	}
	if err := ftsUpsert(tx, kindObjective, o.ID, o.Title, o.Description); err != nil {
		return err
	}
	return tx.Commit()
}

// GetObjective returns an objective without its key results.
func (db *DB) GetObjective(id string) (*models.Objective, error) {
	o, err := scanObjective(db.conn.QueryRow(`SELECT `+objectiveColumns+` FROM objectives WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get objective: %w", err)
	}
	return &o, nil
}

// DeleteObjective removes an objective and, by cascade, its key results.
func (db *DB) DeleteObjective(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM objectives WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete objective: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	if err := ftsPurge(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertKeyResult inserts or updates a key result.
func (db *DB) UpsertKeyResult(kr models.KeyResult) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO key_results (id, objective_id, title, target_value, unit, target_mode, weekly_targets, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title          = excluded.title,
			target_value   = excluded.target_value,
			unit           = excluded.unit,
			target_mode    = excluded.target_mode,
			weekly_targets = excluded.weekly_targets
	`, kr.ID, kr.ObjectiveID, kr.Title, kr.TargetValue, kr.Unit, kr.TargetMode, encodeTargets(kr.WeeklyTargets), formatTime(kr.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: upsert key result: %w", err)
	}
	if err := ftsUpsert(tx, kindKeyResult, kr.ID, kr.Title, kr.Unit); err != nil {
		return err
	}
	return tx.Commit()
}

// GetKeyResult returns a key result with its full progress history.
func (db *DB) GetKeyResult(id string) (*models.KeyResult, error) {
	kr, err := scanKeyResult(db.conn.QueryRow(`SELECT `+keyResultColumns+` FROM key_results WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get key result: %w", err)
	}
	progress, err := db.ListProgress(id)
	if err != nil {
		return nil, err
	}
	kr.Progress = progress
	return &kr, nil
}

// KeyResultsOf returns an objective's key results with their progress.
func (db *DB) KeyResultsOf(objectiveID string) ([]models.KeyResult, error) {
	rows, err := db.conn.Query(`SELECT `+keyResultColumns+` FROM key_results WHERE objective_id = ? ORDER BY created_at, rowid`, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("store: list key results: %w", err)
	}
	var out []models.KeyResult
	for rows.Next() {
		kr, err := scanKeyResult(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, kr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Progress, err = db.ListProgress(out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteKeyResult removes a key result and its progress.
func (db *DB) DeleteKeyResult(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM key_results WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete key result: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	if err := ftsPurge(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// PeriodOfKeyResult resolves the period a key result belongs to.
func (db *DB) PeriodOfKeyResult(krID string) (*models.Period, error) {
	p, err := scanPeriod(db.conn.QueryRow(`
		SELECT p.id, p.name, p.start_date, p.end_date, p.is_active, p.created_at
		FROM key_results k
		JOIN objectives o ON o.id = k.objective_id
		JOIN periods p ON p.id = o.period_id
		WHERE k.id = ?
	`, krID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: period of key result: %w", err)
	}
	return &p, nil
}

// LoadObjectives returns a period's objectives fully materialised: key
// results with weekly targets and every progress entry.
func (db *DB) LoadObjectives(periodID string) ([]models.Objective, error) {
	rows, err := db.conn.Query(`SELECT `+objectiveColumns+` FROM objectives WHERE period_id = ? ORDER BY position, created_at, rowid`, periodID)
	if err != nil {
		return nil, fmt.Errorf("store: list objectives: %w", err)
	}
	var objectives []models.Objective
	index := make(map[string]int)
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[o.ID] = len(objectives)
		objectives = append(objectives, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(objectives) == 0 {
		return objectives, nil
	}

	krRows, err := db.conn.Query(`
		SELECT k.id, k.objective_id, k.title, k.target_value, k.unit, k.target_mode, k.weekly_targets, k.created_at
		FROM key_results k
		JOIN objectives o ON o.id = k.objective_id
		WHERE o.period_id = ?
		ORDER BY k.created_at, k.rowid
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("store: list key results: %w", err)
	}
	var krs []models.KeyResult
	for krRows.Next() {
		kr, err := scanKeyResult(krRows)
		if err != nil {
			krRows.Close()
			return nil, err
		}
		krs = append(krs, kr)
	}
	krRows.Close()
	if err := krRows.Err(); err != nil {
		return nil, err
	}

	progress, err := db.progressForPeriod(periodID)
	if err != nil {
		return nil, err
	}
	for _, kr := range krs {
		kr.Progress = progress[kr.ID]
		i := index[kr.ObjectiveID]
		objectives[i].KeyResults = append(objectives[i].KeyResults, kr)
	}
	return objectives, nil
}
