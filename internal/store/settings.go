package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys.
const (
	SettingClockOverride = "clock_override"
)

// GetSetting returns the stored value for key and whether it exists.
func (db *DB) GetSetting(key string) (string, bool, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get setting: %w", err)
	}
	return v, true, nil
}

// SetSetting stores value under key.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("store: set setting: %w", err)
	}
	return nil
}

// DeleteSetting removes key. Missing keys are ignored.
func (db *DB) DeleteSetting(key string) error {
	if _, err := db.conn.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("store: delete setting: %w", err)
	}
	return nil
}
