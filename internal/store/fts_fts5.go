//go:build sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS okr_fts USING fts5(
			kind UNINDEXED,
			ref UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, kind, ref, title, body string) error {
	_, _ = tx.Exec(`DELETE FROM okr_fts WHERE kind = ? AND ref = ?`, kind, ref)
	_, err := tx.Exec(`INSERT INTO okr_fts (kind, ref, title, body) VALUES (?, ?, ?, ?)`, kind, ref, title, body)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

// ftsPurge drops entries whose source row is gone, including rows removed by
// ON DELETE CASCADE.
func ftsPurge(tx *sql.Tx) error {
	_, err := tx.Exec(`
		DELETE FROM okr_fts WHERE
			(kind = 'objective'  AND ref NOT IN (SELECT id FROM objectives)) OR
			(kind = 'key_result' AND ref NOT IN (SELECT id FROM key_results)) OR
			(kind = 'reflection' AND ref NOT IN (SELECT path FROM reflections))
	`)
	if err != nil {
		return fmt.Errorf("store: purge fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search with highlighted snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	rows, err := db.conn.Query(`
		SELECT kind, ref, title,
		       snippet(okr_fts, 3, '<b>', '</b>', '...', 64)
		FROM okr_fts
		WHERE okr_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Kind, &r.Ref, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
