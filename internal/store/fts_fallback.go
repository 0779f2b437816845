//go:build !sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// Without FTS5, search falls back to LIKE over the source tables.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string) error { return nil }

func ftsPurge(_ *sql.Tx) error { return nil }

// Search performs a LIKE-based search across objectives, key results and
// reflections.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT 'objective', id, title, substr(description, 1, 200)
		FROM objectives WHERE title LIKE ? OR description LIKE ?
		UNION ALL
		SELECT 'key_result', id, title, unit
		FROM key_results WHERE title LIKE ?
		UNION ALL
		SELECT 'reflection', path, title, substr(body, 1, 200)
		FROM reflections WHERE title LIKE ? OR body LIKE ? OR tags LIKE ?
		LIMIT ?
	`, like, like, like, like, like, like, limit)
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
