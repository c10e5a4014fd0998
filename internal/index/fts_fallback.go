//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the entries table itself is searched, so there is no
// separate search row to maintain.
func initFTS(_ *sql.DB) error                                  { return nil }
func ftsUpsert(_ *sql.Tx, _, _, _, _ string, _ []string) error { return nil }
func ftsDelete(_ *sql.Tx, _ string) error                      { return nil }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches query as a substring of title, description, body or tags,
// newest first. The snippet is the start of the body.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT path, title, substr(body, 1, 200)
		FROM entries
		WHERE title LIKE ?1 ESCAPE '\'
		   OR description LIKE ?1 ESCAPE '\'
		   OR body LIKE ?1 ESCAPE '\'
		   OR tags LIKE ?1 ESCAPE '\'
		ORDER BY date DESC, path ASC
		LIMIT ?2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, fmt.Errorf("index: scan hit: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
