package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

// Filter narrows ListEntries. Zero values mean "any".
type Filter struct {
	Collection string
	Tag        string
	DraftsOnly bool
	Limit      int
}

// TagCount is one row of the tag inventory.
type TagCount struct {
	Tag   string
	Count int
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

const entryColumns = `e.path, e.collection, e.slug, e.title, e.description, e.date, e.draft, e.tags, e.checksum, e.updated_at`

// UpsertEntry inserts or replaces an entry, its FTS row, and its tags within a transaction.
func (db *DB) UpsertEntry(e models.Entry, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	var date any
	if !e.Date.IsZero() {
		date = e.Date.UTC()
	}
	updated := e.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO entries (path, collection, slug, title, description, date, draft, tags, body, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			collection  = excluded.collection,
			slug        = excluded.slug,
			title       = excluded.title,
			description = excluded.description,
			date        = excluded.date,
			draft       = excluded.draft,
			tags        = excluded.tags,
			body        = excluded.body,
			checksum    = excluded.checksum,
			updated_at  = excluded.updated_at
	`, e.Path, e.Collection, e.Slug, e.Title, e.Description, date, e.Draft, string(tagsJSON), body, e.Checksum, updated.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}

	if err := ftsUpsert(tx, e.Path, e.Title, e.Description, body, tags); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM entry_tags WHERE path = ?`, e.Path); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	if len(tags) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO entry_tags (path, tag, position) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for i, tag := range tags {
			if _, err := stmt.Exec(e.Path, tag, i); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteEntry removes an entry, its FTS row, and its tags.
func (db *DB) DeleteEntry(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM entry_tags WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM entries WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete entry: %w", err)
	}

	return tx.Commit()
}

// GetEntry returns one entry or apperr.ErrNotFound.
func (db *DB) GetEntry(path string) (*models.Entry, error) {
	row := db.conn.QueryRow(`SELECT `+entryColumns+` FROM entries e WHERE e.path = ?`, path)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get entry: %w", err)
	}
	return e, nil
}

// GetChecksum returns the stored checksum for an entry, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM entries WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
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

// ListEntries returns entries matching f, newest first.
func (db *DB) ListEntries(f Filter) ([]models.Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Collection != "" {
		where = append(where, `e.collection = ?`)
		args = append(args, f.Collection)
	}
	if f.Tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM entry_tags t WHERE t.path = e.path AND t.tag = ?)`)
		args = append(args, f.Tag)
	}
	if f.DraftsOnly {
		where = append(where, `e.draft = 1`)
	}

	q := `SELECT ` + entryColumns + ` FROM entries e`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY e.date DESC, e.path ASC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list entries: %w", err)
	}
	defer rows.Close()

	var out []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// TagCounts returns how many entries use each tag, most used first.
// An empty collection counts across all collections.
func (db *DB) TagCounts(collection string) ([]TagCount, error) {
	q := `SELECT t.tag, COUNT(DISTINCT t.path) FROM entry_tags t JOIN entries e ON e.path = t.path`
	var args []any
	if collection != "" {
		q += ` WHERE e.collection = ?`
		args = append(args, collection)
	}
	q += ` GROUP BY t.tag ORDER BY COUNT(DISTINCT t.path) DESC, t.tag ASC`

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: tag counts: %w", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var (
		e        models.Entry
		date     sql.NullTime
		tagsJSON string
	)
	if err := s.Scan(&e.Path, &e.Collection, &e.Slug, &e.Title, &e.Description,
		&date, &e.Draft, &tagsJSON, &e.Checksum, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if date.Valid {
		e.Date = date.Time
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %s: %w", e.Path, err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return &e, nil
}
