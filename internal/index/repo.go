package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// EntryRow represents a row in the entries table.
type EntryRow struct {
	Path      string    `json:"path"`
	Subject   string    `json:"subject"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Tags      []string  `json:"tags"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertEntry inserts or replaces an entry and its FTS row within a transaction.
func (db *DB) UpsertEntry(e EntryRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(e.Tags)

	_, err = tx.Exec(`
		INSERT INTO entries (path, subject, title, entry_date, tags, body, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			subject    = excluded.subject,
			title      = excluded.title,
			entry_date = excluded.entry_date,
			tags       = excluded.tags,
			body       = excluded.body,
			checksum   = excluded.checksum,
			created_at = excluded.created_at
	`, e.Path, e.Subject, e.Title, e.Date, string(tagsJSON), body, e.Checksum, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, e.Path, e.Subject, e.Title, body, e.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteEntry removes an entry and its FTS row.
func (db *DB) DeleteEntry(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM entries WHERE path = ?`, path)

	return tx.Commit()
}

// GetEntry returns a single entry row, or nil when not indexed.
func (db *DB) GetEntry(path string) (*EntryRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, subject, title, entry_date, tags, checksum, created_at
		FROM entries WHERE path = ?
	`, path)
	e, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get entry: %w", err)
	}
	return e, nil
}

// ListEntries returns a subject's entries newest first, with an optional tag
// filter and pagination. An empty subject lists every entry.
func (db *DB) ListEntries(subject string, limit, offset int, tag string) ([]EntryRow, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := `WHERE (? = '' OR subject = ?)`
	args := []any{subject, subject}
	if tag != "" {
		where += ` AND tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM entries `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count entries: %w", err)
	}

	query := `
		SELECT path, subject, title, entry_date, tags, checksum, created_at
		FROM entries ` + where + `
		ORDER BY created_at DESC, path DESC
		LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list entries: %w", err)
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
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

func scanEntry(scan func(dest ...any) error) (*EntryRow, error) {
	var e EntryRow
	var tagsJSON string
	if err := scan(&e.Path, &e.Subject, &e.Title, &e.Date, &tagsJSON, &e.Checksum, &e.CreatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &e.Tags)
	return &e, nil
}
