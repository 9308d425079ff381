// Package storage persists paper records in a SQLite catalog with
// full-text search. The upsert is keyed by content hash so indexing the
// same bytes twice can never create two records.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/papershelf/papershelf/internal/paper"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectPaperFields contains the standard field list for SELECT queries.
const selectPaperFields = `id, file_hash, title, authors_json, year,
	abstract, abstract_source, data_src,
	doi, arxiv_id, venue, published_at, url,
	path, thumb_path, created_at`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			file_hash TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			authors_json TEXT NOT NULL,
			year TEXT,
			abstract TEXT,
			abstract_source TEXT,
			data_src TEXT,
			doi TEXT,
			arxiv_id TEXT,
			venue TEXT,
			published_at TEXT,
			url TEXT,
			path TEXT,
			thumb_path TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi) WHERE doi IS NOT NULL AND doi != '';
		CREATE INDEX IF NOT EXISTS idx_papers_arxiv ON papers(arxiv_id) WHERE arxiv_id IS NOT NULL AND arxiv_id != '';

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
			id,
			title,
			abstract,
			authors_text,
			venue
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Upsert inserts or updates a record, keyed by its content hash. A record
// that already exists for the same hash keeps its id and created_at; every
// other field is replaced. The insert-or-update is a single statement, so
// two concurrent indexes of identical bytes cannot produce two rows.
func (d *DB) Upsert(rec *paper.Record) error {
	if rec.ID == "" || rec.FileHash == "" {
		return fmt.Errorf("record missing identity (id=%q, hash=%q)", rec.ID, rec.FileHash)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	authorsJSON, err := json.Marshal(rec.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO papers (
			id, file_hash, title, authors_json, year,
			abstract, abstract_source, data_src,
			doi, arxiv_id, venue, published_at, url,
			path, thumb_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_hash) DO UPDATE SET
			title = excluded.title,
			authors_json = excluded.authors_json,
			year = excluded.year,
			abstract = excluded.abstract,
			abstract_source = excluded.abstract_source,
			data_src = excluded.data_src,
			doi = excluded.doi,
			arxiv_id = excluded.arxiv_id,
			venue = excluded.venue,
			published_at = excluded.published_at,
			url = excluded.url,
			path = excluded.path,
			thumb_path = excluded.thumb_path
	`,
		rec.ID, rec.FileHash, rec.Title, string(authorsJSON), rec.Year,
		rec.Abstract, rec.AbstractSource, rec.DataSource,
		rec.DOI, rec.ArxivID, rec.Venue, rec.PublishedAt, rec.URL,
		rec.Path, rec.ThumbPath, rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting paper: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM papers_fts WHERE id = ?", rec.ID); err != nil {
		return fmt.Errorf("clearing fts row: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO papers_fts (id, title, abstract, authors_text, venue)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.Title, rec.Abstract, strings.Join(rec.Authors, " "), rec.Venue)
	if err != nil {
		return fmt.Errorf("inserting fts row: %w", err)
	}

	return tx.Commit()
}

// Get retrieves a record by its id.
func (d *DB) Get(id string) (*paper.Record, error) {
	row := d.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM papers WHERE id = ?", selectPaperFields), id)
	rec, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("paper %q not found", id)
	}
	return rec, err
}

// GetByHash retrieves a record by its full content hash.
func (d *DB) GetByHash(hash string) (*paper.Record, error) {
	row := d.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM papers WHERE file_hash = ?", selectPaperFields), hash)
	rec, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no paper with hash %q", hash)
	}
	return rec, err
}

// List returns records in reverse chronological order.
func (d *DB) List(limit, offset int) ([]*paper.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.Query(
		fmt.Sprintf(`SELECT %s FROM papers
			ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, selectPaperFields),
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Search runs a full-text query over title, abstract, authors, and venue.
func (d *DB) Search(query string, limit, offset int) ([]*paper.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	fts := prepareFTSQuery(query)
	if fts == "" {
		return d.List(limit, offset)
	}

	rows, err := d.db.Query(
		fmt.Sprintf(`SELECT %s FROM papers
			WHERE id IN (SELECT id FROM papers_fts WHERE papers_fts MATCH ?)
			ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, selectPaperFields),
		fts, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Count returns the number of stored records.
func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&n)
	return n, err
}

// Wipe deletes every record.
func (d *DB) Wipe() (int, error) {
	n, err := d.Count()
	if err != nil {
		return 0, err
	}
	if _, err := d.db.Exec("DELETE FROM papers"); err != nil {
		return 0, fmt.Errorf("clearing papers: %w", err)
	}
	if _, err := d.db.Exec("DELETE FROM papers_fts"); err != nil {
		return 0, fmt.Errorf("clearing papers_fts: %w", err)
	}
	return n, nil
}

// scanner abstracts sql.Row and sql.Rows for scanPaper.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPaper(s scanner) (*paper.Record, error) {
	var rec paper.Record
	var authorsJSON string
	var year, abstract, absSrc, dataSrc sql.NullString
	var doi, arxivID, venue, publishedAt, urlStr sql.NullString
	var path, thumbPath sql.NullString
	var createdAt string

	err := s.Scan(
		&rec.ID, &rec.FileHash, &rec.Title, &authorsJSON, &year,
		&abstract, &absSrc, &dataSrc,
		&doi, &arxivID, &venue, &publishedAt, &urlStr,
		&path, &thumbPath, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authorsJSON), &rec.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors for %s: %w", rec.ID, err)
	}

	rec.Year = year.String
	rec.Abstract = abstract.String
	rec.AbstractSource = absSrc.String
	rec.DataSource = dataSrc.String
	rec.DOI = doi.String
	rec.ArxivID = arxivID.String
	rec.Venue = venue.String
	rec.PublishedAt = publishedAt.String
	rec.URL = urlStr.String
	rec.Path = path.String
	rec.ThumbPath = thumbPath.String

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}

	return &rec, nil
}

func scanPapers(rows *sql.Rows) ([]*paper.Record, error) {
	var recs []*paper.Record
	for rows.Next() {
		rec, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
