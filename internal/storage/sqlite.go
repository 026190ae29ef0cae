// Package storage caches published snapshots in SQLite so that later runs can
// start without refetching the source documents.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/paper"
	_ "modernc.org/sqlite"
)

// ErrEmptyCache is returned when the cache has never been populated.
var ErrEmptyCache = errors.New("snapshot cache is empty; run 'citegraph rebuild'")

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

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
		-- Title index
		CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL
		);

		-- Adjacency keys, kept separately so papers with an empty neighbor list survive
		CREATE TABLE IF NOT EXISTS adjacency_keys (
			paper_id INTEGER PRIMARY KEY
		);

		-- Adjacency rows in document order
		CREATE TABLE IF NOT EXISTS adjacency (
			paper_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			neighbor_id INTEGER NOT NULL,
			PRIMARY KEY (paper_id, position)
		);

		-- Search index in document order
		CREATE TABLE IF NOT EXISTS search_entries (
			position INTEGER PRIMARY KEY,
			paper_id INTEGER NOT NULL,
			title TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS cache_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Meta describes where a cached snapshot came from.
type Meta struct {
	Source   datastore.Locations `json:"source"`
	CachedAt time.Time           `json:"cached_at"`
}

// RebuildFromSnapshot clears the database and writes snap into it in one transaction.
func (d *DB) RebuildFromSnapshot(ctx context.Context, snap *datastore.Snapshot, meta Meta) (datastore.Stats, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return datastore.Stats{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"papers", "adjacency_keys", "adjacency", "search_entries", "cache_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return datastore.Stats{}, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	papersStmt, err := tx.PrepareContext(ctx, `INSERT INTO papers (id, title) VALUES (?, ?)`)
	if err != nil {
		return datastore.Stats{}, fmt.Errorf("preparing papers insert: %w", err)
	}
	defer papersStmt.Close()

	for id, title := range snap.Titles {
		if _, err := papersStmt.ExecContext(ctx, int64(id), title); err != nil {
			return datastore.Stats{}, fmt.Errorf("inserting paper %d: %w", id, err)
		}
	}

	keyStmt, err := tx.PrepareContext(ctx, `INSERT INTO adjacency_keys (paper_id) VALUES (?)`)
	if err != nil {
		return datastore.Stats{}, fmt.Errorf("preparing adjacency key insert: %w", err)
	}
	defer keyStmt.Close()

	adjStmt, err := tx.PrepareContext(ctx, `INSERT INTO adjacency (paper_id, position, neighbor_id) VALUES (?, ?, ?)`)
	if err != nil {
		return datastore.Stats{}, fmt.Errorf("preparing adjacency insert: %w", err)
	}
	defer adjStmt.Close()

	for id, neighbors := range snap.Adjacency {
		if _, err := keyStmt.ExecContext(ctx, int64(id)); err != nil {
			return datastore.Stats{}, fmt.Errorf("inserting adjacency key %d: %w", id, err)
		}
		for pos, n := range neighbors {
			if _, err := adjStmt.ExecContext(ctx, int64(id), pos, int64(n)); err != nil {
				return datastore.Stats{}, fmt.Errorf("inserting adjacency %d[%d]: %w", id, pos, err)
			}
		}
	}

	searchStmt, err := tx.PrepareContext(ctx, `INSERT INTO search_entries (position, paper_id, title) VALUES (?, ?, ?)`)
	if err != nil {
		return datastore.Stats{}, fmt.Errorf("preparing search insert: %w", err)
	}
	defer searchStmt.Close()

	for pos, e := range snap.Entries {
		if _, err := searchStmt.ExecContext(ctx, pos, int64(e.ID), e.Title); err != nil {
			return datastore.Stats{}, fmt.Errorf("inserting search entry %d: %w", pos, err)
		}
	}

	if meta.CachedAt.IsZero() {
		meta.CachedAt = time.Now()
	}
	metaRows := map[string]string{
		"papers_url":       meta.Source.Titles,
		"edges_url":        meta.Source.Adjacency,
		"search_index_url": meta.Source.SearchIndex,
		"cached_at":        meta.CachedAt.UTC().Format(time.RFC3339),
	}
	for k, v := range metaRows {
		if _, err := tx.ExecContext(ctx, `INSERT INTO cache_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return datastore.Stats{}, fmt.Errorf("inserting meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return datastore.Stats{}, fmt.Errorf("committing cache: %w", err)
	}
	return snap.Stats(), nil
}

// LoadSnapshot reads the cached tables into a new snapshot.
// Returns ErrEmptyCache if nothing has been cached.
func (d *DB) LoadSnapshot(ctx context.Context) (*datastore.Snapshot, error) {
	if _, err := d.Meta(ctx); err != nil {
		return nil, err
	}

	titles := make(paper.TitleIndex)
	rows, err := d.db.QueryContext(ctx, `SELECT id, title FROM papers`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			rows.Close()
			return nil, err
		}
		titles[paper.ID(id)] = title
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	adjacency := make(paper.AdjacencyIndex)
	rows, err = d.db.QueryContext(ctx, `SELECT paper_id FROM adjacency_keys`)
	if err != nil {
		return nil, fmt.Errorf("querying adjacency keys: %w", err)
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		adjacency[paper.ID(id)] = []paper.ID{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = d.db.QueryContext(ctx, `SELECT paper_id, neighbor_id FROM adjacency ORDER BY paper_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying adjacency: %w", err)
	}
	for rows.Next() {
		var id, neighbor int64
		if err := rows.Scan(&id, &neighbor); err != nil {
			rows.Close()
			return nil, err
		}
		adjacency[paper.ID(id)] = append(adjacency[paper.ID(id)], paper.ID(neighbor))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries, err := d.searchEntries(ctx)
	if err != nil {
		return nil, err
	}

	return &datastore.Snapshot{
		Titles:    titles,
		Adjacency: adjacency,
		Entries:   entries,
	}, nil
}

func (d *DB) searchEntries(ctx context.Context) ([]paper.SearchEntry, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT paper_id, title FROM search_entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying search entries: %w", err)
	}
	defer rows.Close()

	entries := []paper.SearchEntry{}
	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		entries = append(entries, paper.SearchEntry{ID: paper.ID(id), Title: title})
	}
	return entries, rows.Err()
}

// Meta returns the provenance of the cached snapshot, or ErrEmptyCache.
func (d *DB) Meta(ctx context.Context) (*Meta, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT key, value FROM cache_meta`)
	if err != nil {
		return nil, fmt.Errorf("querying cache meta: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cachedAt, ok := values["cached_at"]
	if !ok {
		return nil, ErrEmptyCache
	}
	t, err := time.Parse(time.RFC3339, cachedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing cached_at: %w", err)
	}
	return &Meta{
		Source: datastore.Locations{
			Titles:      values["papers_url"],
			Adjacency:   values["edges_url"],
			SearchIndex: values["search_index_url"],
		},
		CachedAt: t,
	}, nil
}

// Count returns the number of cached papers.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// CacheLoader is a datastore.Loader reading from a cache file.
type CacheLoader struct {
	path string
}

// NewCacheLoader creates a loader for the cache at path.
func NewCacheLoader(path string) *CacheLoader {
	return &CacheLoader{path: path}
}

// Load opens the cache, reads the snapshot, and closes it again.
func (c *CacheLoader) Load(ctx context.Context) (*datastore.Snapshot, error) {
	if _, err := os.Stat(c.path); errors.Is(err, os.ErrNotExist) {
		return nil, ErrEmptyCache
	}
	db, err := OpenDB(c.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.LoadSnapshot(ctx)
}
