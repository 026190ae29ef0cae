package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/paper"
)

func testSnapshot() *datastore.Snapshot {
	return &datastore.Snapshot{
		Titles: paper.TitleIndex{
			1: "Deep Learning",
			2: "Neural Nets",
			3: "",
		},
		Adjacency: paper.AdjacencyIndex{
			1: {3, 2, 2},
			2: {1},
			4: {},
		},
		Entries: []paper.SearchEntry{
			{ID: 2, Title: "Neural Nets"},
			{ID: 1, Title: "Deep Learning"},
		},
	}
}

// setupTestDB creates a database populated from testSnapshot.
func setupTestDB(t *testing.T) (*DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "graph.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	meta := Meta{Source: datastore.Locations{Titles: "papers.json", Adjacency: "edges.json", SearchIndex: "search.json"}}
	if _, err := db.RebuildFromSnapshot(context.Background(), testSnapshot(), meta); err != nil {
		t.Fatalf("RebuildFromSnapshot() error = %v", err)
	}
	return db, dbPath
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	for _, table := range []string{"papers", "adjacency_keys", "adjacency", "search_entries", "cache_meta"} {
		var name string
		err := db.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}
}

func TestDB_RoundTrip(t *testing.T) {
	db, _ := setupTestDB(t)

	got, err := db.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	want := testSnapshot()

	if !reflect.DeepEqual(got.Titles, want.Titles) {
		t.Errorf("Titles = %v, want %v", got.Titles, want.Titles)
	}
	if !reflect.DeepEqual(got.Adjacency, want.Adjacency) {
		t.Errorf("Adjacency = %v, want %v", got.Adjacency, want.Adjacency)
	}
	if !reflect.DeepEqual(got.Entries, want.Entries) {
		t.Errorf("Entries = %v, want %v (order must be preserved)", got.Entries, want.Entries)
	}
}

func TestDB_RebuildReplacesContents(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	smaller := &datastore.Snapshot{
		Titles:    paper.TitleIndex{9: "Only Paper"},
		Adjacency: paper.AdjacencyIndex{},
		Entries:   []paper.SearchEntry{{ID: 9, Title: "Only Paper"}},
	}
	stats, err := db.RebuildFromSnapshot(ctx, smaller, Meta{})
	if err != nil {
		t.Fatalf("RebuildFromSnapshot() error = %v", err)
	}
	if stats.Papers != 1 || stats.SearchEntries != 1 {
		t.Errorf("stats = %+v", stats)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	got, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(got.Adjacency) != 0 {
		t.Errorf("Adjacency = %v, want empty", got.Adjacency)
	}
}

func TestDB_Meta(t *testing.T) {
	db, _ := setupTestDB(t)

	meta, err := db.Meta(context.Background())
	if err != nil {
		t.Fatalf("Meta() error = %v", err)
	}
	if meta.Source.Titles != "papers.json" || meta.Source.SearchIndex != "search.json" {
		t.Errorf("Meta().Source = %+v", meta.Source)
	}
	if time.Since(meta.CachedAt) > time.Minute {
		t.Errorf("Meta().CachedAt = %v", meta.CachedAt)
	}
}

func TestDB_EmptyCache(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	if _, err := db.LoadSnapshot(context.Background()); !errors.Is(err, ErrEmptyCache) {
		t.Errorf("LoadSnapshot() error = %v, want ErrEmptyCache", err)
	}
}

func TestCacheLoader(t *testing.T) {
	db, path := setupTestDB(t)
	db.Close()

	store := datastore.NewStore()
	snap, err := store.Load(context.Background(), NewCacheLoader(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Generation != 1 || len(snap.Titles) != 3 {
		t.Errorf("snapshot = %+v", snap.Stats())
	}

	missing := NewCacheLoader(filepath.Join(t.TempDir(), "none.db"))
	if _, err := missing.Load(context.Background()); !errors.Is(err, ErrEmptyCache) {
		t.Errorf("Load() of missing cache error = %v, want ErrEmptyCache", err)
	}
}

func TestDB_Close(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
