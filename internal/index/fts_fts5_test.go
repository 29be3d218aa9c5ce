//go:build sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries_fts`).Scan(&count); err != nil {
		t.Fatalf("entries_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := EntryRow{
		Path:      "uploads/alice/journal-1.md",
		Subject:   "alice",
		Title:     "Morning Pages",
		Checksum:  "f1",
		Tags:      []string{"morning"},
		CreatedAt: time.Now(),
	}
	if err := db.UpsertEntry(row, "Wrote three uninterrupted pages before coffee."); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}

	results, err := db.Search("alice", "uninterrupted", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "uploads/alice/journal-1.md" {
		t.Errorf("path = %q", results[0].Path)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_SubjectScoping(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertEntry(EntryRow{Path: "uploads/a/1.md", Subject: "a", Checksum: "1", Tags: []string{}, CreatedAt: now}, "shared keyword lighthouse")
	_ = db.UpsertEntry(EntryRow{Path: "uploads/b/1.md", Subject: "b", Checksum: "2", Tags: []string{}, CreatedAt: now}, "shared keyword lighthouse")

	results, err := db.Search("a", "lighthouse", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "uploads/a/1.md" {
		t.Errorf("scoped search = %+v", results)
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(EntryRow{Path: "uploads/a/gone.md", Subject: "a", Checksum: "g", Tags: []string{}, CreatedAt: time.Now()}, "vanishing content")
	_ = db.DeleteEntry("uploads/a/gone.md")

	results, _ := db.Search("", "vanishing", 10)
	for _, r := range results {
		if r.Path == "uploads/a/gone.md" {
			t.Error("deleted entry still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertEntry(EntryRow{Path: "uploads/a/evo.md", Subject: "a", Title: "Old", Checksum: "1", Tags: []string{}, CreatedAt: now}, "original text")
	_ = db.UpsertEntry(EntryRow{Path: "uploads/a/evo.md", Subject: "a", Title: "New", Checksum: "2", Tags: []string{}, CreatedAt: now}, "replacement text")

	results, _ := db.Search("", "original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("", "replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
