package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "journal-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func row(path, subject, title string, created time.Time, tags ...string) EntryRow {
	return EntryRow{
		Path:      path,
		Subject:   subject,
		Title:     title,
		Date:      created.Format("2006-01-02"),
		Tags:      tags,
		Checksum:  "cs-" + path,
		CreatedAt: created,
	}
}

func TestUpsertAndGetEntry(t *testing.T) {
	db := testDB(t)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := db.UpsertEntry(row("uploads/alice/journal-1.md", "alice", "First", created, "rain", "walk"), "body text"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	e, err := db.GetEntry("uploads/alice/journal-1.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil {
		t.Fatal("entry not found")
	}
	if e.Subject != "alice" || e.Title != "First" {
		t.Errorf("entry = %+v", e)
	}
	if len(e.Tags) != 2 || e.Tags[0] != "rain" {
		t.Errorf("tags = %v", e.Tags)
	}
}

func TestGetEntry_Missing(t *testing.T) {
	db := testDB(t)
	e, err := db.GetEntry("uploads/nobody/x.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil, got %+v", e)
	}
}

func TestListEntries_SubjectScoping(t *testing.T) {
	db := testDB(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []EntryRow{
		row("uploads/alice/journal-1.md", "alice", "A1", base),
		row("uploads/alice/journal-2.md", "alice", "A2", base.Add(time.Hour)),
		row("uploads/bob/journal-1.md", "bob", "B1", base),
	}
	for _, e := range entries {
		if err := db.UpsertEntry(e, "body"); err != nil {
			t.Fatal(err)
		}
	}

	rows, total, err := db.ListEntries("alice", 10, 0, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("total = %d, rows = %d, want 2/2", total, len(rows))
	}
	// Newest first.
	if rows[0].Title != "A2" || rows[1].Title != "A1" {
		t.Errorf("order = %s, %s", rows[0].Title, rows[1].Title)
	}

	all, total, err := db.ListEntries("", 10, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("unscoped total = %d, rows = %d, want 3/3", total, len(all))
	}
}

func TestListEntries_TagFilter(t *testing.T) {
	db := testDB(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := db.UpsertEntry(row("uploads/a/1.md", "a", "One", base, "rain"), "b"); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertEntry(row("uploads/a/2.md", "a", "Two", base, "sun"), "b"); err != nil {
		t.Fatal(err)
	}

	rows, total, err := db.ListEntries("a", 10, 0, "rain")
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Title != "One" {
		t.Errorf("tag filter: total = %d, rows = %+v", total, rows)
	}
}

func TestDeleteEntry(t *testing.T) {
	db := testDB(t)
	created := time.Now()
	if err := db.UpsertEntry(row("uploads/a/1.md", "a", "One", created), "b"); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteEntry("uploads/a/1.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	e, err := db.GetEntry("uploads/a/1.md")
	if err != nil {
		t.Fatal(err)
	}
	if e != nil {
		t.Errorf("entry still present after delete: %+v", e)
	}
}

func TestSearch_Fallback(t *testing.T) {
	db := testDB(t)
	created := time.Now()
	if err := db.UpsertEntry(row("uploads/a/1.md", "a", "Rainy Walk", created, "rain"), "we walked in the rain"); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertEntry(row("uploads/b/1.md", "b", "Sunny Day", created, "sun"), "the sun was out"); err != nil {
		t.Fatal(err)
	}

	hits, err := db.Search("a", "rain", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Path != "uploads/a/1.md" {
		t.Errorf("hits = %+v", hits)
	}

	// Subject scoping excludes other subjects even on matching text.
	hits, err = db.Search("b", "rain", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits for other subject, got %+v", hits)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	created := time.Now()
	if err := db.UpsertEntry(row("uploads/a/1.md", "a", "One", created), "b"); err != nil {
		t.Fatal(err)
	}
	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if cs["uploads/a/1.md"] != "cs-uploads/a/1.md" {
		t.Errorf("checksums = %v", cs)
	}
}

func TestSubjectFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"uploads/alice/journal-x.md", "alice"},
		{"uploads/alice/nested/journal-x.md", "alice"},
		{"other/alice/journal-x.md", ""},
		{"journal-x.md", ""},
	}
	for _, tt := range tests {
		if got := subjectFromPath(tt.path); got != tt.want {
			t.Errorf("subjectFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
