// Package testutil provides shared test helpers for setting up archives and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/kedbin/ai-devops-journal/internal/index"
	"github.com/kedbin/ai-devops-journal/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "journal-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestArchive creates a temporary archive directory with a storage.Provider.
func TestArchive(t *testing.T) (string, storage.Provider) {
	t.Helper()
	archiveDir := t.TempDir()
	store, err := storage.NewFS(archiveDir)
	if err != nil {
		t.Fatal(err)
	}
	return archiveDir, store
}
