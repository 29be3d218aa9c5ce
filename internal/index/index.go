package index

// EntryIndex defines the interface for entry indexing operations.
// Consumers depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type EntryIndex interface {
	UpsertEntry(e EntryRow, body string) error
	DeleteEntry(path string) error
	GetEntry(path string) (*EntryRow, error)
	ListEntries(subject string, limit, offset int, tag string) ([]EntryRow, int, error)
	Search(subject, query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)
