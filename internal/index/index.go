package index

import "github.com/starford/quire/internal/models"

// EntryIndex defines the catalog operations consumers depend on.
type EntryIndex interface {
	UpsertEntry(e models.Entry, body string) error
	DeleteEntry(path string) error
	GetEntry(path string) (*models.Entry, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListEntries(f Filter) ([]models.Entry, error)
	TagCounts(collection string) ([]TagCount, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)
