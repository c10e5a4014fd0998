// Package testutil provides shared test helpers for setting up content roots and catalogs.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/quire/internal/collection"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/storage"
)

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "quire-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent creates a temporary content root with every collection
// directory of the default layout.
func TestContent(t *testing.T) (string, storage.Provider, *collection.Layout) {
	t.Helper()
	root := t.TempDir()
	layout, err := collection.NewLayout(nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, info := range collection.All() {
		if err := os.MkdirAll(filepath.Join(root, layout.Dir(info.Kind)), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store, layout
}

// WriteFile writes content under root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
