// Package storage defines the content-tree file-system abstraction.
package storage

import "github.com/starford/quire/internal/models"

// Provider is the interface for content file operations. All paths are
// relative to the content root.
type Provider interface {
	// List returns every .md/.mdx file under dir.
	List(dir string) ([]models.EntryFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Create writes content to path only if nothing exists there yet.
	// It fails with apperr.ErrAlreadyExists otherwise and never leaves a
	// partially written file behind.
	Create(path string, content []byte) error
	// Abs resolves path to an absolute file-system path.
	Abs(path string) (string, error)
}
