// Package models defines the domain types shared by storage, the catalog and
// the MCP server.
package models

import "time"

// EntryFile is a content file found under the content root.
type EntryFile struct {
	Path      string    `json:"path"` // slash-separated, relative to the content root
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is a content file with its frontmatter decoded.
type Entry struct {
	Path        string    `json:"path"`
	Collection  string    `json:"collection"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Draft       bool      `json:"draft"`
	Tags        []string  `json:"tags"`
	Checksum    string    `json:"checksum"`
	UpdatedAt   time.Time `json:"updated_at"`
}
