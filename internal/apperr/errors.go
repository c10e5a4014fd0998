// Package apperr holds the sentinel errors shared across quire packages.
package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrEmptyInput         = errors.New("empty input")
	ErrEmptySlug          = errors.New("empty slug")
	ErrUnknownKind        = errors.New("unknown collection kind")
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")
)
