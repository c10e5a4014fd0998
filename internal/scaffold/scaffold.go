// Package scaffold creates new content entries: it gathers the details,
// derives the slug, renders the frontmatter and writes the file without ever
// replacing an existing one.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/collection"
	"github.com/starford/quire/internal/schema"
	"github.com/starford/quire/internal/slug"
	"github.com/starford/quire/internal/storage"
)

// Result describes a created entry.
type Result struct {
	Kind    collection.Kind
	Slug    string
	Path    string // relative to the content root
	AbsPath string
}

// ExistsError reports that an entry with the same slug is already present.
type ExistsError struct {
	Kind collection.Kind
	Slug string
	Path string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("%s with the slug %q already exists at %s", e.Kind.Info().Noun, e.Slug, e.Path)
}

func (e *ExistsError) Unwrap() error {
	return apperr.ErrAlreadyExists
}

// Option configures a Scaffolder.
type Option func(*Scaffolder)

// WithClock overrides the time source used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(s *Scaffolder) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scaffolder) {
		s.logger = logger
	}
}

// Scaffolder creates entries under the content root.
type Scaffolder struct {
	store   storage.Provider
	layout  *collection.Layout
	schemas *schema.Validator
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a Scaffolder.
func New(store storage.Provider, layout *collection.Layout, schemas *schema.Validator, opts ...Option) *Scaffolder {
	s := &Scaffolder{
		store:   store,
		layout:  layout,
		schemas: schemas,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRequest builds a request stamped with the current time.
func (s *Scaffolder) NewRequest(kind collection.Kind, title, description string, tags []string) Request {
	if tags == nil {
		tags = []string{}
	}
	if !kind.Info().HasDescription {
		description = ""
	}
	return Request{
		Kind:        kind,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Tags:        tags,
		Date:        s.now(),
	}
}

// Create writes the entry for req. A slug collision is an *ExistsError and
// leaves the existing file untouched.
func (s *Scaffolder) Create(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sl := slug.Derive(req.Title)
	if sl == "" {
		return nil, fmt.Errorf("%w: title %q has no letters or digits to build a file name from", apperr.ErrEmptySlug, req.Title)
	}

	content := Render(req)
	res, err := s.schemas.ValidateDocument(req.Kind, []byte(content))
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, fmt.Errorf("%w: rendered %s entry fails its schema: %s", apperr.ErrInvalidFrontmatter, req.Kind, res.Issues[0])
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := s.layout.EntryPath(req.Kind, sl)
	abs, err := s.store.Abs(rel)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(rel, []byte(content)); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			s.logger.Info("entry exists", slog.String("path", rel))
			return nil, &ExistsError{Kind: req.Kind, Slug: sl, Path: abs}
		}
		return nil, err
	}

	s.logger.Info("entry created",
		slog.String("kind", req.Kind.String()),
		slog.String("path", rel))

	return &Result{Kind: req.Kind, Slug: sl, Path: rel, AbsPath: abs}, nil
}

// Run drives one interactive session: banner, prompts, create, report.
// A collision is reported on errOut and is not an error. The returned
// Result is nil when nothing was written.
func (s *Scaffolder) Run(ctx context.Context, kind collection.Kind, in io.Reader, out, errOut io.Writer) (*Result, error) {
	info := kind.Info()
	if info.Kind == 0 {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnknownKind, kind)
	}

	fmt.Fprintf(out, "📝 Create a new %s\n\n", info.Label)

	sess := NewSession(in, out)
	title, err := sess.PromptTitle()
	if err != nil {
		return nil, err
	}
	var description string
	if info.HasDescription {
		if description, err = sess.PromptDescription(); err != nil {
			return nil, err
		}
	}
	tags, err := sess.PromptTags()
	if err != nil {
		return nil, err
	}

	res, err := s.Create(ctx, s.NewRequest(kind, title, description, tags))
	if err != nil {
		var exists *ExistsError
		if errors.As(err, &exists) {
			fmt.Fprintf(errOut, "⚠️ A %s with the slug %q already exists.\n", info.Noun, exists.Slug)
			return nil, nil
		}
		return nil, err
	}

	fmt.Fprintf(out, "\n✅ %s created at: %s\n", info.Heading, res.AbsPath)
	if info.DraftDefault {
		fmt.Fprintln(out, `Draft status is set to "true" by default. Edit the file to change it.`)
	}
	return res, nil
}
