// Package collection describes the content collections quire scaffolds into
// and the fixed per-kind policy each one carries.
package collection

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/quire/internal/apperr"
)

// Kind selects a collection template and its target directory.
type Kind int

const (
	Post Kind = iota + 1
	Note
	Lab
	Essay
)

// Info is the configuration row for one Kind.
type Info struct {
	Kind    Kind
	Name    string   // CLI name
	Aliases []string // alternate CLI names
	Dir     string   // default directory under the content root
	Label   string   // used in the banner, e.g. "Create a new blog post"
	Heading string   // used at the start of the success line
	Noun    string   // used in the collision warning

	// HasDescription is true when the site schema requires a description.
	HasDescription bool
	// DraftDefault is written to the draft field of every new entry.
	DraftDefault bool
}

var table = []Info{
	{
		Kind:           Post,
		Name:           "post",
		Aliases:        []string{"blog"},
		Dir:            "blog",
		Label:          "blog post",
		Heading:        "Blog post",
		Noun:           "post",
		HasDescription: true,
		DraftDefault:   true,
	},
	{
		Kind:         Note,
		Name:         "note",
		Aliases:      []string{"til", "tldr"},
		Dir:          "til",
		Label:        "TIL",
		Heading:      "TIL",
		Noun:         "TIL",
		DraftDefault: false,
	},
	{
		Kind:           Lab,
		Name:           "lab",
		Dir:            "lab",
		Label:          "lab journal entry",
		Heading:        "Lab journal entry",
		Noun:           "lab entry",
		HasDescription: true,
		DraftDefault:   true,
	},
	{
		Kind:           Essay,
		Name:           "essay",
		Aliases:        []string{"essays"},
		Dir:            "essays",
		Label:          "essay",
		Heading:        "Essay",
		Noun:           "essay",
		HasDescription: true,
		DraftDefault:   true,
	},
}

// All returns every collection in display order.
func All() []Info {
	out := make([]Info, len(table))
	copy(out, table)
	return out
}

// Info returns the configuration row for k. Unknown kinds yield a zero Info.
func (k Kind) Info() Info {
	for _, info := range table {
		if info.Kind == k {
			return info
		}
	}
	return Info{}
}

func (k Kind) String() string {
	if name := k.Info().Name; name != "" {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k.Info().Kind != 0
}

// Parse resolves a CLI name or alias, case-insensitively.
func Parse(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, info := range table {
		if info.Name == n {
			return info.Kind, nil
		}
		for _, a := range info.Aliases {
			if a == n {
				return info.Kind, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", apperr.ErrUnknownKind, name)
}

// Names lists the CLI names of every kind.
func Names() []string {
	out := make([]string, 0, len(table))
	for _, info := range table {
		out = append(out, info.Name)
	}
	return out
}

// Layout maps kinds to directories relative to the content root.
type Layout struct {
	dirs map[Kind]string
}

// NewLayout builds a layout from the defaults, replacing the directory of
// any kind named in overrides (keyed by kind name or alias).
func NewLayout(overrides map[string]string) (*Layout, error) {
	l := &Layout{dirs: make(map[Kind]string, len(table))}
	for _, info := range table {
		l.dirs[info.Kind] = info.Dir
	}
	for name, dir := range overrides {
		k, err := Parse(name)
		if err != nil {
			return nil, err
		}
		clean := path.Clean(strings.ReplaceAll(strings.TrimSpace(dir), "\\", "/"))
		if clean == "." || clean == "" || strings.HasPrefix(clean, "../") || clean == ".." || path.IsAbs(clean) {
			return nil, fmt.Errorf("collection %s: directory %q must be relative to the content root", k, dir)
		}
		l.dirs[k] = clean
	}

	owner := make(map[string]Kind, len(table))
	for _, info := range table {
		dir := l.dirs[info.Kind]
		if other, ok := owner[dir]; ok {
			return nil, fmt.Errorf("collections %s and %s share directory %q", other, info.Kind, dir)
		}
		owner[dir] = info.Kind
	}
	return l, nil
}

// Dir returns the directory of k relative to the content root.
func (l *Layout) Dir(k Kind) string {
	return l.dirs[k]
}

// EntryPath returns the relative path of the entry file for slug.
func (l *Layout) EntryPath(k Kind, slug string) string {
	return path.Join(l.dirs[k], slug+".md")
}

// KindOf returns the kind whose directory contains rel, a slash-separated
// path relative to the content root.
func (l *Layout) KindOf(rel string) (Kind, bool) {
	rel = strings.ReplaceAll(rel, "\\", "/")
	var (
		best    Kind
		bestLen int
	)
	for k, dir := range l.dirs {
		if strings.HasPrefix(rel, dir+"/") && len(dir) > bestLen {
			best, bestLen = k, len(dir)
		}
	}
	return best, best != 0
}
