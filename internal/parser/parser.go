// Package parser splits content files into YAML frontmatter and Markdown body
// and pulls out the fields quire cares about.
package parser

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/quire/internal/apperr"
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any // nil when the file has no frontmatter block
	Body        string
	Title       string
	Tags        []string
}

// Parse extracts frontmatter, body, title, and tags from raw Markdown bytes.
// A frontmatter block that is not valid YAML is an ErrInvalidFrontmatter.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
		Tags:        extractTags(fm),
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	fm := map[string]any{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperr.ErrInvalidFrontmatter, err)
	}
	return fm, body, nil
}

// extractTags returns the frontmatter "tags" list in order. Non-string items
// and blanks are skipped; the schema layer reports them.
func extractTags(fm map[string]any) []string {
	raw, ok := fm["tags"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// String returns the frontmatter value at key when it is a string.
func (r *Result) String(key string) string {
	s, _ := r.Frontmatter[key].(string)
	return s
}

// Draft returns the frontmatter "draft" flag, defaulting to false like the
// site schema does.
func (r *Result) Draft() bool {
	b, _ := r.Frontmatter["draft"].(bool)
	return b
}

// Date returns the coerced frontmatter "date".
func (r *Result) Date() (time.Time, bool) {
	v, ok := r.Frontmatter["date"]
	if !ok {
		return time.Time{}, false
	}
	return CoerceDate(v)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CoerceDate interprets v the way the site's date coercion does: timestamps
// as-is, ISO-8601 strings, and numbers as Unix milliseconds.
func CoerceDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	case int:
		return time.UnixMilli(int64(val)).UTC(), true
	case int64:
		return time.UnixMilli(val).UTC(), true
	case float64:
		if !math.IsNaN(val) && !math.IsInf(val, 0) {
			return time.UnixMilli(int64(val)).UTC(), true
		}
	}
	return time.Time{}, false
}
