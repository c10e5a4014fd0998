package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/quire/internal/apperr"
)

func TestParse_ScaffoldedPost(t *testing.T) {
	input := []byte("---\ntitle: \"Hello World\"\ndate: 2026-10-18T09:30:00.000Z\ndescription: \"A test\"\ntags: [\"x\", \"y\"]\ndraft: true\n---\n\n# Hello World\n\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello World" {
		t.Errorf("title = %q", r.Title)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "x" || r.Tags[1] != "y" {
		t.Errorf("tags = %v", r.Tags)
	}
	if r.String("description") != "A test" {
		t.Errorf("description = %q", r.String("description"))
	}
	if !r.Draft() {
		t.Error("draft should be true")
	}
	d, ok := r.Date()
	if !ok || !d.Equal(time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("date = %v, %v", d, ok)
	}
	if r.Body != "# Hello World\n\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r, err := Parse([]byte("# Just a heading\nSome text.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Draft() {
		t.Error("missing draft defaults to false")
	}
}

func TestParse_UnclosedFrontmatterIsBody(t *testing.T) {
	r, err := Parse([]byte("---\ntitle: x\nno closing fence\n"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Frontmatter != nil {
		t.Error("unclosed block must not be treated as frontmatter")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	if !errors.Is(err, apperr.ErrInvalidFrontmatter) {
		t.Fatalf("expected ErrInvalidFrontmatter, got %v", err)
	}
}

func TestParse_CRLF(t *testing.T) {
	r, err := Parse([]byte("---\r\ntitle: \"Windows\"\r\ntags: [\"a\"]\r\n---\r\n\r\n# Windows\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Title != "Windows" || len(r.Tags) != 1 {
		t.Errorf("title = %q tags = %v", r.Title, r.Tags)
	}
}

func TestExtractTags_SkipsNonStrings(t *testing.T) {
	tags := extractTags(map[string]any{"tags": []any{"go", 3, " ", "cli"}})
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "cli" {
		t.Errorf("tags = %v", tags)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	title := deriveTitle(map[string]any{"title": "FM Title"}, "# H1 Title\ntext")
	if title != "FM Title" {
		t.Errorf("title = %q", title)
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	if title := deriveTitle(nil, "some text\n# My Heading\nmore"); title != "My Heading" {
		t.Errorf("title = %q", title)
	}
}

func TestCoerceDate(t *testing.T) {
	cases := []struct {
		in   any
		want time.Time
	}{
		{"2026-10-18T09:30:00.123Z", time.Date(2026, 10, 18, 9, 30, 0, 123e6, time.UTC)},
		{"2026-10-18T09:30:00Z", time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)},
		{"2026-10-18", time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)},
		{"2026-10-18T09:30:00", time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)},
		{1700000000000, time.UnixMilli(1700000000000).UTC()},
	}
	for _, c := range cases {
		got, ok := CoerceDate(c.in)
		if !ok || !got.Equal(c.want) {
			t.Errorf("CoerceDate(%v) = %v, %v; want %v", c.in, got, ok, c.want)
		}
	}
	for _, bad := range []any{"yesterday", "", true, nil, []any{"2026-01-01"}} {
		if _, ok := CoerceDate(bad); ok {
			t.Errorf("CoerceDate(%v) should fail", bad)
		}
	}
}
