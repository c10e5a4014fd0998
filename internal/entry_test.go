package internal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/collection"
)

type testApp struct {
	root   string
	out    bytes.Buffer
	errOut bytes.Buffer
	cfg    *Config
}

func newTestApp(t *testing.T, dirs ...string) *testApp {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "content")
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	cfg.Content.Root = root
	cfg.Catalog.Path = filepath.Join(base, ".quire", "catalog.db")
	return &testApp{root: root, cfg: cfg}
}

func (a *testApp) opts(input string) []Option {
	return []Option{
		WithConfig(a.cfg),
		WithInput(strings.NewReader(input)),
		WithOutput(&a.out),
		WithErrOutput(&a.errOut),
		WithClock(func() time.Time { return time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC) }),
	}
}

func (a *testApp) write(t *testing.T, rel, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(a.root, filepath.FromSlash(rel)), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScaffold_CreatesPost(t *testing.T) {
	a := newTestApp(t, "blog")
	err := Scaffold(context.Background(), collection.Post, a.opts("My First Post\nHello\ngo, cli\n")...)
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(a.root, "blog", "my-first-post.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "---\ntitle: \"My First Post\"\ndate: 2026-10-18T09:30:00.000Z\n") {
		t.Errorf("content = %q", data)
	}
	if !strings.Contains(a.out.String(), "✅ Blog post created at: ") {
		t.Errorf("output = %q", a.out.String())
	}
}

func TestScaffold_MissingConfig(t *testing.T) {
	if err := Scaffold(context.Background(), collection.Post); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestCheck_ReportsInvalidEntries(t *testing.T) {
	a := newTestApp(t, "blog", "til")
	a.write(t, "blog/ok.md", "---\ntitle: \"Ok\"\ndate: 2026-10-18T09:30:00.000Z\ndescription: \"d\"\ntags: []\ndraft: true\n---\n")
	a.write(t, "blog/bad.md", "---\ntitle: \"Bad\"\ndate: 2026-10-18T09:30:00.000Z\ntags: []\ndraft: true\n---\n")
	a.write(t, "til/fine.md", "---\ntitle: \"Fine\"\ndate: 2026-10-18\ntags: [\"x\"]\n---\n")

	err := Check(context.Background(), a.opts("")...)
	if !errors.Is(err, apperr.ErrInvalidFrontmatter) {
		t.Fatalf("err = %v, want ErrInvalidFrontmatter", err)
	}
	out := a.out.String()
	if !strings.Contains(out, "blog/bad.md: ") {
		t.Errorf("missing issue line for bad.md: %q", out)
	}
	if strings.Contains(out, "blog/ok.md") || strings.Contains(out, "til/fine.md") {
		t.Errorf("valid entries reported: %q", out)
	}
	if !strings.Contains(out, "checked 3 entries, 1 invalid") {
		t.Errorf("summary = %q", out)
	}
	if !strings.Contains(a.errOut.String(), "lab directory lab does not exist") {
		t.Errorf("missing dir not reported: %q", a.errOut.String())
	}
}

func TestCheck_AllValid(t *testing.T) {
	a := newTestApp(t, "blog", "til", "lab", "essays")
	a.write(t, "til/fine.md", "---\ntitle: \"Fine\"\ndate: 2026-10-18T09:30:00.000Z\ntags: []\ndraft: false\n---\n")
	if err := Check(context.Background(), a.opts("")...); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestListAndTags(t *testing.T) {
	a := newTestApp(t, "blog", "til")
	a.write(t, "blog/a.md", "---\ntitle: \"Alpha\"\ndate: 2026-10-01T00:00:00.000Z\ndescription: \"\"\ntags: [\"go\"]\ndraft: true\n---\n")
	a.write(t, "til/b.md", "---\ntitle: \"Beta\"\ndate: 2026-10-02T00:00:00.000Z\ntags: [\"go\", \"sql\"]\ndraft: false\n---\n")

	if err := List(context.Background(), ListOptions{}, a.opts("")...); err != nil {
		t.Fatalf("List: %v", err)
	}
	want := "2026-10-02         note/b  Beta\n2026-10-01  draft  post/a  Alpha\n"
	if got := a.out.String(); got != want {
		t.Errorf("list output =\n%q\nwant\n%q", got, want)
	}

	a.out.Reset()
	if err := List(context.Background(), ListOptions{Drafts: true}, a.opts("")...); err != nil {
		t.Fatalf("List drafts: %v", err)
	}
	if got := a.out.String(); got != "2026-10-01  draft  post/a  Alpha\n" {
		t.Errorf("drafts output = %q", got)
	}

	a.out.Reset()
	if err := Tags(context.Background(), "", a.opts("")...); err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if got := a.out.String(); got != "   2  go\n   1  sql\n" {
		t.Errorf("tags output = %q", got)
	}
}

func TestList_UnknownKind(t *testing.T) {
	a := newTestApp(t)
	err := List(context.Background(), ListOptions{Kind: "recipe"}, a.opts("")...)
	if !errors.Is(err, apperr.ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}
