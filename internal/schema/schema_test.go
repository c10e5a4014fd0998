package schema

import (
	"strings"
	"testing"

	"github.com/starford/quire/internal/collection"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}

func TestNew_CompilesEveryKind(t *testing.T) {
	v := newValidator(t)
	for _, info := range collection.All() {
		if v.schemas[info.Kind] == nil {
			t.Errorf("no schema compiled for %s", info.Name)
		}
	}
}

func TestValidate_ValidPost(t *testing.T) {
	v := newValidator(t)
	res, err := v.Validate(collection.Post, map[string]any{
		"title":       "Hello World",
		"date":        "2026-10-18T09:30:00.000Z",
		"description": "A test",
		"tags":        []any{"x", "y"},
		"draft":       true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid {
		t.Fatalf("expected valid, issues: %v", res.Issues)
	}
}

func TestValidate_PostMissingDescription(t *testing.T) {
	v := newValidator(t)
	res, err := v.Validate(collection.Post, map[string]any{
		"title": "Hello",
		"date":  "2026-10-18",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Fatal("post without description must be invalid")
	}
	if !strings.Contains(res.Issues[0].Message, "description") {
		t.Errorf("issue should name description: %v", res.Issues)
	}
}

func TestValidate_NoteNeedsNoDescription(t *testing.T) {
	v := newValidator(t)
	res, err := v.Validate(collection.Note, map[string]any{
		"title": "Quick one",
		"date":  "2026-10-18T09:30:00.000Z",
		"tags":  []any{},
		"draft": false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid {
		t.Fatalf("issues: %v", res.Issues)
	}
}

func TestValidate_TypeErrors(t *testing.T) {
	v := newValidator(t)
	res, err := v.Validate(collection.Note, map[string]any{
		"title": "T",
		"date":  "2026-10-18",
		"tags":  []any{"ok", 42},
		"draft": "yes",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Fatal("expected invalid")
	}
	paths := map[string]bool{}
	for _, is := range res.Issues {
		paths[is.Path] = true
	}
	if !paths["/tags/1"] || !paths["/draft"] {
		t.Errorf("issues = %v", res.Issues)
	}
}

func TestValidate_UncoercibleDate(t *testing.T) {
	v := newValidator(t)
	res, err := v.Validate(collection.Note, map[string]any{
		"title": "T",
		"date":  "last tuesday",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid || len(res.Issues) != 1 || res.Issues[0].Path != "/date" {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestValidateDocument(t *testing.T) {
	v := newValidator(t)

	res, err := v.ValidateDocument(collection.Note, []byte("# no frontmatter\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid || res.Issues[0].Keyword != "frontmatter" {
		t.Errorf("issues = %v", res.Issues)
	}

	res, err = v.ValidateDocument(collection.Note, []byte("---\ntitle: [unclosed\n---\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Error("broken YAML must be invalid")
	}

	res, err = v.ValidateDocument(collection.Note, []byte("---\ntitle: \"ok\"\ndate: 2026-10-18T09:30:00.000Z\ntags: []\ndraft: false\n---\n\n# ok\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid {
		t.Errorf("issues = %v", res.Issues)
	}
}

func TestIssueString(t *testing.T) {
	if got := (Issue{Path: "/draft", Message: "got string, want boolean"}).String(); got != "/draft: got string, want boolean" {
		t.Errorf("String = %q", got)
	}
	if got := (Issue{Message: "missing"}).String(); got != "missing" {
		t.Errorf("String = %q", got)
	}
}
