// Package schema mirrors the site's content-collection schemas and validates
// frontmatter against them, so quire never writes an entry the site would
// reject.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/starford/quire/internal/collection"
	"github.com/starford/quire/internal/parser"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

var printer = message.NewPrinter(language.English)

// Result contains the outcome of validating one entry.
type Result struct {
	Valid  bool
	Issues []Issue
}

// Issue is a single schema violation.
type Issue struct {
	Path    string // JSON pointer into the frontmatter, e.g. "/tags/0"
	Keyword string // failing schema keyword, e.g. "type"
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Validator holds one compiled schema per collection kind.
type Validator struct {
	schemas map[collection.Kind]*jsonschema.Schema
}

// New compiles the embedded schema of every collection kind.
func New() (*Validator, error) {
	v := &Validator{schemas: make(map[collection.Kind]*jsonschema.Schema)}
	c := jsonschema.NewCompiler()
	for _, info := range collection.All() {
		name := info.Name + ".schema.json"
		raw, err := schemaFS.ReadFile("schema/" + name)
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", name, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("schema: unmarshal %s: %w", name, err)
		}
		if err := c.AddResource(name, doc); err != nil {
			return nil, fmt.Errorf("schema: add %s: %w", name, err)
		}
		compiled, err := c.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("schema: compile %s: %w", name, err)
		}
		v.schemas[info.Kind] = compiled
	}
	return v, nil
}

// Validate checks decoded frontmatter against the schema of kind.
// The error return is for conversion failures; violations are in Result.
func (v *Validator) Validate(kind collection.Kind, fm map[string]any) (*Result, error) {
	sch, ok := v.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("schema: no schema for %s", kind)
	}
	if fm == nil {
		fm = map[string]any{}
	}

	jsonData, err := json.Marshal(normalize(fm))
	if err != nil {
		return nil, fmt.Errorf("schema: convert to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("schema: prepare instance: %w", err)
	}

	var issues []Issue
	if err := sch.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("schema: validate: %w", err)
		}
		issues = extractIssues(ve)
	}
	if raw, ok := fm["date"]; ok && !hasIssueAt(issues, "/date") {
		if _, ok := parser.CoerceDate(raw); !ok {
			issues = append(issues, Issue{
				Path:    "/date",
				Keyword: "format",
				Message: fmt.Sprintf("%v is not a valid date", raw),
			})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return &Result{Valid: len(issues) == 0, Issues: issues}, nil
}

// ValidateDocument parses a whole content file and validates its frontmatter.
func (v *Validator) ValidateDocument(kind collection.Kind, data []byte) (*Result, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return &Result{Issues: []Issue{{Keyword: "frontmatter", Message: err.Error()}}}, nil
	}
	if res.Frontmatter == nil {
		return &Result{Issues: []Issue{{Keyword: "frontmatter", Message: "missing frontmatter block"}}}, nil
	}
	return v.Validate(kind, res.Frontmatter)
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []Issue {
	var issues []Issue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return []Issue{{Message: ve.Error()}}
	}
	return dedupe(issues)
}

func collectIssues(ve *jsonschema.ValidationError, issues *[]Issue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectIssues(cause, issues)
		}
		return
	}

	path := ""
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	keyword, msg := "", ""
	if ve.ErrorKind != nil {
		if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
			keyword = kw[len(kw)-1]
		}
		msg = ve.ErrorKind.LocalizedString(printer)
	}
	if keyword == "" || keyword == "allOf" || keyword == "$ref" {
		return
	}
	*issues = append(*issues, Issue{Path: path, Keyword: keyword, Message: msg})
}

func dedupe(issues []Issue) []Issue {
	seen := make(map[string]bool, len(issues))
	var out []Issue
	for _, is := range issues {
		key := is.Path + "|" + is.Keyword + "|" + is.Message
		if !seen[key] {
			seen[key] = true
			out = append(out, is)
		}
	}
	return out
}

func hasIssueAt(issues []Issue, path string) bool {
	for _, is := range issues {
		if is.Path == path {
			return true
		}
	}
	return false
}

// normalize converts YAML-decoded values into JSON-encodable ones.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = normalize(item)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, item := range val {
			a[i] = normalize(item)
		}
		return a
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}
