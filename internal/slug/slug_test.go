package slug

import (
	"strings"
	"testing"
)

func TestDerive_Basic(t *testing.T) {
	cases := map[string]string{
		"My First Post":            "my-first-post",
		"Hello, World!":            "hello-world",
		"  padded   title  ":       "padded-title",
		"already-a-slug":           "already-a-slug",
		"dash -- and  spaces":      "dash-and-spaces",
		"-leading and trailing-":   "leading-and-trailing",
		"snake_case_title":         "snake-case-title",
		"Go 1.25: what's new?":     "go-125-whats-new",
		"Café au lait":             "cafe-au-lait",
		"tabs\tand\nnewlines":      "tabs-and-newlines",
		"!!!":                      "",
		"":                         "",
		"日本語 and English":          "and-english",
		"C++ & Rust: a comparison": "c-rust-a-comparison",
	}
	for in, want := range cases {
		if got := Derive(in); got != want {
			t.Errorf("Derive(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDerive_Idempotent(t *testing.T) {
	inputs := []string{
		"My First Post",
		"  --weird__input--  ",
		"Ünïcödé Tïtlé",
		"a - b - c",
		"x",
		"",
		"!!!hello???",
	}
	for _, in := range inputs {
		once := Derive(in)
		if twice := Derive(once); twice != once {
			t.Errorf("Derive not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestDerive_Alphabet(t *testing.T) {
	inputs := []string{
		"Hello World",
		"  -- Leading hyphens",
		"Trailing hyphens --  ",
		"Mixed   ---   separators___here",
		"Symbols #$%^&*() everywhere",
	}
	for _, in := range inputs {
		s := Derive(in)
		if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
			t.Errorf("Derive(%q) = %q has edge hyphen", in, s)
		}
		if strings.Contains(s, "--") {
			t.Errorf("Derive(%q) = %q has consecutive hyphens", in, s)
		}
		for _, r := range s {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
				t.Errorf("Derive(%q) = %q contains %q", in, s, r)
			}
		}
	}
}
