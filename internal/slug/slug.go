// Package slug derives filesystem- and URL-safe identifiers from titles.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Derive returns the slug for title.
//
// Accented Latin letters are folded to ASCII, the result is lowercased,
// everything except [a-z0-9], whitespace, '-' and '_' is removed, and each
// run of whitespace, '-' or '_' becomes a single '-'. The output never
// starts or ends with '-' and Derive(Derive(s)) == Derive(s).
func Derive(title string) string {
	folded := fold(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(folded))
	pending := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		case r == '-', r == '_', unicode.IsSpace(r):
			pending = true
		}
	}
	return b.String()
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
