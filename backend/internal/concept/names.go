// Package concept holds the pure concept model: name canonicalization, surface
// variation matching, auto-linking, mention scanning, the inverse-relation
// table and rendering of the per-concept derived documents.
package concept

import (
	"strings"
	"unicode"
)

// Canonical returns the identifier a concept is stored under: spaces become
// underscores, the first letter is upper-cased and the rest lower-cased.
// Canonical(Canonical(x)) == Canonical(x).
func Canonical(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	runes := []rune(name)
	for i, r := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(r)
		} else {
			runes[i] = unicode.ToLower(r)
		}
	}
	return string(runes)
}

// Key is the identity two names share when they denote the same concept.
func Key(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// SameConcept reports whether two names denote the same concept.
func SameConcept(a, b string) bool {
	return Key(a) == Key(b)
}

// Spaced replaces underscores with spaces.
func Spaced(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// TitleCase upper-cases the first letter of every run of letters and
// lower-cases the rest. Any non-letter starts a new run, so "is_a" becomes "Is_A".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
