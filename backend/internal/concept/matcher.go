package concept

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NameMatcher finds whole-word, case-insensitive mentions of one concept name
// under any of its accepted surface variations.
type NameMatcher struct {
	name       string
	variations []string
	patterns   []*regexp.Regexp
}

// NewNameMatcher builds the matcher for a canonical concept name.
func NewNameMatcher(name string) *NameMatcher {
	m := &NameMatcher{name: name, variations: Variations(name)}
	m.patterns = make([]*regexp.Regexp, len(m.variations))
	for i, v := range m.variations {
		m.patterns[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(v))
	}
	return m
}

// Name returns the concept name the matcher was built for.
func (m *NameMatcher) Name() string {
	return m.name
}

// Variations returns the distinct surface forms of name, exact form first:
// verbatim, spaced, title-cased spaced, upper (both forms), lower (both forms).
func Variations(name string) []string {
	spaced := Spaced(name)
	candidates := []string{
		name,
		spaced,
		TitleCase(spaced),
		strings.ToUpper(name),
		strings.ToUpper(spaced),
		strings.ToLower(name),
		strings.ToLower(spaced),
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Variations returns the matcher's surface forms in trial order.
func (m *NameMatcher) Variations() []string {
	return m.variations
}

// Matches reports whether any variation occurs anywhere in text.
func (m *NameMatcher) Matches(text string) bool {
	_, _, ok := m.FindFirst(text, nil)
	return ok
}

// FindFirst returns the byte span of the first occurrence of the first
// variation that matches, ignoring occurrences for which skip returns true.
// A nil skip accepts every occurrence.
func (m *NameMatcher) FindFirst(text string, skip func(start, end int) bool) (int, int, bool) {
	for _, p := range m.patterns {
		from := 0
		for from <= len(text) {
			loc := p.FindStringIndex(text[from:])
			if loc == nil {
				break
			}
			start, end := from+loc[0], from+loc[1]
			if wholeWord(text, start, end) && (skip == nil || !skip(start, end)) {
				return start, end, true
			}
			// Resume one rune past the rejected start so overlapping hits are still tried.
			_, size := utf8.DecodeRuneInString(text[start:])
			if size == 0 {
				break
			}
			from = start + size
		}
	}
	return 0, 0, false
}

// wholeWord reports whether text[start:end] is bounded on both sides by the
// text edge or a rune that cannot be part of a word. RE2's \b only knows
// ASCII word characters, so accented letters are checked here instead.
func wholeWord(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
