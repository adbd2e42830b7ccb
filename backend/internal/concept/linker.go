package concept

import (
	"sort"
	"strings"
)

// AutoLink rewrites description so that the first mention of every other
// existing concept becomes a markdown link to that concept's self document.
//
// Longer names are tried first and text already inside a link is never matched
// again, so "Data_Lake" wins over "Lake" and links never nest. A concept whose
// link is already present is left alone, which makes AutoLink idempotent.
func AutoLink(description string, existing []string, current string) string {
	candidates := make([]string, 0, len(existing))
	for _, name := range existing {
		if name == "" || SameConcept(name, current) {
			continue
		}
		candidates = append(candidates, name)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) > len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})

	linked := description
	for _, name := range candidates {
		if IsLinked(linked, name) {
			continue
		}

		spans := linkSpans(linked)
		start, end, ok := NewNameMatcher(name).FindFirst(linked, func(s, e int) bool {
			return overlaps(spans, s, e)
		})
		if !ok {
			continue
		}

		mention := linked[start:end]
		linked = linked[:start] + MarkdownLink(mention, name) + linked[end:]
	}
	return linked
}

// IsLinked reports whether text already carries a reference to name, either
// as a bracketed label or as a link into its directory.
func IsLinked(text, name string) bool {
	return strings.Contains(text, "["+name+"]") || strings.Contains(text, "](../"+name+"/")
}

// MarkdownLink renders label as a link to name's self document.
func MarkdownLink(label, name string) string {
	return "[" + label + "](" + SelfLink(name) + ")"
}

func linkSpans(text string) [][]int {
	return markdownLinkPattern.FindAllStringIndex(text, -1)
}

func overlaps(spans [][]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}
