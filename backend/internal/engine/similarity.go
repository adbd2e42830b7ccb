package engine

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// Ratio scores how alike two strings are, character by character, in [0, 1]
// as 2*M/T where M is the number of matched characters and T the total length.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

// CloseMatches returns up to n of possibilities scoring at least cutoff
// against word, best first. Equal scores are ordered by descending string.
func CloseMatches(word string, possibilities []string, n int, cutoff float64) []string {
	if n <= 0 {
		return nil
	}

	type scored struct {
		score float64
		value string
	}

	target := chars(word)
	var hits []scored
	for _, p := range possibilities {
		score := difflib.NewMatcher(chars(p), target).Ratio()
		if score >= cutoff {
			hits = append(hits, scored{score: score, value: p})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].value > hits[j].value
	})
	if len(hits) > n {
		hits = hits[:n]
	}

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.value)
	}
	return out
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
