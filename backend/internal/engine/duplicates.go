package engine

import (
	"strings"

	"carton/backend/internal/concept"

	apperrors "carton/backend/pkg/errors"
)

// Reasons attached to a duplicate group.
const (
	ReasonCaseVariations    = "Case variations of the same concept"
	ReasonFormatting        = "Different formatting (underscores, spaces, hyphens)"
	ReasonExactDuplicates   = "Exact duplicates"
	ReasonTextualSimilarity = "High textual similarity"
)

// DuplicateGroup is a set of concepts that likely denote the same thing.
type DuplicateGroup struct {
	Concepts []concept.Summary `json:"group"`
	Reasons  []string        `json:"similarity_reasons"`
}

// DetectDuplicates groups likely duplicates in a single forward pass. Each
// unconsumed concept seeds a group and absorbs every later unconsumed concept
// that matches the seed; matching is not transitive, so A~B and B~C with A≁C
// leaves C out of A's group. Singleton groups are dropped.
func DetectDuplicates(concepts []concept.Summary, threshold float64) ([]DuplicateGroup, error) {
	if threshold < 0 || threshold > 1 {
		return nil, apperrors.NewValidationFailed("similarity_threshold", "must be between 0 and 1")
	}

	groups := []DuplicateGroup{}
	consumed := make([]bool, len(concepts))
	for i, seed := range concepts {
		if consumed[i] {
			continue
		}
		group := []concept.Summary{seed}
		for j := i + 1; j < len(concepts); j++ {
			if consumed[j] {
				continue
			}
			if likelyDuplicate(seed.Name, concepts[j].Name, threshold) {
				group = append(group, concepts[j])
				consumed[j] = true
			}
		}
		if len(group) > 1 {
			consumed[i] = true
			groups = append(groups, DuplicateGroup{
				Concepts: group,
				Reasons:  similarityReasons(group),
			})
		}
	}
	return groups, nil
}

func likelyDuplicate(a, b string, threshold float64) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if Ratio(la, lb) >= threshold {
		return true
	}
	if stripSeparators(la) == stripSeparators(lb) {
		return true
	}
	return strings.ReplaceAll(la, "_", " ") == strings.ReplaceAll(lb, "_", " ")
}

func stripSeparators(s string) string {
	return strings.NewReplacer("_", "", "-", "").Replace(s)
}

func spaceSeparators(s string) string {
	return strings.NewReplacer("_", " ", "-", " ").Replace(s)
}

// similarityReasons tests the group as a whole. Each reason applies when
// normalizing names its way collapses at least two of them, so one group can
// carry several reasons at once.
func similarityReasons(group []concept.Summary) []string {
	var reasons []string
	if collapses(group, strings.ToLower) {
		reasons = append(reasons, ReasonCaseVariations)
	}
	if collapses(group, func(s string) string { return spaceSeparators(strings.ToLower(s)) }) {
		reasons = append(reasons, ReasonFormatting)
	}
	if collapses(group, func(s string) string { return s }) {
		reasons = append(reasons, ReasonExactDuplicates)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, ReasonTextualSimilarity)
	}
	return reasons
}

// collapses reports whether normalize maps two names of the group to the same string.
func collapses(group []concept.Summary, normalize func(string) string) bool {
	seen := make(map[string]struct{}, len(group))
	for _, c := range group {
		seen[normalize(c.Name)] = struct{}{}
	}
	return len(seen) < len(group)
}
