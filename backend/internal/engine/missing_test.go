package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLedger_ReadsRenderedEntries(t *testing.T) {
	entries := []MissingConcept{
		{
			Name: "Force",
			InferredRelationships: []InferredRelation{
				{Type: "has_instances", Sources: []string{"Gravity", "Magnetism"}},
				{Type: "supports", Sources: []string{"Motion"}},
			},
			SimilarConcepts: []string{"Forge"},
		},
		{
			Name:                  "Fruit",
			InferredRelationships: []InferredRelation{},
			SimilarConcepts:       []string{},
		},
	}

	got := ParseLedger(RenderLedger(entries))
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("ParseLedger mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLedger_IgnoresMalformedLines(t *testing.T) {
	content := "# Missing Concepts\n\n- stray: line\n## Beta\n- no separator\n**Similar existing concepts:** Alpha, Alphabet\n"

	want := []MissingConcept{{
		Name:                  "Beta",
		InferredRelationships: []InferredRelation{},
		SimilarConcepts:       []string{"Alpha", "Alphabet"},
	}}
	if diff := cmp.Diff(want, ParseLedger(content)); diff != "" {
		t.Errorf("ParseLedger mismatch (-want +got):\n%s", diff)
	}
}
