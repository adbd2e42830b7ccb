package engine

import "carton/backend/internal/concept"

// InferredRelation is one inverse-relation bucket of a missing concept.
type InferredRelation struct {
	Type    string   `json:"type"`
	Sources []string `json:"related"`
}

// InferRelationships works out the relationships a not-yet-existing concept
// would have from the invertible relation documents that link to it. A source
// referencing missing through several relation types contributes once per type;
// repeats are kept.
func InferRelationships(missing string, snap *Snapshot) []InferredRelation {
	var inferred []InferredRelation
	for _, c := range snap.Concepts {
		for _, rel := range c.Relations {
			inverse, ok := concept.Inverse(rel.Type)
			if !ok || !concept.LinksTo(rel.Content, missing) {
				continue
			}
			inferred = appendInferred(inferred, inverse, c.Name)
		}
	}
	return inferred
}

func appendInferred(inferred []InferredRelation, relType, source string) []InferredRelation {
	for i := range inferred {
		if inferred[i].Type == relType {
			inferred[i].Sources = append(inferred[i].Sources, source)
			return inferred
		}
	}
	return append(inferred, InferredRelation{Type: relType, Sources: []string{source}})
}
