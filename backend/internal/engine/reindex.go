package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"carton/backend/internal/concept"
	apperrors "carton/backend/pkg/errors"
)

// ReindexResult reports a graph rebuild from the document corpus.
type ReindexResult struct {
	Saved  []string          `json:"saved_concepts"`
	Failed map[string]string `json:"failed_concepts"`
	Total  int               `json:"total_saved"`
}

// ConceptsFromSnapshot reconstructs every concept held in snap from its
// description and relation documents.
func ConceptsFromSnapshot(snap *Snapshot) []concept.Concept {
	descriptions := make(map[string]string, len(snap.Concepts))
	for _, doc := range snap.Documents {
		descriptions[doc.Path] = doc.Content
	}

	concepts := make([]concept.Concept, 0, len(snap.Concepts))
	for _, rec := range snap.Concepts {
		c := concept.Concept{
			Name:        rec.Name,
			Description: descriptions[concept.DescriptionPath(rec.Name)],
		}
		for _, rel := range rec.Relations {
			c.Relationships = c.Relationships.Append(rel.Type, concept.ReferencedConcepts(rel.Content)...)
		}
		concepts = append(concepts, c)
	}
	return concepts
}

// RebuildGraph saves every stored concept to the graph. Documents stay the
// source of truth; a concept that fails to save is reported and skipped.
func (e *Engine) RebuildGraph(ctx context.Context) (*ReindexResult, error) {
	if e.graph == nil {
		return nil, errors.New("graph store not configured")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := LoadSnapshot(ctx, e.docs, e.opts.LoadConcurrency)
	if err != nil {
		return nil, err
	}

	result := &ReindexResult{Saved: []string{}, Failed: map[string]string{}}
	for _, c := range ConceptsFromSnapshot(snap) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.graph.SaveConcept(ctx, c); err != nil {
			e.logger.Warn("Failed to save concept to graph", zap.String("concept", c.Name), zap.Error(err))
			result.Failed[c.Name] = err.Error()
			continue
		}
		result.Saved = append(result.Saved, c.Name)
	}
	result.Total = len(result.Saved)

	e.logger.Info("Graph rebuilt from documents",
		zap.Int("saved", result.Total),
		zap.Int("failed", len(result.Failed)),
	)
	if result.Total == 0 && len(result.Failed) > 0 {
		return result, apperrors.NewBaseError(apperrors.ErrorTypeGraph, "no concept could be saved", nil)
	}
	return result, nil
}
