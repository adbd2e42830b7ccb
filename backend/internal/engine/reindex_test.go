package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carton/backend/internal/concept"
)

func TestRebuildGraph_ReconstructsConcepts(t *testing.T) {
	graph := &mockGraph{}
	e, _ := newTestEngine(graph)
	mustCreate(t, e, "Gravity", "A force.", rels("is_a", "Force"))
	mustCreate(t, e, "Apple", "Falls because of Gravity.", concept.Relationships{
		{Type: "is_a", Targets: []string{"Fruit"}},
		{Type: "part_of", Targets: []string{"Tree", "Orchard"}},
	})
	graph.saved = nil

	result, err := e.RebuildGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Gravity"}, result.Saved)
	assert.Empty(t, result.Failed)

	require.Len(t, graph.saved, 2)
	apple := graph.saved[0]
	assert.Equal(t, "Falls because of [Gravity](../Gravity/Gravity_itself.md).", apple.Description)
	assert.Equal(t, []string{"Fruit"}, apple.Relationships.Get("is_a"))
	assert.ElementsMatch(t, []string{"Tree", "Orchard"}, apple.Relationships.Get("part_of"))
	assert.Equal(t, []string{"Gravity"}, apple.Relationships.Get("auto_related_to"))
}

func TestRebuildGraph_RequiresGraph(t *testing.T) {
	e, _ := newTestEngine(nil)
	_, err := e.RebuildGraph(context.Background())
	assert.Error(t, err)
}

func TestRebuildGraph_AllFailures(t *testing.T) {
	graph := &mockGraph{}
	e, _ := newTestEngine(graph)
	mustCreate(t, e, "Gravity", "A force.", rels("is_a", "Force"))
	graph.saveErr = errors.New("neo4j down")

	result, err := e.RebuildGraph(context.Background())
	require.Error(t, err)
	assert.Contains(t, result.Failed, "Gravity")
}
