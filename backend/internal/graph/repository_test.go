package graph

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carton/backend/internal/concept"
	apperrors "carton/backend/pkg/errors"
)

func TestValidateReadQuery(t *testing.T) {
	tests := []struct {
		query string
		ok    bool
	}{
		{"MATCH (c:Wiki) RETURN c.n", true},
		{"MATCH (c:Wiki)-[r]->(d:Wiki) WHERE c.n = $name RETURN type(r), d.n", true},
		{"MATCH (c:Wiki) create (x:Wiki)", false},
		{"MERGE (c:Wiki {n: 'x'})", false},
		{"MATCH (c:Agent) RETURN c", false},
		{"MATCH (c:wiki) RETURN c", false},
	}

	for _, tt := range tests {
		err := ValidateReadQuery(tt.query)
		if tt.ok {
			assert.NoError(t, err, tt.query)
			continue
		}
		require.Error(t, err, tt.query)
		assert.True(t, apperrors.IsValidation(err))
	}
}

func TestValidateDepth(t *testing.T) {
	for _, depth := range []int{1, 2, 3} {
		assert.NoError(t, ValidateDepth(depth))
	}
	for _, depth := range []int{0, 4, -1} {
		assert.Error(t, ValidateDepth(depth))
	}
	assert.Contains(t, networkQuery(2), "[r*1..2]")
}

func TestClampRecent(t *testing.T) {
	assert.Equal(t, 20, ClampRecent(0))
	assert.Equal(t, 5, ClampRecent(5))
	assert.Equal(t, 100, ClampRecent(500))
}

func TestSanitizeRelType(t *testing.T) {
	assert.Equal(t, "IS_A", sanitizeRelType("is_a"))
	assert.Equal(t, "LED_TO", sanitizeRelType("led to"))
	assert.Equal(t, "DEPENDS_ON", sanitizeRelType("depends-on"))
	assert.Equal(t, "X_DROP", sanitizeRelType("x`]) DROP"))
	assert.Equal(t, "", sanitizeRelType("()"))
}

func TestFromDriver(t *testing.T) {
	node := dbtype.Node{Labels: []string{"Wiki"}, Props: map[string]any{"n": "Gravity", "d": "A force."}}
	rel := dbtype.Relationship{Type: "IS_A", Props: map[string]any{"ts": "2024"}}
	path := dbtype.Path{Nodes: []dbtype.Node{node}, Relationships: []dbtype.Relationship{rel}}
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	row := map[string]any{
		"node":  node,
		"rel":   rel,
		"path":  path,
		"list":  []any{int64(1), "two"},
		"when":  stamp,
		"plain": "text",
	}

	got := FromDriver(row)
	require.Equal(t, KindMap, got.Kind)
	assert.Equal(t, KindNode, got.Entries["node"].Kind)
	assert.Equal(t, KindRelationship, got.Entries["rel"].Kind)
	assert.Equal(t, KindPath, got.Entries["path"].Kind)
	assert.Equal(t, KindList, got.Entries["list"].Kind)

	assert.Equal(t, map[string]any{
		"node": map[string]any{"n": "Gravity", "d": "A force."},
		"rel": map[string]any{
			"type":              "Relationship",
			"relationship_type": "IS_A",
			"properties":        map[string]any{"ts": "2024"},
		},
		"path": map[string]any{
			"nodes": []any{map[string]any{"n": "Gravity", "d": "A force."}},
			"relationships": []any{map[string]any{
				"type":              "Relationship",
				"relationship_type": "IS_A",
				"properties":        map[string]any{"ts": "2024"},
			}},
		},
		"list":  []any{int64(1), "two"},
		"when":  "2024-05-01T12:00:00Z",
		"plain": "text",
	}, got.Interface())

	encoded, err := json.Marshal(got.Entries["node"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":"Gravity","d":"A force."}`, string(encoded))
}

func TestRowFromRecord(t *testing.T) {
	record := &neo4j.Record{Keys: []string{"name", "count"}, Values: []any{"Gravity", int64(3)}}
	row := RowFromRecord(record)
	assert.Equal(t, "Gravity", row["name"].Interface())
	assert.Equal(t, int64(3), row["count"].Interface())
}

// The tests below require a running Neo4j instance at bolt://localhost:7687.

func TestRepository_SaveAndGetConcept(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Skipf("Neo4j not available: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver, "")
	name := "Test_concept_" + time.Now().Format("20060102150405")
	target := name + "_parent"

	defer func() {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (c:Wiki) WHERE c.n IN $names DETACH DELETE c", map[string]interface{}{
			"names": []string{name, concept.Canonical(target)},
		})
	}()

	require.NoError(t, repo.EnsureIndexes(ctx))
	require.NoError(t, repo.SaveConcept(ctx, concept.Concept{
		Name:          name,
		Description:   "Integration test concept.",
		Relationships: concept.Relationships{{Type: "is_a", Targets: []string{target}}},
	}))

	detail, err := repo.GetConcept(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "Integration test concept.", detail.Description)
	assert.Equal(t, []ConceptEdge{{Type: "IS_A", Target: concept.Canonical(target)}}, detail.Relationships)

	network, err := repo.GetConceptNetwork(ctx, name, 1)
	require.NoError(t, err)
	require.Len(t, network, 1)
	assert.Equal(t, []string{"IS_A"}, network[0].RelationshipPath)

	rows, err := repo.QueryWiki(ctx, "MATCH (c:Wiki {n: $name}) RETURN c", map[string]any{"name": name})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, KindNode, rows[0]["c"].Kind)

	recent, err := repo.GetRecentConcepts(ctx, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)
}

func TestRepository_GetConcept_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Skipf("Neo4j not available: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver, "")
	_, err = repo.GetConcept(ctx, "non-existent-concept")
	var notFound *apperrors.ErrConceptNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestRepository_ResetWiki(t *testing.T) {
	if testing.Short() || os.Getenv("CARTON_TEST_RESET") == "" {
		t.Skip("Skipping destructive integration test; set CARTON_TEST_RESET to run")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Skipf("Neo4j not available: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver, "")
	require.NoError(t, repo.SaveConcept(ctx, concept.Concept{
		Name:          "Reset_probe",
		Description:   "Deleted by the reset test.",
		Relationships: concept.Relationships{{Type: "is_a", Targets: []string{"Reset_probe_parent"}}},
	}))

	deleted, err := repo.ResetWiki(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, 2)

	summaries, err := repo.ListConceptSummaries(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func createTestDriver() (neo4j.DriverWithContext, error) {
	uri := "bolt://localhost:7687"
	user := "neo4j"
	password := "password"

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return driver, nil
}
