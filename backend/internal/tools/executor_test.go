package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carton/backend/internal/constants"
	"carton/backend/internal/engine"
	"carton/backend/internal/graph"
	"carton/backend/internal/store"
)

type mockSyncer struct {
	calls      []string
	prepareErr error
	publishErr error
}

func (s *mockSyncer) Prepare(ctx context.Context) error {
	s.calls = append(s.calls, "prepare")
	return s.prepareErr
}

func (s *mockSyncer) Publish(ctx context.Context, message string) error {
	s.calls = append(s.calls, "publish: "+message)
	return s.publishErr
}

type mockReader struct {
	lastDepth  int
	lastRecent int
	lastParams map[string]any
}

func (m *mockReader) QueryWiki(ctx context.Context, query string, params map[string]any) ([]graph.Row, error) {
	m.lastParams = params
	return []graph.Row{{"name": graph.Value{Kind: graph.KindScalar, Scalar: "Gravity"}}}, nil
}

func (m *mockReader) GetConceptNetwork(ctx context.Context, name string, depth int) ([]graph.NetworkConnection, error) {
	m.lastDepth = depth
	return []graph.NetworkConnection{{StartConcept: name, RelationshipPath: []string{"IS_A"}, ConnectedConcept: "Force"}}, nil
}

func (m *mockReader) GetConcept(ctx context.Context, name string) (*graph.ConceptDetail, error) {
	return &graph.ConceptDetail{Name: name, Description: "A force.", Relationships: []graph.ConceptEdge{}}, nil
}

func (m *mockReader) GetRecentConcepts(ctx context.Context, n int) ([]graph.RecentConcept, error) {
	m.lastRecent = n
	return []graph.RecentConcept{{Rank: 1, Name: "Gravity"}}, nil
}

func newTestExecutor() (*Executor, *store.MemoryStore, *mockSyncer) {
	docs := store.NewMemoryStore()
	exec := NewExecutor(engine.New(docs, nil, engine.DefaultOptions()))
	syncer := &mockSyncer{}
	exec.SetSyncer(syncer)
	return exec, docs, syncer
}

func call(exec *Executor, name string, args map[string]interface{}) *ToolResult {
	return exec.Execute(context.Background(), ToolCall{Name: name, Arguments: args})
}

func isA(target string) []interface{} {
	return []interface{}{
		map[string]interface{}{"relationship": "is_a", "related": []interface{}{target}},
	}
}

func TestExecute_UnknownTool(t *testing.T) {
	exec, _, _ := newTestExecutor()
	result := call(exec, "no_such_tool", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "tool not found")
}

func TestAddConcept_SyncsAroundWrite(t *testing.T) {
	exec, docs, syncer := newTestExecutor()

	result := call(exec, ToolAddConcept, map[string]interface{}{
		"concept_name":  "apple",
		"concept":       "A fruit.",
		"relationships": isA("Fruit"),
	})
	require.True(t, result.Success, result.Error)

	assert.Equal(t, []string{"prepare", "publish: Add Apple concept"}, syncer.calls)
	ok, err := docs.Exists(context.Background(), "concepts/Apple/Apple_itself.md")
	require.NoError(t, err)
	assert.True(t, ok)

	created, isResult := result.Data.(*engine.CreateResult)
	require.True(t, isResult)
	assert.Equal(t, "Apple", created.Concept.Name)
}

func TestAddConcept_AcceptsJSONStringAndDescriptionAlias(t *testing.T) {
	exec, docs, _ := newTestExecutor()

	result := call(exec, ToolAddConcept, map[string]interface{}{
		"concept_name":  "Pear",
		"description":   "Another fruit.",
		"relationships": `[{"relationship": "is_a", "related": ["Fruit"]}]`,
	})
	require.True(t, result.Success, result.Error)

	content, err := docs.Read(context.Background(), "concepts/Pear/components/description.md")
	require.NoError(t, err)
	assert.Equal(t, "Another fruit.", content)
}

func TestAddConcept_RejectsEmptyRelationships(t *testing.T) {
	exec, docs, syncer := newTestExecutor()

	result := call(exec, ToolAddConcept, map[string]interface{}{
		"concept_name":  "Apple",
		"relationships": []interface{}{},
	})
	assert.False(t, result.Success)
	assert.Equal(t, 0, docs.Len())
	assert.Equal(t, []string{"prepare"}, syncer.calls)
}

func TestAddConcept_RejectsMalformedRelationships(t *testing.T) {
	exec, _, syncer := newTestExecutor()

	result := call(exec, ToolAddConcept, map[string]interface{}{
		"concept_name":  "Apple",
		"relationships": "[{not json",
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "malformed JSON")
	assert.Empty(t, syncer.calls)
}

func TestAddConcept_PrepareFailureWritesNothing(t *testing.T) {
	exec, docs, syncer := newTestExecutor()
	syncer.prepareErr = errors.New("remote unreachable")

	result := call(exec, ToolAddConcept, map[string]interface{}{
		"concept_name":  "Apple",
		"relationships": isA("Fruit"),
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Git setup failed")
	assert.Equal(t, 0, docs.Len())
}

func TestAddConcept_PublishFailureKeepsData(t *testing.T) {
	exec, _, syncer := newTestExecutor()
	syncer.publishErr = errors.New("rejected")

	result := call(exec, ToolAddConcept, map[string]interface{}{
		"concept_name":  "Apple",
		"relationships": isA("Fruit"),
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Git commit failed")
	assert.NotNil(t, result.Data)
}

func TestAddConcept_WithoutSyncer(t *testing.T) {
	docs := store.NewMemoryStore()
	exec := NewExecutor(engine.New(docs, nil, engine.DefaultOptions()))

	result := call(exec, ToolAddConcept, map[string]interface{}{
		"concept_name":  "Apple",
		"relationships": isA("Fruit"),
	})
	assert.True(t, result.Success, result.Error)
}

func TestCreateMissingConcepts_ReportsFailuresPerItem(t *testing.T) {
	exec, _, syncer := newTestExecutor()

	result := call(exec, ToolCreateMissingConcepts, map[string]interface{}{
		"concepts_data": []interface{}{
			map[string]interface{}{"concept_name": "Fruit"},
			map[string]interface{}{"description": "nameless"},
		},
	})
	require.True(t, result.Success, result.Error)

	data := result.Data.(map[string]interface{})
	assert.Equal(t, 1, data["created_count"])
	assert.Equal(t, 1, data["failed_count"])
	failed := data["failed_concepts"].([]engine.BatchFailure)
	assert.Equal(t, "Missing concept_name", failed[0].Error)
	assert.Equal(t, []string{"prepare", "publish: Create 1 missing concepts"}, syncer.calls)
}

func TestCreateMissingConcepts_RequiresData(t *testing.T) {
	exec, _, _ := newTestExecutor()
	result := call(exec, ToolCreateMissingConcepts, nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "concepts_data")
}

func TestRetroactiveAutolink_SkipsPublishWhenNothingChanged(t *testing.T) {
	exec, _, syncer := newTestExecutor()

	result := call(exec, ToolRetroactiveAutolink, nil)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, []string{"prepare"}, syncer.calls)
}

func TestCalculateAndListMissing(t *testing.T) {
	exec, _, syncer := newTestExecutor()

	listed := call(exec, ToolListMissingConcepts, nil)
	require.True(t, listed.Success)
	assert.Contains(t, listed.Message, "No missing concepts file found")

	require.True(t, call(exec, ToolAddConcept, map[string]interface{}{
		"concept_name":  "Apple",
		"relationships": isA("Fruit"),
	}).Success)
	syncer.calls = nil

	// The ledger was already rebuilt by add_concept, so a full scan changes nothing.
	calculated := call(exec, ToolCalculateMissing, nil)
	require.True(t, calculated.Success, calculated.Error)
	data := calculated.Data.(map[string]interface{})
	assert.Equal(t, engine.LedgerUnchanged, data["outcome"])
	assert.Equal(t, 1, data["total_count"])
	assert.Equal(t, []string{"prepare"}, syncer.calls)

	listed = call(exec, ToolListMissingConcepts, nil)
	require.True(t, listed.Success)
	missing := listed.Data.(map[string]interface{})["missing_concepts"].([]engine.MissingConcept)
	require.Len(t, missing, 1)
	assert.Equal(t, "Fruit", missing[0].Name)
}

func TestCalculateMissing_PublishesLedgerChange(t *testing.T) {
	exec, docs, syncer := newTestExecutor()
	require.True(t, call(exec, ToolAddConcept, map[string]interface{}{
		"concept_name":  "Apple",
		"relationships": isA("Fruit"),
	}).Success)
	require.NoError(t, docs.Delete(context.Background(), constants.LedgerFile))
	syncer.calls = nil

	result := call(exec, ToolCalculateMissing, nil)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, []string{"prepare", "publish: Update missing concepts tracking"}, syncer.calls)
}

func TestDeduplicate(t *testing.T) {
	exec, _, _ := newTestExecutor()
	for _, name := range []string{"Neural_Network", "Neural-Network"} {
		require.True(t, call(exec, ToolAddConcept, map[string]interface{}{
			"concept_name":  name,
			"relationships": isA("Model"),
		}).Success)
	}

	result := call(exec, ToolDeduplicateConcepts, nil)
	require.True(t, result.Success, result.Error)
	dedupe := result.Data.(*engine.DedupeResult)
	assert.Equal(t, 1, dedupe.Total)
	assert.Equal(t, 0.8, dedupe.Threshold)

	rejected := call(exec, ToolDeduplicateConcepts, map[string]interface{}{"similarity_threshold": 1.5})
	assert.False(t, rejected.Success)

	zero := call(exec, ToolDeduplicateConcepts, map[string]interface{}{"similarity_threshold": 0.0})
	require.True(t, zero.Success, zero.Error)
	assert.Equal(t, 0.0, zero.Data.(*engine.DedupeResult).Threshold)
}

func TestGraphTools_WithoutGraph(t *testing.T) {
	exec, _, _ := newTestExecutor()

	result := call(exec, ToolGetConcept, map[string]interface{}{"concept_name": "Gravity"})
	assert.False(t, result.Success)
	assert.Equal(t, errGraphUnavailable, result.Error)

	// Guards still run first.
	rejected := call(exec, ToolQueryWikiGraph, map[string]interface{}{"cypher_query": "CREATE (c:Wiki {n: 'x'})"})
	assert.False(t, rejected.Success)
	assert.Contains(t, rejected.Error, "Write operations (CREATE/MERGE) not allowed")
}

func TestQueryWikiGraph(t *testing.T) {
	exec, _, _ := newTestExecutor()
	reader := &mockReader{}
	exec.SetGraphReader(reader)

	result := call(exec, ToolQueryWikiGraph, map[string]interface{}{
		"cypher_query": "MATCH (c:Wiki) WHERE c.n = $name RETURN c.n as name",
		"parameters":   map[string]interface{}{"name": "Gravity"},
	})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "Gravity", reader.lastParams["name"])

	missingLabel := call(exec, ToolQueryWikiGraph, map[string]interface{}{"cypher_query": "MATCH (n) RETURN n"})
	assert.False(t, missingLabel.Success)
	assert.Contains(t, missingLabel.Error, "Query must target :Wiki namespace")
}

func TestGetConceptNetwork_Depth(t *testing.T) {
	exec, _, _ := newTestExecutor()
	reader := &mockReader{}
	exec.SetGraphReader(reader)

	result := call(exec, ToolGetConceptNetwork, map[string]interface{}{"concept_name": "Gravity", "depth": float64(2)})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 2, reader.lastDepth)

	result = call(exec, ToolGetConceptNetwork, map[string]interface{}{"concept_name": "Gravity"})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 1, reader.lastDepth)

	for _, depth := range []interface{}{float64(0), float64(4), 1.5} {
		rejected := call(exec, ToolGetConceptNetwork, map[string]interface{}{"concept_name": "Gravity", "depth": depth})
		assert.False(t, rejected.Success, "depth %v", depth)
	}
}

func TestGetRecentConcepts_Clamps(t *testing.T) {
	exec, _, _ := newTestExecutor()
	reader := &mockReader{}
	exec.SetGraphReader(reader)

	require.True(t, call(exec, ToolGetRecentConcepts, map[string]interface{}{"n": float64(500)}).Success)
	assert.Equal(t, 100, reader.lastRecent)

	require.True(t, call(exec, ToolGetRecentConcepts, nil).Success)
	assert.Equal(t, 20, reader.lastRecent)
}

func TestGetConcept(t *testing.T) {
	exec, _, _ := newTestExecutor()
	exec.SetGraphReader(&mockReader{})

	result := call(exec, ToolGetConcept, map[string]interface{}{"concept_name": "Gravity"})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "A force.", result.Data.(*graph.ConceptDetail).Description)

	missing := call(exec, ToolGetConcept, map[string]interface{}{})
	assert.False(t, missing.Success)
}
