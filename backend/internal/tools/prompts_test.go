package tools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "carton/backend/pkg/errors"
)

func TestPrompts_SharePreamble(t *testing.T) {
	all := Prompts()
	require.Len(t, all, 4)
	for _, p := range all {
		assert.True(t, strings.HasPrefix(p.template, promptPreamble), p.Name)
	}
	assert.Equal(t, "add_user_thought", all[0].Name)
}

func TestRenderPrompt_AddUserThought(t *testing.T) {
	text, err := RenderPrompt("add_user_thought", map[string]string{
		"user_quote": "graphs are just lists with opinions",
		"topic":      "Graphs",
	})
	require.NoError(t, err)
	assert.Contains(t, text, `concept_name="User_Thoughts_Graphs"`)
	assert.Contains(t, text, `the exact quote "graphs are just lists with opinions"`)
	assert.NotContains(t, text, "{")
}

func TestRenderPrompt_EvolutionRepeatsLaterConcept(t *testing.T) {
	text, err := RenderPrompt("update_user_thought_train_emergently", map[string]string{
		"original_concept_name": "Idea_A",
		"original_description":  "first idea",
		"later_concept":         "Idea_B",
		"how_it_led_to":         "iteration",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(text, "Idea_B"))
	assert.Contains(t, text, `"related": ["Idea_B"]`)
}

func TestRenderPrompt_SyncNumberDefault(t *testing.T) {
	text, err := RenderPrompt("sync_after_update_known_concept", map[string]string{
		"concept_list":   "Gravity, Apple",
		"change_summary": "clarified",
	})
	require.NoError(t, err)
	assert.Contains(t, text, `concept_name="Sync001"`)

	text, err = RenderPrompt("sync_after_update_known_concept", map[string]string{
		"concept_list":   "Gravity",
		"change_summary": "clarified",
		"sync_number":    "042",
	})
	require.NoError(t, err)
	assert.Contains(t, text, `concept_name="Sync042"`)
}

func TestRenderPrompt_Errors(t *testing.T) {
	_, err := RenderPrompt("update_known_concept", map[string]string{"concept_name": "Gravity"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = RenderPrompt("nope", nil)
	assert.Error(t, err)
}

func TestDefinitions(t *testing.T) {
	all := GetAllTools()
	assert.Len(t, all, 10)

	def, ok := FindTool(ToolAddConcept)
	require.True(t, ok)
	assert.True(t, def.Mutating)

	schema := def.JSONSchema()
	assert.Equal(t, []string{"concept_name", "relationships"}, schema["required"])
	props := schema["properties"].(map[string]interface{})
	assert.Contains(t, props, "concept")

	_, ok = FindTool("missing")
	assert.False(t, ok)
}
