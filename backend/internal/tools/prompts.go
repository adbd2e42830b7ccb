package tools

import (
	"sort"
	"strings"

	apperrors "carton/backend/pkg/errors"
)

const promptPreamble = "CartON Prompt Chain Triggered! This prompt is for the caller, you reading this. You need to call mcp__carton__add_concept with "

// PromptArgument is one named input of a prompt template.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
}

// Prompt is a text template that tells the caller which add_concept call to make next.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
	template    string
}

var prompts = []Prompt{
	{
		Name:        "add_user_thought",
		Description: "Capture a user thought verbatim as a concept",
		Arguments: []PromptArgument{
			{Name: "user_quote", Description: "The exact words of the user", Required: true},
			{Name: "topic", Description: "Short topic used in the concept name", Required: true},
		},
		template: promptPreamble + `concept_name="User_Thoughts_{topic}", concept containing the exact quote "{user_quote}", and relationships formatted as [{"relationship": "relates_to", "related": ["Concept1", "Concept2"]}] for any concepts mentioned in the quote, in order to capture this user thought verbatim in the knowledge graph.`,
	},
	{
		Name:        "update_known_concept",
		Description: "Merge new information into an existing concept",
		Arguments: []PromptArgument{
			{Name: "concept_name", Description: "Concept to update", Required: true},
			{Name: "current_description", Description: "The concept's current description", Required: true},
			{Name: "new_info", Description: "Information to merge in", Required: true},
		},
		template: promptPreamble + `concept_name="{concept_name}", concept that merges "{current_description}" with "{new_info}" seamlessly while preserving core meaning, and maintain all existing relationships formatted as [{"relationship": "type", "related": ["ConceptList"]}], in order to update this known concept with new information.`,
	},
	{
		Name:        "update_user_thought_train_emergently",
		Description: "Record how a user thought evolved into a later concept",
		Arguments: []PromptArgument{
			{Name: "original_concept_name", Description: "The earlier thought", Required: true},
			{Name: "original_description", Description: "Description of the earlier thought", Required: true},
			{Name: "later_concept", Description: "The concept it led to", Required: true},
			{Name: "how_it_led_to", Description: "How one led to the other", Required: true},
		},
		template: promptPreamble + `concept_name="{original_concept_name}", concept that preserves "{original_description}" but adds how it evolved to "{later_concept}" via "{how_it_led_to}", and add relationships=[{"relationship": "led_to", "related": ["{later_concept}"]}], in order to track this user thought evolution emergently.`,
	},
	{
		Name:        "sync_after_update_known_concept",
		Description: "Document a batch of concept updates for version control",
		Arguments: []PromptArgument{
			{Name: "concept_list", Description: "Concepts that were updated", Required: true},
			{Name: "change_summary", Description: "Why they were updated", Required: true},
			{Name: "sync_number", Description: "Sequence number of this sync", Default: "001"},
		},
		template: promptPreamble + `concept_name="Sync{sync_number}", concept that documents "{concept_list}" were updated because "{change_summary}" and any key insights discovered, ready for GitHub sync, in order to create sync documentation for version control.`,
	},
}

// Prompts returns every prompt template ordered by name.
func Prompts() []Prompt {
	out := make([]Prompt, len(prompts))
	copy(out, prompts)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RenderPrompt fills the named template. Every required argument must be
// present; optional ones fall back to their default.
func RenderPrompt(name string, args map[string]string) (string, error) {
	for _, p := range prompts {
		if p.Name != name {
			continue
		}
		pairs := make([]string, 0, 2*len(p.Arguments))
		for _, a := range p.Arguments {
			v, ok := args[a.Name]
			if !ok || v == "" {
				if a.Required {
					return "", apperrors.NewValidationFailed(a.Name, "is required by prompt "+name)
				}
				v = a.Default
			}
			pairs = append(pairs, "{"+a.Name+"}", v)
		}
		return strings.NewReplacer(pairs...).Replace(p.template), nil
	}
	return "", apperrors.NewValidationFailed("prompt", "unknown prompt "+name)
}
