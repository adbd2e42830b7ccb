package tools

// Tool names - Concept Tools
const (
	ToolAddConcept            = "add_concept"
	ToolCreateMissingConcepts = "create_missing_concepts"
	ToolRetroactiveAutolink   = "retroactive_autolink"
	ToolListMissingConcepts   = "list_missing_concepts"
	ToolCalculateMissing      = "calculate_missing_concepts"
	ToolDeduplicateConcepts   = "deduplicate_concepts"
)

// Tool names - Graph Tools
const (
	ToolQueryWikiGraph    = "query_wiki_graph"
	ToolGetConceptNetwork = "get_concept_network"
	ToolGetConcept        = "get_concept"
	ToolGetRecentConcepts = "get_recent_concepts"
)

// Parameter types
const (
	TypeString = "string"
	TypeNumber = "number"
	TypeArray  = "array"
	TypeObject = "object"
)

// Parameter describes one tool argument.
type Parameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
	// Items is the element type of an array parameter.
	Items string
}

// Definition describes a tool to the surfaces that expose it.
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
	// Mutating tools change the store and are wrapped in a sync with the remote.
	Mutating bool
}

// JSONSchema renders the parameters as a JSON schema object.
func (d Definition) JSONSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(d.Parameters))
	required := []string{}
	for _, p := range d.Parameters {
		prop := map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Type == TypeArray && p.Items != "" {
			prop["items"] = map[string]interface{}{"type": p.Items}
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// GetConceptTools returns the tools that create and maintain concepts
func GetConceptTools() []Definition {
	return []Definition{
		{
			Name:        ToolAddConcept,
			Description: "Add a new concept to the knowledge graph, or rewrite an existing one. Mentions of other concepts in the text are linked and recorded as auto_related_to relationships.",
			Parameters: []Parameter{
				{Name: "concept_name", Type: TypeString, Required: true, Description: "Name of the concept (normalized to Capitalized_With_Underscores)"},
				{Name: "concept", Type: TypeString, Description: "Full conceptual content explaining the concept"},
				{Name: "relationships", Type: TypeArray, Items: TypeObject, Required: true, Description: `Relationship objects, e.g. [{"relationship": "is_a", "related": ["Parent_Concept"]}]. Use is_a Work_In_Progress when nothing better is known.`},
			},
			Mutating: true,
		},
		{
			Name:        ToolCreateMissingConcepts,
			Description: "Batch create concepts that are referenced but missing. Items without a description get a template description; items without relationships are filed under is_a Work_In_Progress.",
			Parameters: []Parameter{
				{Name: "concepts_data", Type: TypeArray, Items: TypeObject, Required: true, Description: `Items of the form {"concept_name": "...", "description": "...", "relationships": [...]}`},
			},
			Mutating: true,
		},
		{
			Name:        ToolRetroactiveAutolink,
			Description: "Re-run auto-linking over every stored concept description",
			Mutating:    true,
		},
		{
			Name:        ToolCalculateMissing,
			Description: "Rescan the whole corpus and rebuild the missing concept ledger",
			Mutating:    true,
		},
		{
			Name:        ToolListMissingConcepts,
			Description: "List concepts that are referenced but do not exist yet, with inferred relationships and similar existing concepts",
		},
		{
			Name:        ToolDeduplicateConcepts,
			Description: "Find groups of concepts that are likely duplicates of one another",
			Parameters: []Parameter{
				{Name: "similarity_threshold", Type: TypeNumber, Description: "Name similarity threshold between 0 and 1 (default 0.8)"},
			},
		},
	}
}

// GetGraphTools returns the read-only graph tools
func GetGraphTools() []Definition {
	return []Definition{
		{
			Name:        ToolQueryWikiGraph,
			Description: "Execute a read-only Cypher query on the :Wiki namespace. Nodes carry n (name), d (description), c (canonical) and t (timestamp).",
			Parameters: []Parameter{
				{Name: "cypher_query", Type: TypeString, Required: true, Description: "Cypher query targeting :Wiki (no CREATE/MERGE)"},
				{Name: "parameters", Type: TypeObject, Description: "Query parameters referenced as $name"},
			},
		},
		{
			Name:        ToolGetConceptNetwork,
			Description: "Get the concepts connected to a concept within 1 to 3 relationship hops",
			Parameters: []Parameter{
				{Name: "concept_name", Type: TypeString, Required: true, Description: "Exact concept name"},
				{Name: "depth", Type: TypeNumber, Description: "Relationship depth, 1 to 3 (default 1)"},
			},
		},
		{
			Name:        ToolGetConcept,
			Description: "Get a concept's description and all of its outgoing relationships",
			Parameters: []Parameter{
				{Name: "concept_name", Type: TypeString, Required: true, Description: "Exact concept name"},
			},
		},
		{
			Name:        ToolGetRecentConcepts,
			Description: "Get the most recently created or updated concepts",
			Parameters: []Parameter{
				{Name: "n", Type: TypeNumber, Description: "Number of concepts (default 20, max 100)"},
			},
		},
	}
}
