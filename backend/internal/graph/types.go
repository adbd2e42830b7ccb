package graph

// NetworkConnection is one path from the start concept to a connected concept.
type NetworkConnection struct {
	StartConcept         string   `json:"start_concept"`
	RelationshipPath     []string `json:"relationship_path"`
	ConnectedConcept     string   `json:"connected_concept"`
	ConnectedDescription string   `json:"connected_description"`
}

// ConceptEdge is an outgoing typed edge of a concept.
type ConceptEdge struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// ConceptDetail is a concept node with its outgoing edges.
type ConceptDetail struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Relationships []ConceptEdge `json:"relationships"`
}

// RecentConcept is a concept ranked by its last write time.
type RecentConcept struct {
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}
