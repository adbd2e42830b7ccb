package constants

// Corpus layout
const (
	// ConceptsDir is the document-store prefix holding one directory per concept
	ConceptsDir = "concepts"

	// ComponentsDir holds a concept's per-relation and description documents
	ComponentsDir = "components"

	// LedgerFile is the derived missing-concept ledger at the store root
	LedgerFile = "missing_concepts.md"

	// DocumentExt is the extension of every derived document
	DocumentExt = ".md"
)

// Relation constants
const (
	// AutoRelatedTo is the bucket filled only by mention scanning
	AutoRelatedTo = "auto_related_to"

	// WorkInProgress is the placeholder parent for concepts created without relationships
	WorkInProgress = "Work_In_Progress"

	// DescriptionRelation is the components entry that is not a relation
	DescriptionRelation = "description"
)

// Similarity defaults
const (
	// DefaultSuggestionCutoff is the minimum score for a ledger suggestion
	DefaultSuggestionCutoff = 0.6

	// DefaultMaxSuggestions caps suggestions per missing concept
	DefaultMaxSuggestions = 3

	// DefaultDuplicateThreshold is the name-similarity threshold for duplicate grouping
	DefaultDuplicateThreshold = 0.8
)

// Graph query limits
const (
	// MinNetworkDepth and MaxNetworkDepth bound concept network traversal
	MinNetworkDepth = 1
	MaxNetworkDepth = 3

	// DefaultRecentConcepts and MaxRecentConcepts bound get_recent_concepts
	DefaultRecentConcepts = 20
	MaxRecentConcepts     = 100

	// WikiLabel is the node label every concept lives under
	WikiLabel = "Wiki"
)
