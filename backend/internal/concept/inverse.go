package concept

// Invertible relation types, in the order scans visit them.
const (
	RelIsA          = "is_a"
	RelPartOf       = "part_of"
	RelDependsOn    = "depends_on"
	RelInstantiates = "instantiates"
	RelRelatesTo    = "relates_to"
)

var inverseRelations = map[string]string{
	RelIsA:          "has_instances",
	RelPartOf:       "has_parts",
	RelDependsOn:    "supports",
	RelInstantiates: "has_instances",
	RelRelatesTo:    RelRelatesTo,
}

// Inverse returns the relation type that holds in the reverse direction.
// Types outside the fixed table have no inverse.
func Inverse(relType string) (string, bool) {
	inv, ok := inverseRelations[relType]
	return inv, ok
}

// IsInvertible reports whether relType participates in inverse inference.
func IsInvertible(relType string) bool {
	_, ok := inverseRelations[relType]
	return ok
}
