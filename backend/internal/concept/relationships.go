package concept

// Relation is one typed bucket of ordered relationship targets.
type Relation struct {
	Type    string   `json:"relationship"`
	Targets []string `json:"related"`
}

// Relationships keeps relation buckets in insertion order; rendering depends on it.
type Relationships []Relation

// Set replaces the targets of relType, keeping the bucket's original position
// when it already exists.
func (r Relationships) Set(relType string, targets []string) Relationships {
	copied := append([]string(nil), targets...)
	for i := range r {
		if r[i].Type == relType {
			r[i].Targets = copied
			return r
		}
	}
	return append(r, Relation{Type: relType, Targets: copied})
}

// Append adds targets to the end of relType's bucket, creating it when absent.
func (r Relationships) Append(relType string, targets ...string) Relationships {
	if len(targets) == 0 {
		return r
	}
	for i := range r {
		if r[i].Type == relType {
			r[i].Targets = append(r[i].Targets, targets...)
			return r
		}
	}
	return append(r, Relation{Type: relType, Targets: append([]string(nil), targets...)})
}

// Get returns the targets of relType, or nil.
func (r Relationships) Get(relType string) []string {
	for _, rel := range r {
		if rel.Type == relType {
			return rel.Targets
		}
	}
	return nil
}

// Types lists relation types in insertion order.
func (r Relationships) Types() []string {
	types := make([]string, 0, len(r))
	for _, rel := range r {
		types = append(types, rel.Type)
	}
	return types
}

// Count is the total number of targets across all buckets.
func (r Relationships) Count() int {
	n := 0
	for _, rel := range r {
		n += len(rel.Targets)
	}
	return n
}

// Clone returns a deep copy.
func (r Relationships) Clone() Relationships {
	out := make(Relationships, 0, len(r))
	for _, rel := range r {
		out = append(out, Relation{Type: rel.Type, Targets: append([]string(nil), rel.Targets...)})
	}
	return out
}
