package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindNode
	KindRelationship
	KindPath
	KindList
	KindMap
)

// Value is a driver result value converted once at the repository boundary.
// Exactly the fields of its Kind are set.
type Value struct {
	Kind Kind

	// KindScalar
	Scalar any
	// KindNode and KindRelationship
	Props map[string]Value
	// KindRelationship
	RelType string
	// KindPath
	Nodes         []Value
	Relationships []Value
	// KindList
	Items []Value
	// KindMap
	Entries map[string]Value
}

// FromDriver converts a raw driver value.
func FromDriver(v any) Value {
	switch t := v.(type) {
	case dbtype.Node:
		return Value{Kind: KindNode, Props: convertMap(t.Props)}
	case dbtype.Relationship:
		return Value{Kind: KindRelationship, RelType: t.Type, Props: convertMap(t.Props)}
	case dbtype.Path:
		p := Value{
			Kind:          KindPath,
			Nodes:         make([]Value, 0, len(t.Nodes)),
			Relationships: make([]Value, 0, len(t.Relationships)),
		}
		for _, n := range t.Nodes {
			p.Nodes = append(p.Nodes, FromDriver(n))
		}
		for _, r := range t.Relationships {
			p.Relationships = append(p.Relationships, FromDriver(r))
		}
		return p
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromDriver(item))
		}
		return Value{Kind: KindList, Items: items}
	case map[string]any:
		return Value{Kind: KindMap, Entries: convertMap(t)}
	default:
		return Value{Kind: KindScalar, Scalar: scalar(v)}
	}
}

func convertMap(m map[string]any) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = FromDriver(v)
	}
	return out
}

// scalar renders temporal values as strings so they serialize readably.
func scalar(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case dbtype.Date, dbtype.LocalDateTime, dbtype.LocalTime, dbtype.Time, dbtype.Duration:
		return fmt.Sprint(t)
	}
	return v
}

// Interface returns the plain form of v: a node becomes its property map, a
// relationship a {type, relationship_type, properties} map and a path a
// {nodes, relationships} map. Lists and maps convert element-wise.
func (v Value) Interface() any {
	switch v.Kind {
	case KindNode:
		return plainMap(v.Props)
	case KindRelationship:
		return map[string]any{
			"type":              "Relationship",
			"relationship_type": v.RelType,
			"properties":        plainMap(v.Props),
		}
	case KindPath:
		return map[string]any{
			"nodes":         plainList(v.Nodes),
			"relationships": plainList(v.Relationships),
		}
	case KindList:
		return plainList(v.Items)
	case KindMap:
		return plainMap(v.Entries)
	default:
		return v.Scalar
	}
}

// MarshalJSON encodes the plain form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func plainMap(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

func plainList(values []Value) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v.Interface())
	}
	return out
}

// Row is one result record keyed by column.
type Row map[string]Value

// RowFromRecord converts every column of record.
func RowFromRecord(record *neo4j.Record) Row {
	row := make(Row, len(record.Keys))
	for i, key := range record.Keys {
		row[key] = FromDriver(record.Values[i])
	}
	return row
}
