package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"carton/backend/internal/constants"
	apperrors "carton/backend/pkg/errors"
)

// ValidateReadQuery rejects caller queries that could write or that do not
// target the :Wiki namespace.
func ValidateReadQuery(query string) error {
	upper := strings.ToUpper(query)
	if strings.Contains(upper, "CREATE") || strings.Contains(upper, "MERGE") {
		return apperrors.NewQueryRejected("Write operations (CREATE/MERGE) not allowed. Use add_concept tool instead.")
	}
	if !strings.Contains(query, ":"+constants.WikiLabel) {
		return apperrors.NewQueryRejected("Query must target :Wiki namespace (e.g., MATCH (c:Wiki))")
	}
	return nil
}

// QueryWiki runs a caller-supplied read query in a read session.
func (r *Repository) QueryWiki(ctx context.Context, query string, params map[string]any) ([]Row, error) {
	if err := ValidateReadQuery(query); err != nil {
		r.logger.Warn("Query rejected", zap.Error(err))
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}

	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed(truncate(query), err)
	}

	rows := []Row{}
	for result.Next(ctx) {
		rows = append(rows, RowFromRecord(result.Record()))
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed(truncate(query), err)
	}

	r.logger.Info("Wiki query executed",
		zap.String("query", truncate(query)),
		zap.Int("records", len(rows)),
	)
	return rows, nil
}

// ValidateDepth checks a network traversal depth.
func ValidateDepth(depth int) error {
	if depth < constants.MinNetworkDepth || depth > constants.MaxNetworkDepth {
		return apperrors.NewValidationFailed("depth",
			fmt.Sprintf("Depth must be between %d and %d", constants.MinNetworkDepth, constants.MaxNetworkDepth))
	}
	return nil
}

// networkQuery builds the traversal for an already validated depth.
func networkQuery(depth int) string {
	return fmt.Sprintf(`
		MATCH (start:Wiki {n: $concept_name})
		CALL {
			WITH start
			MATCH (start)-[r*1..%d]-(connected:Wiki)
			RETURN r, connected
		}
		RETURN start.n as start_concept,
		       [rel in r | type(rel)] as relationship_path,
		       connected.n as connected_concept,
		       connected.d as connected_description
	`, depth)
}

// GetConceptNetwork returns every concept reachable from name within depth hops.
func (r *Repository) GetConceptNetwork(ctx context.Context, name string, depth int) ([]NetworkConnection, error) {
	if err := ValidateDepth(depth); err != nil {
		return nil, err
	}

	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, networkQuery(depth), map[string]any{"concept_name": name})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("concept network", err)
	}

	network := []NetworkConnection{}
	for result.Next(ctx) {
		record := result.Record()
		network = append(network, NetworkConnection{
			StartConcept:         getStringFromRecord(record, "start_concept"),
			RelationshipPath:     getStringSliceFromRecord(record, "relationship_path"),
			ConnectedConcept:     getStringFromRecord(record, "connected_concept"),
			ConnectedDescription: getStringFromRecord(record, "connected_description"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("concept network", err)
	}

	r.logger.Info("Concept network retrieved",
		zap.String("concept", name),
		zap.Int("depth", depth),
		zap.Int("connections", len(network)),
	)
	return network, nil
}

// GetConcept returns a described concept with its outgoing edges.
func (r *Repository) GetConcept(ctx context.Context, name string) (*ConceptDetail, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (c:Wiki) WHERE c.n = $concept_name AND c.d IS NOT NULL
		OPTIONAL MATCH (c)-[r]->(related:Wiki)
		RETURN c.n as name, c.d as description,
		       collect({type: type(r), target: related.n}) as relationships
	`
	result, err := session.Run(ctx, query, map[string]any{"concept_name": name})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("get concept", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.NewGraphQueryFailed("get concept", err)
		}
		return nil, apperrors.NewConceptNotFound(name)
	}
	record := result.Record()

	detail := &ConceptDetail{
		Name:          getStringFromRecord(record, "name"),
		Description:   getStringFromRecord(record, "description"),
		Relationships: []ConceptEdge{},
	}
	raw, _ := record.Get("relationships")
	if list, ok := raw.([]interface{}); ok {
		for _, item := range list {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			// OPTIONAL MATCH yields one null edge for an unconnected concept.
			relType := getStringFromMap(m, "type", "")
			if relType == "" {
				continue
			}
			detail.Relationships = append(detail.Relationships, ConceptEdge{
				Type:   relType,
				Target: getStringFromMap(m, "target", ""),
			})
		}
	}
	return detail, nil
}

// ClampRecent applies the default and the upper bound to a recent-concepts count.
func ClampRecent(n int) int {
	if n <= 0 {
		return constants.DefaultRecentConcepts
	}
	if n > constants.MaxRecentConcepts {
		return constants.MaxRecentConcepts
	}
	return n
}

// GetRecentConcepts returns the n most recently written concepts, newest first.
func (r *Repository) GetRecentConcepts(ctx context.Context, n int) ([]RecentConcept, error) {
	n = ClampRecent(n)

	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (c:Wiki)
		WHERE c.t IS NOT NULL
		RETURN c.n as name, toString(c.t) as timestamp
		ORDER BY c.t DESC
		LIMIT $n
	`
	result, err := session.Run(ctx, query, map[string]any{"n": n})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("recent concepts", err)
	}

	recent := []RecentConcept{}
	for result.Next(ctx) {
		record := result.Record()
		recent = append(recent, RecentConcept{
			Rank:      len(recent) + 1,
			Name:      getStringFromRecord(record, "name"),
			Timestamp: getStringFromRecord(record, "timestamp"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("recent concepts", err)
	}
	return recent, nil
}

func truncate(query string) string {
	query = strings.TrimSpace(query)
	if len(query) > 100 {
		return query[:100] + "..."
	}
	return query
}
