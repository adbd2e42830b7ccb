package tools

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"carton/backend/internal/graph"
	apperrors "carton/backend/pkg/errors"
)

const errGraphUnavailable = "graph store not configured"

func (e *Executor) executeQueryWikiGraph(ctx context.Context, args map[string]interface{}) *ToolResult {
	query := stringArg(args, "cypher_query")
	if query == "" {
		return failureFrom(apperrors.NewValidationFailed("cypher_query", "is required"))
	}
	if err := graph.ValidateReadQuery(query); err != nil {
		e.logger.Warn("Query validation failed", zap.Error(err))
		return failureFrom(err)
	}
	params, err := paramsArg(args)
	if err != nil {
		return failureFrom(err)
	}
	if e.graph == nil {
		return failure(errGraphUnavailable)
	}

	rows, err := e.graph.QueryWiki(ctx, query, params)
	if err != nil {
		return failureFrom(err)
	}
	return &ToolResult{
		Success: true,
		Data: map[string]interface{}{
			"cypher_query": query,
			"parameters":   params,
			"data":         rows,
		},
		Message: fmt.Sprintf("Query returned %d records", len(rows)),
	}
}

func (e *Executor) executeGetConceptNetwork(ctx context.Context, args map[string]interface{}) *ToolResult {
	name := stringArg(args, "concept_name")
	if name == "" {
		return failureFrom(apperrors.NewValidationFailed("concept_name", "is required"))
	}
	depth, err := intArg(args, "depth", 1)
	if err != nil {
		return failureFrom(err)
	}
	if err := graph.ValidateDepth(depth); err != nil {
		return failureFrom(err)
	}
	if e.graph == nil {
		return failure(errGraphUnavailable)
	}

	network, err := e.graph.GetConceptNetwork(ctx, name, depth)
	if err != nil {
		return failureFrom(err)
	}
	return &ToolResult{
		Success: true,
		Data: map[string]interface{}{
			"concept_name": name,
			"depth":        depth,
			"network":      network,
		},
		Message: fmt.Sprintf("Found %d connections", len(network)),
	}
}

func (e *Executor) executeGetConcept(ctx context.Context, args map[string]interface{}) *ToolResult {
	name := stringArg(args, "concept_name")
	if name == "" {
		return failureFrom(apperrors.NewValidationFailed("concept_name", "is required"))
	}
	if e.graph == nil {
		return failure(errGraphUnavailable)
	}

	detail, err := e.graph.GetConcept(ctx, name)
	if err != nil {
		return failureFrom(err)
	}
	return &ToolResult{Success: true, Data: detail}
}

func (e *Executor) executeGetRecentConcepts(ctx context.Context, args map[string]interface{}) *ToolResult {
	n, err := intArg(args, "n", 20)
	if err != nil {
		return failureFrom(err)
	}
	n = graph.ClampRecent(n)
	if e.graph == nil {
		return failure(errGraphUnavailable)
	}

	recent, err := e.graph.GetRecentConcepts(ctx, n)
	if err != nil {
		return failureFrom(err)
	}
	return &ToolResult{
		Success: true,
		Data: map[string]interface{}{
			"concepts": recent,
			"count":    len(recent),
		},
		Message: fmt.Sprintf("%d most recent concepts", len(recent)),
	}
}
