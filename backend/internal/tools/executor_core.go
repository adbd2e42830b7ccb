package tools

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"carton/backend/internal/engine"
	"carton/backend/internal/graph"
	apperrors "carton/backend/pkg/errors"
	"carton/backend/pkg/logger"
)

// ToolCall is a named invocation with decoded JSON arguments.
type ToolCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolResult represents the result of a tool execution
type ToolResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// GraphReader is the read side of the graph store.
type GraphReader interface {
	QueryWiki(ctx context.Context, query string, params map[string]any) ([]graph.Row, error)
	GetConceptNetwork(ctx context.Context, name string, depth int) ([]graph.NetworkConnection, error)
	GetConcept(ctx context.Context, name string) (*graph.ConceptDetail, error)
	GetRecentConcepts(ctx context.Context, n int) ([]graph.RecentConcept, error)
}

// Syncer mirrors the document store with a remote repository.
type Syncer interface {
	// Prepare brings the local checkout up to date before a change.
	Prepare(ctx context.Context) error
	// Publish records and pushes whatever changed.
	Publish(ctx context.Context, message string) error
}

// Executor handles tool execution
type Executor struct {
	engine *engine.Engine
	graph  GraphReader
	syncer Syncer
	logger *zap.Logger
}

// NewExecutor creates a new tool executor over the consistency engine
func NewExecutor(eng *engine.Engine) *Executor {
	return &Executor{
		engine: eng,
		logger: logger.Named("tools"),
	}
}

// SetGraphReader enables the graph query tools
func (e *Executor) SetGraphReader(g GraphReader) {
	e.graph = g
}

// SetSyncer wraps every mutating tool in a pull before and a push after
func (e *Executor) SetSyncer(s Syncer) {
	e.syncer = s
}

// Execute runs a tool call and returns the result
func (e *Executor) Execute(ctx context.Context, toolCall ToolCall) *ToolResult {
	e.logger.Debug("Executing tool", zap.String("tool", toolCall.Name))

	args := toolCall.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}

	switch toolCall.Name {
	// Concept Tools
	case ToolAddConcept:
		return e.executeAddConcept(ctx, args)
	case ToolCreateMissingConcepts:
		return e.executeCreateMissingConcepts(ctx, args)
	case ToolRetroactiveAutolink:
		return e.executeRetroactiveAutolink(ctx)
	case ToolCalculateMissing:
		return e.executeCalculateMissing(ctx)
	case ToolListMissingConcepts:
		return e.executeListMissing(ctx)
	case ToolDeduplicateConcepts:
		return e.executeDeduplicate(ctx, args)

	// Graph Tools
	case ToolQueryWikiGraph:
		return e.executeQueryWikiGraph(ctx, args)
	case ToolGetConceptNetwork:
		return e.executeGetConceptNetwork(ctx, args)
	case ToolGetConcept:
		return e.executeGetConcept(ctx, args)
	case ToolGetRecentConcepts:
		return e.executeGetRecentConcepts(ctx, args)

	default:
		e.logger.Warn("Unknown tool", zap.String("tool", toolCall.Name))
		return &ToolResult{
			Success: false,
			Error:   apperrors.NewToolNotFound(toolCall.Name).Error(),
		}
	}
}

// mutate runs fn between a sync preparation and a publish. fn returns the
// result and the commit message; an empty message skips the publish.
func (e *Executor) mutate(ctx context.Context, tool string, fn func() (*ToolResult, string)) *ToolResult {
	if e.syncer != nil {
		if err := e.syncer.Prepare(ctx); err != nil {
			e.logger.Error("Repository sync failed", zap.String("tool", tool), zap.Error(err))
			return failure(fmt.Sprintf("Git setup failed: %v", err))
		}
	}

	result, message := fn()
	if !result.Success || e.syncer == nil || message == "" {
		return result
	}

	if err := e.syncer.Publish(ctx, message); err != nil {
		e.logger.Error("Repository publish failed", zap.String("tool", tool), zap.Error(err))
		result.Success = false
		result.Error = fmt.Sprintf("Git commit failed: %v", err)
	}
	return result
}

func failure(msg string) *ToolResult {
	return &ToolResult{Success: false, Error: msg}
}

func failureFrom(err error) *ToolResult {
	return &ToolResult{Success: false, Error: err.Error()}
}
