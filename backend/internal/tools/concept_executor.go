package tools

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"carton/backend/internal/engine"
	apperrors "carton/backend/pkg/errors"
)

func (e *Executor) executeAddConcept(ctx context.Context, args map[string]interface{}) *ToolResult {
	name := stringArg(args, "concept_name")
	if name == "" {
		return failureFrom(apperrors.NewValidationFailed("concept_name", "is required"))
	}

	description := stringArg(args, "concept")
	if description == "" {
		description = stringArg(args, "description")
	}

	rels, err := relationshipsArg(args)
	if err != nil {
		return failureFrom(err)
	}

	return e.mutate(ctx, ToolAddConcept, func() (*ToolResult, string) {
		result, err := e.engine.CreateConcept(ctx, engine.CreateRequest{
			Name:          name,
			Description:   description,
			Relationships: rels,
		})
		if err != nil {
			e.logger.Warn("add_concept failed", zap.String("concept", name), zap.Error(err))
			return failureFrom(err), ""
		}
		return &ToolResult{
			Success: true,
			Data:    result,
			Message: result.Summary,
		}, fmt.Sprintf("Add %s concept", result.Concept.Name)
	})
}

func (e *Executor) executeCreateMissingConcepts(ctx context.Context, args map[string]interface{}) *ToolResult {
	items, err := missingItemsArg(args)
	if err != nil {
		return failureFrom(err)
	}

	return e.mutate(ctx, ToolCreateMissingConcepts, func() (*ToolResult, string) {
		batch := e.engine.CreateMissingConcepts(ctx, items)
		msg := fmt.Sprintf("Created %d concepts, %d failed", len(batch.Created), len(batch.Failed))

		commit := ""
		if len(batch.Created) > 0 {
			commit = fmt.Sprintf("Create %d missing concepts", len(batch.Created))
		}
		return &ToolResult{
			Success: true,
			Data: map[string]interface{}{
				"created_count":    len(batch.Created),
				"failed_count":     len(batch.Failed),
				"created_concepts": batch.Created,
				"failed_concepts":  batch.Failed,
			},
			Message: msg,
		}, commit
	})
}

func (e *Executor) executeRetroactiveAutolink(ctx context.Context) *ToolResult {
	return e.mutate(ctx, ToolRetroactiveAutolink, func() (*ToolResult, string) {
		result, err := e.engine.RetroactiveAutolink(ctx)
		if err != nil {
			return failure(fmt.Sprintf("Failed to apply retroactive auto-linking: %v", err)), ""
		}

		commit := ""
		if result.Total > 0 {
			commit = fmt.Sprintf("Retroactive auto-linking: Updated %d concepts", result.Total)
		}
		return &ToolResult{
			Success: true,
			Data:    result,
			Message: "Retroactive auto-linking completed",
		}, commit
	})
}

func (e *Executor) executeCalculateMissing(ctx context.Context) *ToolResult {
	return e.mutate(ctx, ToolCalculateMissing, func() (*ToolResult, string) {
		scan, err := e.engine.CalculateMissing(ctx)
		if err != nil {
			return failure(fmt.Sprintf("Failed to calculate missing concepts: %v", err)), ""
		}

		commit := ""
		if scan.Outcome != engine.LedgerUnchanged && scan.Outcome != engine.LedgerNone {
			commit = "Update missing concepts tracking"
		}
		return &ToolResult{
			Success: true,
			Data: map[string]interface{}{
				"missing_concepts": scan.Missing,
				"total_count":      len(scan.Missing),
				"outcome":          scan.Outcome,
			},
			Message: scan.Summary,
		}, commit
	})
}

func (e *Executor) executeListMissing(ctx context.Context) *ToolResult {
	missing, found, err := e.engine.ListMissing(ctx)
	if err != nil {
		return failure(fmt.Sprintf("Failed to list missing concepts: %v", err))
	}
	if !found {
		return &ToolResult{
			Success: true,
			Data: map[string]interface{}{
				"missing_concepts": []engine.MissingConcept{},
				"total_count":      0,
			},
			Message: "No missing concepts file found - all concepts exist or none have been created yet",
		}
	}
	return &ToolResult{
		Success: true,
		Data: map[string]interface{}{
			"missing_concepts": missing,
			"total_count":      len(missing),
		},
		Message: fmt.Sprintf("Found %d missing concepts", len(missing)),
	}
}

func (e *Executor) executeDeduplicate(ctx context.Context, args map[string]interface{}) *ToolResult {
	var threshold *float64
	if raw, ok := args["similarity_threshold"]; ok && raw != nil {
		v, err := floatArg(args, "similarity_threshold", 0)
		if err != nil {
			return failureFrom(err)
		}
		threshold = &v
	}

	result, err := e.engine.DeduplicateConcepts(ctx, threshold)
	if err != nil {
		return failureFrom(err)
	}
	return &ToolResult{
		Success: true,
		Data:    result,
		Message: result.Analysis,
	}
}
