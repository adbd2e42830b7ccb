package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"carton/backend/internal/concept"
	"carton/backend/internal/constants"
	"carton/backend/internal/store"
	"carton/backend/pkg/config"
	apperrors "carton/backend/pkg/errors"
	"carton/backend/pkg/logger"
)

// GraphStore is the graph side of concept persistence.
type GraphStore interface {
	// SaveConcept merges the concept node and one typed edge per target.
	SaveConcept(ctx context.Context, c concept.Concept) error
	// ListConceptSummaries returns every concept ordered by name.
	ListConceptSummaries(ctx context.Context) ([]concept.Summary, error)
}

// Options configures the engine. It is built once from configuration and
// handed in at construction.
type Options struct {
	SuggestionCutoff   float64
	MaxSuggestions     int
	DuplicateThreshold float64
	LoadConcurrency    int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		SuggestionCutoff:   constants.DefaultSuggestionCutoff,
		MaxSuggestions:     constants.DefaultMaxSuggestions,
		DuplicateThreshold: constants.DefaultDuplicateThreshold,
		LoadConcurrency:    8,
	}
}

// OptionsFromConfig copies the engine settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.SuggestionCutoff = cfg.SuggestionCutoff
	opts.MaxSuggestions = cfg.MaxSuggestions
	opts.DuplicateThreshold = cfg.DuplicateThreshold
	return opts
}

// Engine keeps the concept corpus consistent: it links new descriptions,
// discovers implicit relationships, writes every derived document and
// rebuilds the missing-concept ledger after each change.
//
// A full pass assumes it is the only writer of the underlying store. Passes
// started through the same Engine are serialized.
type Engine struct {
	docs    store.DocumentStore
	graph   GraphStore
	tracker *Tracker
	opts    Options
	logger  *zap.Logger

	mu sync.Mutex
}

// New creates an engine. graph may be nil, in which case nothing is written
// to the graph and duplicate detection reads the document store instead.
func New(docs store.DocumentStore, graph GraphStore, opts Options) *Engine {
	return &Engine{
		docs:  docs,
		graph: graph,
		tracker: NewTracker(docs, TrackerOptions{
			SuggestionCutoff: opts.SuggestionCutoff,
			MaxSuggestions:   opts.MaxSuggestions,
			LoadConcurrency:  opts.LoadConcurrency,
		}),
		opts:   opts,
		logger: logger.Named("engine"),
	}
}

// Tracker exposes the ledger tracker the engine maintains.
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}

// CreateRequest is the caller's view of a concept.
type CreateRequest struct {
	Name          string                `json:"concept_name"`
	Description   string                `json:"description"`
	Relationships concept.Relationships `json:"relationships"`
}

// CreateResult reports one creation.
type CreateResult struct {
	Concept     concept.Concept `json:"concept"`
	Path        string          `json:"path"`
	AutoRelated []string        `json:"auto_related"`
	Documents   int             `json:"documents_written"`
	Ledger      *ScanResult     `json:"ledger,omitempty"`
	LedgerError string          `json:"ledger_error,omitempty"`
	Summary     string          `json:"summary"`
}

// CreateConcept runs the full creation pipeline. Re-running it for an
// existing concept replaces all of its derived documents.
//
// Invalid input is rejected before anything is written. Once writing has
// started a failing document or graph write is returned as an error, and
// documents already written stay in place. A failed ledger rebuild is reported
// in the result rather than failing the creation.
func (e *Engine) CreateConcept(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.createLocked(ctx, req)
}

func (e *Engine) createLocked(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	name := concept.Canonical(req.Name)

	existing, err := e.docs.ListConcepts(ctx)
	if err != nil {
		return nil, err
	}

	description := concept.PlaceholderDescription(name)
	if strings.TrimSpace(req.Description) != "" {
		description = concept.AutoLink(req.Description, existing, name)
	}

	mentioned := concept.FindMentions(name+"\n"+description, existing, name)

	var rels concept.Relationships
	for _, rel := range req.Relationships {
		rels = rels.Set(rel.Type, rel.Targets)
	}
	rels = rels.Append(constants.AutoRelatedTo, mentioned...)

	c := concept.Concept{Name: name, Description: description, Relationships: rels}

	if err := e.removeStaleRelations(ctx, c); err != nil {
		return nil, err
	}
	docs := concept.Render(c)
	for _, doc := range docs {
		if err := e.docs.Write(ctx, doc.Path, doc.Content); err != nil {
			return nil, fmt.Errorf("failed to write %s for concept %s: %w", doc.Path, name, err)
		}
	}

	result := &CreateResult{
		Concept:     c,
		Path:        concept.Dir(name),
		AutoRelated: mentioned,
		Documents:   len(docs),
	}
	if result.AutoRelated == nil {
		result.AutoRelated = []string{}
	}

	ledger, err := e.tracker.Rebuild(ctx, name)
	if err != nil {
		e.logger.Warn("Missing concept ledger rebuild failed",
			zap.String("concept", name),
			zap.Error(err),
		)
		result.LedgerError = err.Error()
	} else {
		result.Ledger = ledger
	}

	graphNote := "graph storage disabled"
	if e.graph != nil {
		if err := e.graph.SaveConcept(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to store concept %s in graph: %w", name, err)
		}
		graphNote = fmt.Sprintf("graph: stored with %d relationships", rels.Count())
	}

	ledgerNote := "Missing concepts: "
	if result.Ledger != nil {
		ledgerNote += result.Ledger.Summary
	} else {
		ledgerNote += "ledger update failed: " + result.LedgerError
	}
	result.Summary = fmt.Sprintf("Concept '%s' created successfully at %s. %s. %s", name, result.Path, graphNote, ledgerNote)

	e.logger.Info("Concept created",
		zap.String("concept", name),
		zap.Int("relationships", rels.Count()),
		zap.Int("auto_related", len(mentioned)),
	)
	return result, nil
}

// removeStaleRelations deletes relation documents of c whose type is no
// longer among its relationships, so the stored files stay a function of c.
func (e *Engine) removeStaleRelations(ctx context.Context, c concept.Concept) error {
	paths, err := e.docs.List(ctx, concept.ComponentsPath(c.Name))
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(c.Relationships))
	for _, t := range c.Relationships.Types() {
		keep[t] = true
	}
	for _, p := range paths {
		parts := strings.Split(p, "/")
		if len(parts) != 5 || keep[parts[3]] {
			continue
		}
		if err := e.docs.Delete(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func validateCreate(req CreateRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationFailed("concept_name", "must not be empty")
	}
	if len(req.Relationships) == 0 || req.Relationships.Count() == 0 {
		return apperrors.NewValidationFailed("relationships",
			"must not be empty; use is_a "+constants.WorkInProgress+" when nothing better is known")
	}
	for _, rel := range req.Relationships {
		if err := validateRelationType(rel.Type); err != nil {
			return err
		}
		for _, target := range rel.Targets {
			if strings.TrimSpace(target) == "" {
				return apperrors.NewValidationFailed("relationships", fmt.Sprintf("relation %q has an empty target", rel.Type))
			}
		}
	}
	return nil
}

func validateRelationType(relType string) error {
	switch {
	case strings.TrimSpace(relType) == "":
		return apperrors.NewValidationFailed("relationship", "type must not be empty")
	case strings.ContainsAny(relType, `/\`) || strings.Contains(relType, ".."):
		return apperrors.NewValidationFailed("relationship", fmt.Sprintf("type %q must not contain path separators", relType))
	case relType == constants.DescriptionRelation:
		return apperrors.NewValidationFailed("relationship", fmt.Sprintf("type %q is reserved", relType))
	}
	return nil
}

// MissingConceptRequest is one item of a batch creation. Description and
// relationships are optional.
type MissingConceptRequest struct {
	Name          string                `json:"concept_name"`
	Description   string                `json:"description,omitempty"`
	Relationships concept.Relationships `json:"relationships,omitempty"`
}

// BatchCreated is a successfully created batch item.
type BatchCreated struct {
	Name   string        `json:"name"`
	Result *CreateResult `json:"result"`
}

// BatchFailure is a batch item that could not be created.
type BatchFailure struct {
	Name  string                `json:"name,omitempty"`
	Error string                `json:"error"`
	Item  MissingConceptRequest `json:"data"`
}

// BatchResult reports a batch creation.
type BatchResult struct {
	Created []BatchCreated `json:"created_concepts"`
	Failed  []BatchFailure `json:"failed_concepts"`
}

// CreateMissingConcepts creates each item through the normal pipeline. Items
// without a description get a template one, items without relationships are
// filed under is_a Work_In_Progress. A failing item never stops the batch.
func (e *Engine) CreateMissingConcepts(ctx context.Context, items []MissingConceptRequest) *BatchResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := &BatchResult{Created: []BatchCreated{}, Failed: []BatchFailure{}}
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			result.Failed = append(result.Failed, BatchFailure{Error: "Missing concept_name", Item: item})
			continue
		}

		req := CreateRequest{
			Name:          item.Name,
			Description:   item.Description,
			Relationships: item.Relationships,
		}
		if strings.TrimSpace(req.Description) == "" {
			req.Description = concept.GenerateDescription(item.Name, item.Relationships)
		}
		if req.Relationships.Count() == 0 {
			req.Relationships = concept.Relationships{{
				Type:    concept.RelIsA,
				Targets: []string{constants.WorkInProgress},
			}}
		}

		created, err := e.createChecked(ctx, req)
		if err != nil {
			e.logger.Warn("Failed to create missing concept",
				zap.String("concept", item.Name),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, BatchFailure{Name: item.Name, Error: err.Error(), Item: item})
			continue
		}
		result.Created = append(result.Created, BatchCreated{Name: created.Concept.Name, Result: created})
	}

	e.logger.Info("Batch creation finished",
		zap.Int("created", len(result.Created)),
		zap.Int("failed", len(result.Failed)),
	)
	return result
}

func (e *Engine) createChecked(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	return e.createLocked(ctx, req)
}

// AutolinkResult reports a retroactive auto-link pass.
type AutolinkResult struct {
	Updated []string `json:"updated_concepts"`
	Total   int      `json:"total_updated"`
}

// RetroactiveAutolink re-runs AutoLink over the stored description of every
// concept and the overview line of its overview and self documents.
func (e *Engine) RetroactiveAutolink(ctx context.Context) (*AutolinkResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	names, err := e.docs.ListConcepts(ctx)
	if err != nil {
		return nil, err
	}

	result := &AutolinkResult{Updated: []string{}}
	for _, name := range names {
		relink := func(text string) string {
			return concept.AutoLink(text, names, name)
		}

		changed, err := e.rewrite(ctx, concept.DescriptionPath(name), func(content string) (string, bool) {
			linked := relink(content)
			return linked, linked != content
		})
		if err != nil {
			return nil, err
		}
		for _, p := range []string{concept.OverviewPath(name), concept.SelfPath(name)} {
			c, err := e.rewrite(ctx, p, func(content string) (string, bool) {
				return concept.ReplaceOverview(content, relink)
			})
			if err != nil {
				return nil, err
			}
			changed = changed || c
		}

		if changed {
			result.Updated = append(result.Updated, name)
		}
	}
	result.Total = len(result.Updated)

	e.logger.Info("Retroactive auto-linking finished", zap.Int("updated", result.Total))
	return result, nil
}

// rewrite applies fn to the document at p when it exists and writes back a
// changed result.
func (e *Engine) rewrite(ctx context.Context, p string, fn func(string) (string, bool)) (bool, error) {
	content, err := e.docs.Read(ctx, p)
	if err != nil {
		var notFound *apperrors.ErrDocumentNotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	updated, changed := fn(content)
	if !changed {
		return false, nil
	}
	return true, e.docs.Write(ctx, p, updated)
}

// DedupeResult reports a duplicate scan.
type DedupeResult struct {
	Groups    []DuplicateGroup `json:"duplicate_groups"`
	Total     int              `json:"total_groups"`
	Threshold float64          `json:"similarity_threshold"`
	Analysis  string           `json:"analysis"`
}

// DeduplicateConcepts finds groups of likely duplicate concepts. A nil
// threshold uses the configured default; values outside 0..1 are rejected.
func (e *Engine) DeduplicateConcepts(ctx context.Context, requested *float64) (*DedupeResult, error) {
	threshold := e.opts.DuplicateThreshold
	if requested != nil {
		threshold = *requested
	}
	if threshold < 0 || threshold > 1 {
		return nil, apperrors.NewValidationFailed("similarity_threshold", "must be between 0 and 1")
	}

	summaries, err := e.conceptSummaries(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := DetectDuplicates(summaries, threshold)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Duplicate scan finished",
		zap.Int("concepts", len(summaries)),
		zap.Int("groups", len(groups)),
	)
	return &DedupeResult{
		Groups:    groups,
		Total:     len(groups),
		Threshold: threshold,
		Analysis:  fmt.Sprintf("Found %d groups of similar concepts that may need manual review", len(groups)),
	}, nil
}

func (e *Engine) conceptSummaries(ctx context.Context) ([]concept.Summary, error) {
	if e.graph != nil {
		return e.graph.ListConceptSummaries(ctx)
	}

	names, err := e.docs.ListConcepts(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	summaries := make([]concept.Summary, 0, len(names))
	for _, name := range names {
		description, err := e.docs.Read(ctx, concept.DescriptionPath(name))
		if err != nil {
			var notFound *apperrors.ErrDocumentNotFound
			if !errors.As(err, &notFound) {
				return nil, err
			}
			description = ""
		}
		summaries = append(summaries, concept.Summary{Name: name, Description: description})
	}
	return summaries, nil
}

// CalculateMissing rebuilds the ledger from a full scan.
func (e *Engine) CalculateMissing(ctx context.Context) (*ScanResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tracker.Rebuild(ctx, "")
}

// ListMissing returns the entries of the current ledger without rescanning.
func (e *Engine) ListMissing(ctx context.Context) ([]MissingConcept, bool, error) {
	return e.tracker.List(ctx)
}

// Concepts lists the names of every stored concept.
func (e *Engine) Concepts(ctx context.Context) ([]string, error) {
	return e.docs.ListConcepts(ctx)
}
