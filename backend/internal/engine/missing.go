package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"carton/backend/internal/concept"
	"carton/backend/internal/constants"
	"carton/backend/internal/store"
	apperrors "carton/backend/pkg/errors"
	"carton/backend/pkg/logger"
)

// MissingConcept is one ledger entry: a name referenced by the corpus that no
// concept answers to.
type MissingConcept struct {
	Name                  string             `json:"name"`
	InferredRelationships []InferredRelation `json:"inferred_relationships"`
	SimilarConcepts       []string           `json:"similar_concepts"`
}

// LedgerOutcome says what a rebuild did to the ledger document.
type LedgerOutcome string

const (
	LedgerCreated   LedgerOutcome = "created"
	LedgerUpdated   LedgerOutcome = "updated"
	LedgerUnchanged LedgerOutcome = "unchanged"
	LedgerRemoved   LedgerOutcome = "removed"
	LedgerNone      LedgerOutcome = "none"
)

// ScanResult reports a ledger rebuild.
type ScanResult struct {
	Missing []MissingConcept `json:"missing_concepts"`
	Outcome LedgerOutcome    `json:"outcome"`
	Summary string           `json:"summary"`
}

// TrackerOptions tunes similarity suggestions and corpus loading.
type TrackerOptions struct {
	SuggestionCutoff float64
	MaxSuggestions   int
	LoadConcurrency  int
}

// Tracker rebuilds the missing-concept ledger from full corpus scans. The
// ledger is derived data: every rebuild replaces it wholesale or deletes it.
type Tracker struct {
	docs   store.DocumentStore
	opts   TrackerOptions
	logger *zap.Logger
}

// NewTracker creates a ledger tracker over docs.
func NewTracker(docs store.DocumentStore, opts TrackerOptions) *Tracker {
	if opts.LoadConcurrency < 1 {
		opts.LoadConcurrency = 8
	}
	return &Tracker{
		docs:   docs,
		opts:   opts,
		logger: logger.Named("tracker"),
	}
}

// Rebuild scans the whole corpus and rewrites the ledger. exclude names a
// concept under construction that must not be reported missing; pass "" for
// a plain full scan. On a scan error nothing is written.
func (t *Tracker) Rebuild(ctx context.Context, exclude string) (*ScanResult, error) {
	snap, err := LoadSnapshot(ctx, t.docs, t.opts.LoadConcurrency)
	if err != nil {
		return nil, err
	}

	previous, hadLedger, err := t.readLedger(ctx)
	if err != nil {
		return nil, err
	}

	missing := t.Compute(snap, exclude)
	result := &ScanResult{Missing: missing}

	if len(missing) == 0 {
		if hadLedger {
			if err := t.docs.Delete(ctx, constants.LedgerFile); err != nil {
				return nil, err
			}
			result.Outcome = LedgerRemoved
			result.Summary = "Removed " + constants.LedgerFile + " - all concepts now exist"
		} else {
			result.Outcome = LedgerNone
			result.Summary = "No missing concepts found"
		}
		t.logLedger(result)
		return result, nil
	}

	content := RenderLedger(missing)
	if err := t.docs.Write(ctx, constants.LedgerFile, content); err != nil {
		return nil, err
	}

	switch {
	case !hadLedger:
		result.Outcome = LedgerCreated
		result.Summary = fmt.Sprintf("Created %s with %d missing concepts and inferred relationships", constants.LedgerFile, len(missing))
	case previous != content:
		result.Outcome = LedgerUpdated
		result.Summary = fmt.Sprintf("Updated %s with %d missing concepts and inferred relationships", constants.LedgerFile, len(missing))
	default:
		result.Outcome = LedgerUnchanged
		result.Summary = fmt.Sprintf("%s already lists all %d missing concepts", constants.LedgerFile, len(missing))
	}
	t.logLedger(result)
	return result, nil
}

// Compute derives the ledger entries from a snapshot, sorted by name.
func (t *Tracker) Compute(snap *Snapshot, exclude string) []MissingConcept {
	missingSet := make(map[string]bool)
	for _, doc := range snap.Documents {
		for _, ref := range concept.ReferencedConcepts(doc.Content) {
			if _, ok := snap.Resolve(ref); ok {
				continue
			}
			if exclude != "" && concept.SameConcept(ref, exclude) {
				continue
			}
			missingSet[ref] = true
		}
	}

	names := make([]string, 0, len(missingSet))
	for name := range missingSet {
		names = append(names, name)
	}
	sort.Strings(names)

	lowered, byLower := lowerIndex(snap.Names())

	entries := make([]MissingConcept, 0, len(names))
	for _, name := range names {
		suggestions := CloseMatches(strings.ToLower(name), lowered, t.opts.MaxSuggestions, t.opts.SuggestionCutoff)
		similar := make([]string, 0, len(suggestions))
		for _, s := range suggestions {
			similar = append(similar, byLower[s])
		}
		entries = append(entries, MissingConcept{
			Name:                  name,
			InferredRelationships: InferRelationships(name, snap),
			SimilarConcepts:       similar,
		})
	}
	return entries
}

// List parses the current ledger. A missing ledger yields no entries.
func (t *Tracker) List(ctx context.Context) ([]MissingConcept, bool, error) {
	content, ok, err := t.readLedger(ctx)
	if err != nil || !ok {
		return []MissingConcept{}, false, err
	}
	return ParseLedger(content), true, nil
}

func (t *Tracker) readLedger(ctx context.Context) (string, bool, error) {
	content, err := t.docs.Read(ctx, constants.LedgerFile)
	if err != nil {
		var notFound *apperrors.ErrDocumentNotFound
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return content, true, nil
}

func (t *Tracker) logLedger(result *ScanResult) {
	t.logger.Info("Missing concept ledger rebuilt",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("missing", len(result.Missing)),
	)
}

func lowerIndex(names []string) ([]string, map[string]string) {
	byLower := make(map[string]string, len(names))
	lowered := make([]string, 0, len(names))
	for _, name := range names {
		l := strings.ToLower(name)
		if _, dup := byLower[l]; !dup {
			lowered = append(lowered, l)
		}
		byLower[l] = name
	}
	return lowered, byLower
}

const (
	ledgerTitle        = "# Missing Concepts"
	inferredHeading    = "**Inferred relationships:**"
	similarHeading     = "**Similar existing concepts:**"
	noSimilarConcepts  = "None"
	ledgerIntroLineOne = "The following concepts are referenced but don't exist yet."
	ledgerIntroLineTwo = "Relationships are inferred from existing references:"
)

// RenderLedger renders entries as the ledger document. Entries are expected
// in name order, as Compute returns them.
func RenderLedger(entries []MissingConcept) string {
	lines := []string{ledgerTitle, "", ledgerIntroLineOne, ledgerIntroLineTwo, ""}
	for _, e := range entries {
		lines = append(lines, "## "+e.Name)
		if len(e.InferredRelationships) > 0 {
			lines = append(lines, inferredHeading)
			for _, rel := range e.InferredRelationships {
				lines = append(lines, fmt.Sprintf("- %s: %s", rel.Type, strings.Join(rel.Sources, ", ")))
			}
			lines = append(lines, "")
		}
		similar := noSimilarConcepts
		if len(e.SimilarConcepts) > 0 {
			similar = strings.Join(e.SimilarConcepts, ", ")
		}
		lines = append(lines, similarHeading+" "+similar, "")
	}
	return strings.Join(lines, "\n")
}

// ParseLedger reads entries back out of a rendered ledger.
func ParseLedger(content string) []MissingConcept {
	entries := []MissingConcept{}
	var current *MissingConcept

	flush := func() {
		if current != nil {
			entries = append(entries, *current)
		}
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "## "):
			flush()
			current = &MissingConcept{
				Name:                  strings.TrimSpace(line[3:]),
				InferredRelationships: []InferredRelation{},
				SimilarConcepts:       []string{},
			}
		case current == nil:
			continue
		case strings.HasPrefix(line, "- "):
			relType, sources, ok := strings.Cut(line[2:], ": ")
			if !ok || strings.TrimSpace(relType) == "" || strings.TrimSpace(sources) == "" {
				continue
			}
			current.InferredRelationships = append(current.InferredRelationships, InferredRelation{
				Type:    strings.TrimSpace(relType),
				Sources: splitList(sources),
			})
		case strings.HasPrefix(line, similarHeading):
			similar := strings.TrimSpace(strings.TrimPrefix(line, similarHeading))
			if similar != "" && similar != noSimilarConcepts {
				current.SimilarConcepts = splitList(similar)
			}
		}
	}
	flush()
	return entries
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
