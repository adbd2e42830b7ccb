package engine

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"carton/backend/internal/concept"
	"carton/backend/internal/constants"
	"carton/backend/internal/store"
	apperrors "carton/backend/pkg/errors"
)

// Document is one corpus document held in a snapshot.
type Document struct {
	Path    string
	Content string
}

// RelationDocument is a components/<type>/ document of a concept.
type RelationDocument struct {
	Type string
	Document
}

// ConceptRecord groups the documents of one concept directory.
type ConceptRecord struct {
	Name      string
	Relations []RelationDocument
}

// Snapshot is an immutable in-memory copy of the concept corpus. Everything
// computed from it is deterministic: concepts, documents and relation
// documents are all in sorted path order.
type Snapshot struct {
	Concepts  []ConceptRecord
	Documents []Document

	byKey map[string]string
}

// NewSnapshot builds a snapshot from documents already in memory.
func NewSnapshot(names []string, docs []Document) *Snapshot {
	snap := &Snapshot{
		Documents: docs,
		byKey:     make(map[string]string, len(names)),
	}

	index := make(map[string]int, len(names))
	for _, name := range names {
		index[name] = len(snap.Concepts)
		snap.Concepts = append(snap.Concepts, ConceptRecord{Name: name})
		snap.byKey[concept.Key(name)] = name
	}

	for _, doc := range docs {
		// concepts/<name>/components/<type>/<file>.md
		parts := strings.Split(doc.Path, "/")
		if len(parts) != 5 || parts[0] != constants.ConceptsDir || parts[2] != constants.ComponentsDir {
			continue
		}
		i, ok := index[parts[1]]
		if !ok {
			continue
		}
		snap.Concepts[i].Relations = append(snap.Concepts[i].Relations, RelationDocument{
			Type:     parts[3],
			Document: doc,
		})
	}
	return snap
}

// LoadSnapshot reads every document under concepts/ with up to concurrency
// reads in flight. Any unreadable document aborts the whole load.
func LoadSnapshot(ctx context.Context, docs store.DocumentStore, concurrency int) (*Snapshot, error) {
	names, err := docs.ListConcepts(ctx)
	if err != nil {
		return nil, apperrors.NewScanFailed(constants.ConceptsDir, err)
	}
	paths, err := docs.List(ctx, constants.ConceptsDir)
	if err != nil {
		return nil, apperrors.NewScanFailed(constants.ConceptsDir, err)
	}

	if concurrency < 1 {
		concurrency = 1
	}
	contents := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range paths {
		g.Go(func() error {
			content, err := docs.Read(gctx, p)
			if err != nil {
				return apperrors.NewScanFailed(p, err)
			}
			contents[i] = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded := make([]Document, len(paths))
	for i, p := range paths {
		loaded[i] = Document{Path: p, Content: contents[i]}
	}
	return NewSnapshot(names, loaded), nil
}

// Names returns every concept name in sorted order.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.Concepts))
	for _, c := range s.Concepts {
		names = append(names, c.Name)
	}
	return names
}

// Resolve returns the existing concept a name refers to, ignoring case and
// separator differences.
func (s *Snapshot) Resolve(name string) (string, bool) {
	existing, ok := s.byKey[concept.Key(name)]
	return existing, ok
}
