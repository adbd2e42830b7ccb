package store

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"carton/backend/internal/constants"
	apperrors "carton/backend/pkg/errors"
)

// MemoryStore is an in-memory DocumentStore. Concept directories exist
// implicitly while any document lives under them.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]string

	// FailReads makes Read fail for the listed paths.
	FailReads map[string]error
	// FailWrites makes Write fail for the listed paths.
	FailWrites map[string]error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]string)}
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// ListConcepts returns every first-level directory under concepts/.
func (m *MemoryStore) ListConcepts(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := constants.ConceptsDir + "/"
	seen := make(map[string]bool)
	names := []string{}
	for p := range m.docs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		i := strings.Index(rest, "/")
		if i <= 0 {
			continue
		}
		name := rest[:i]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the document at p.
func (m *MemoryStore) Read(ctx context.Context, p string) (string, error) {
	p = clean(p)
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.FailReads[p]; ok {
		return "", apperrors.NewStoreReadFailed(p, err)
	}
	content, ok := m.docs[p]
	if !ok {
		return "", apperrors.NewDocumentNotFound(p)
	}
	return content, nil
}

// Write stores content at p.
func (m *MemoryStore) Write(ctx context.Context, p, content string) error {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.FailWrites[p]; ok {
		return apperrors.NewStoreWriteFailed(p, err)
	}
	m.docs[p] = content
	return nil
}

// Delete removes p.
func (m *MemoryStore) Delete(ctx context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, clean(p))
	return nil
}

// Exists reports whether p holds a document.
func (m *MemoryStore) Exists(ctx context.Context, p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.docs[clean(p)]
	return ok, nil
}

// List returns every document under prefix, sorted.
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir := clean(prefix)
	if dir != "" {
		dir += "/"
	}
	paths := []string{}
	for p := range m.docs {
		if strings.HasPrefix(p, dir) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Len returns the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
