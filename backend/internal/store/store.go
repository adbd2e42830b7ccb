// Package store provides the document store the consistency engine reads the
// corpus from and writes derived documents to. Paths are slash-separated and
// relative to the store root.
package store

import "context"

// DocumentStore is the narrow document interface the engine depends on.
type DocumentStore interface {
	// ListConcepts returns the identifiers of every concept directory, sorted.
	ListConcepts(ctx context.Context) ([]string, error)
	// Read returns the content of the document at path.
	Read(ctx context.Context, path string) (string, error)
	// Write creates or overwrites the document at path.
	Write(ctx context.Context, path, content string) error
	// Delete removes the document at path. Deleting a missing document is not an error.
	Delete(ctx context.Context, path string) error
	// Exists reports whether a document exists at path.
	Exists(ctx context.Context, path string) (bool, error)
	// List returns every document path under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
