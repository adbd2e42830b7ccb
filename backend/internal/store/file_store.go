package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"carton/backend/internal/constants"
	apperrors "carton/backend/pkg/errors"
	"carton/backend/pkg/logger"
	"go.uber.org/zap"
)

// FileStore keeps documents as files under a base directory.
type FileStore struct {
	basePath string
	logger   *zap.Logger
}

// NewFileStore creates a file-backed store rooted at basePath.
func NewFileStore(basePath string) *FileStore {
	return &FileStore{
		basePath: basePath,
		logger:   logger.Get(),
	}
}

// BasePath returns the store root on disk.
func (s *FileStore) BasePath() string {
	return s.basePath
}

func (s *FileStore) abs(p string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(path.Clean("/" + p)))
}

// ListConcepts returns the names of the directories under concepts/.
func (s *FileStore) ListConcepts(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.abs(constants.ConceptsDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, apperrors.NewStoreReadFailed(constants.ConceptsDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the document at p.
func (s *FileStore) Read(ctx context.Context, p string) (string, error) {
	data, err := os.ReadFile(s.abs(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperrors.NewDocumentNotFound(p)
		}
		return "", apperrors.NewStoreReadFailed(p, err)
	}
	return string(data), nil
}

// Write creates parent directories as needed and overwrites the document at p.
func (s *FileStore) Write(ctx context.Context, p, content string) error {
	full := s.abs(p)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return apperrors.NewStoreWriteFailed(p, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return apperrors.NewStoreWriteFailed(p, err)
	}
	s.logger.Debug("Document written", zap.String("path", p), zap.Int("bytes", len(content)))
	return nil
}

// Delete removes the document at p if present.
func (s *FileStore) Delete(ctx context.Context, p string) error {
	if err := os.Remove(s.abs(p)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewStoreWriteFailed(p, err)
	}
	return nil
}

// Exists reports whether a regular file exists at p.
func (s *FileStore) Exists(ctx context.Context, p string) (bool, error) {
	info, err := os.Stat(s.abs(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, apperrors.NewStoreReadFailed(p, err)
	}
	return !info.IsDir(), nil
}

// List walks prefix and returns every markdown document beneath it.
func (s *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	root := s.abs(prefix)
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == root {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			// Version control metadata is not part of the corpus
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), constants.DocumentExt) {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, apperrors.NewStoreReadFailed(prefix, err)
	}
	sort.Strings(paths)
	return paths, nil
}
