// Package vcs keeps the concept store in step with a remote git repository.
// Credentials come from the ambient git configuration.
package vcs

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"carton/backend/pkg/config"
	apperrors "carton/backend/pkg/errors"
	"carton/backend/pkg/logger"
)

// Runner executes git with args in dir and returns trimmed stdout.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

// Syncer clones, pulls, commits and pushes the store directory.
type Syncer struct {
	repoURL  string
	branch   string
	basePath string
	run      Runner
	logger   *zap.Logger
}

// NewSyncer creates a syncer for the store at cfg.BasePath.
func NewSyncer(cfg *config.Config) *Syncer {
	return NewSyncerWithRunner(cfg, GitRunner(60*time.Second))
}

// NewSyncerWithRunner creates a syncer that shells out through run.
func NewSyncerWithRunner(cfg *config.Config, run Runner) *Syncer {
	return &Syncer{
		repoURL:  cfg.RepoURL,
		branch:   cfg.Branch,
		basePath: cfg.BasePath,
		run:      run,
		logger:   logger.Named("vcs"),
	}
}

// GitRunner runs the git binary with a per-command timeout.
func GitRunner(timeout time.Duration) Runner {
	return func(ctx context.Context, dir string, args ...string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "git", args...)
		cmd.Dir = dir

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return "", apperrors.NewVCSCommandFailed(args[0], "timeout after "+timeout.String(), ctx.Err())
			}
			return "", apperrors.NewVCSCommandFailed(args[0], strings.TrimSpace(stderr.String()), err)
		}
		return strings.TrimSpace(stdout.String()), nil
	}
}

// Prepare makes the store a current checkout of the remote: it clones when
// the directory holds no repository yet and pulls otherwise.
func (s *Syncer) Prepare(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(s.basePath, ".git")); os.IsNotExist(err) {
		return s.clone(ctx)
	}

	if _, err := s.run(ctx, s.basePath, "fetch", "origin"); err != nil {
		return err
	}
	if _, err := s.run(ctx, s.basePath, "pull", "--ff-only", "origin", s.branch); err != nil {
		return err
	}
	s.logger.Debug("Store synced with remote", zap.String("branch", s.branch))
	return nil
}

func (s *Syncer) clone(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.basePath), 0o755); err != nil {
		return apperrors.NewVCSCommandFailed("clone", err.Error(), err)
	}
	if _, err := s.run(ctx, filepath.Dir(s.basePath), "clone", "--branch", s.branch, s.repoURL, s.basePath); err != nil {
		return err
	}
	s.logger.Info("Store cloned",
		zap.String("repo", s.repoURL),
		zap.String("path", s.basePath),
	)
	return nil
}

// Publish commits every change under the store and pushes it. A clean tree
// is not an error.
func (s *Syncer) Publish(ctx context.Context, message string) error {
	if _, err := s.run(ctx, s.basePath, "add", "."); err != nil {
		return err
	}
	status, err := s.run(ctx, s.basePath, "status", "--porcelain")
	if err != nil {
		return err
	}
	if status == "" {
		s.logger.Debug("Nothing to commit", zap.String("message", message))
		return nil
	}
	if _, err := s.run(ctx, s.basePath, "commit", "-m", message); err != nil {
		return err
	}
	if _, err := s.run(ctx, s.basePath, "push", "origin", s.branch); err != nil {
		return err
	}
	s.logger.Info("Changes pushed", zap.String("message", message))
	return nil
}
