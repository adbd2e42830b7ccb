package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carton/backend/pkg/config"
	apperrors "carton/backend/pkg/errors"
)

type recorder struct {
	calls   []string
	outputs map[string]string
	fail    map[string]error
}

func (r *recorder) run(ctx context.Context, dir string, args ...string) (string, error) {
	r.calls = append(r.calls, strings.Join(args, " "))
	if err, ok := r.fail[args[0]]; ok {
		return "", err
	}
	return r.outputs[args[0]], nil
}

func newTestSyncer(t *testing.T, base string, rec *recorder) *Syncer {
	t.Helper()
	cfg := &config.Config{RepoURL: "https://example.com/wiki.git", Branch: "main", BasePath: base}
	return NewSyncerWithRunner(cfg, rec.run)
}

func TestPrepare_ClonesWhenMissing(t *testing.T) {
	base := filepath.Join(t.TempDir(), "wiki")
	rec := &recorder{}

	require.NoError(t, newTestSyncer(t, base, rec).Prepare(context.Background()))
	assert.Equal(t, []string{"clone --branch main https://example.com/wiki.git " + base}, rec.calls)
}

func TestPrepare_PullsExistingCheckout(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, ".git"), 0o755))
	rec := &recorder{}

	require.NoError(t, newTestSyncer(t, base, rec).Prepare(context.Background()))
	assert.Equal(t, []string{"fetch origin", "pull --ff-only origin main"}, rec.calls)
}

func TestPublish_CommitsAndPushes(t *testing.T) {
	rec := &recorder{outputs: map[string]string{"status": "M concepts/Gravity/Gravity.md"}}

	require.NoError(t, newTestSyncer(t, t.TempDir(), rec).Publish(context.Background(), "Add Gravity concept"))
	assert.Equal(t, []string{
		"add .",
		"status --porcelain",
		"commit -m Add Gravity concept",
		"push origin main",
	}, rec.calls)
}

func TestPublish_CleanTreeSkipsCommit(t *testing.T) {
	rec := &recorder{}

	require.NoError(t, newTestSyncer(t, t.TempDir(), rec).Publish(context.Background(), "noop"))
	assert.Equal(t, []string{"add .", "status --porcelain"}, rec.calls)
}

func TestPublish_PushFailureSurfaces(t *testing.T) {
	rec := &recorder{
		outputs: map[string]string{"status": "M x"},
		fail:    map[string]error{"push": apperrors.NewVCSCommandFailed("push", "rejected", errors.New("exit status 1"))},
	}

	err := newTestSyncer(t, t.TempDir(), rec).Publish(context.Background(), "Add X concept")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeVCS))
}
