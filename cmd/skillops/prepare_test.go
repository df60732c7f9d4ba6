package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillops/pkg/config"
	"github.com/jingkaihe/skillops/pkg/suggest"
)

type staticSuggester []string

func (s staticSuggester) Suggest(context.Context, []string) ([]string, error) {
	return s, nil
}

func TestRunPrepare(t *testing.T) {
	cfg := loadTestConfig(t, "")
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "data"), 0o755))
	p, out, _ := newTestPresenter()

	err := runPrepare(context.Background(), cfg, dir, NewPrepareConfig(), staticSuggester{"data"}, p)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, ".ae_ignore"))
	assert.FileExists(t, filepath.Join(dir, "requirements.txt"))
	assert.FileExists(t, filepath.Join(dir, ".env"))
	assert.Contains(t, out.String(), "Model suggested 1 patterns")
	assert.Contains(t, out.String(), ".ae_ignore updated (16 patterns added)")
	assert.Contains(t, out.String(), "1 of 1 top-level entries excluded")
	assert.Contains(t, out.String(), "Agent directory is ready")
}

func TestRunPrepare_DryRun(t *testing.T) {
	cfg := loadTestConfig(t, "")
	dir := t.TempDir()
	p, out, _ := newTestPresenter()

	opts := NewPrepareConfig()
	opts.DryRun = true
	require.NoError(t, runPrepare(context.Background(), cfg, dir, opts, suggest.Noop{}, p))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, out.String(), "+google-cloud-aiplatform[agent_engines,adk]")
	assert.Contains(t, out.String(), "Dry run: no files were written")
}

func TestRunPrepare_MissingDirectory(t *testing.T) {
	cfg := loadTestConfig(t, "")
	p, _, errOut := newTestPresenter()

	err := runPrepare(context.Background(), cfg, filepath.Join(t.TempDir(), "missing"), NewPrepareConfig(), suggest.Noop{}, p)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "directory not found")
}

func TestRunPrepare_FailedStepReported(t *testing.T) {
	cfg := loadTestConfig(t, "")
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0o755))
	p, out, errOut := newTestPresenter()

	err := runPrepare(context.Background(), cfg, dir, NewPrepareConfig(), suggest.Noop{}, p)
	require.Error(t, err)

	assert.Contains(t, errOut.String(), "Failed to update .env")
	assert.Contains(t, out.String(), ".ae_ignore updated")
	assert.Contains(t, out.String(), "requirements.txt updated")
	assert.Contains(t, out.String(), "Preparation finished with errors")
}

func TestNewSuggester(t *testing.T) {
	noProject := &suggest.ProjectResolver{
		Getenv: func(string) string { return "" },
		Gcloud: func(context.Context) (string, error) { return "", errors.New("gcloud not installed") },
	}
	enabled := config.SuggestConfig{Enabled: true, Location: "us-central1", Model: "gemini-2.5-flash"}

	t.Run("no-ai flag", func(t *testing.T) {
		p, _, _ := newTestPresenter()
		assert.IsType(t, suggest.Noop{}, newSuggester(context.Background(), enabled, true, noProject, p))
	})

	t.Run("disabled in config", func(t *testing.T) {
		p, _, _ := newTestPresenter()
		assert.IsType(t, suggest.Noop{}, newSuggester(context.Background(), config.SuggestConfig{}, false, noProject, p))
	})

	t.Run("no project", func(t *testing.T) {
		p, out, _ := newTestPresenter()
		assert.IsType(t, suggest.Noop{}, newSuggester(context.Background(), enabled, false, noProject, p))
		assert.Contains(t, out.String(), "No Google Cloud project found")
	})
}
