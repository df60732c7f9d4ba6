package repocache

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=skillops", "GIT_AUTHOR_EMAIL=skillops@example.com",
		"GIT_COMMITTER_NAME=skillops", "GIT_COMMITTER_EMAIL=skillops@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func commitFile(t *testing.T, repo, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(repo, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, name), []byte(content), 0o644))
	gitCmd(t, repo, "add", ".")
	gitCmd(t, repo, "commit", "-q", "-m", "update "+name)
}

func TestShellGit_CloneAndPull(t *testing.T) {
	requireGit(t)

	upstream := t.TempDir()
	gitCmd(t, upstream, "init", "-q")
	commitFile(t, upstream, "docs/index.md", "v1")

	cache := filepath.Join(t.TempDir(), "cache")
	manager := NewManager(upstream, cache, NewShellGit())

	status, err := manager.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusCloned, status)

	content, err := os.ReadFile(filepath.Join(cache, "docs", "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(content))

	commitFile(t, upstream, "docs/index.md", "v2")

	status, err = manager.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, status)

	content, err = os.ReadFile(filepath.Join(cache, "docs", "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))
}

func TestShellGit_CloneFailureIncludesOutput(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	err := NewShellGit().Clone(context.Background(), filepath.Join(dir, "does-not-exist"), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git clone failed")
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestShellGit_PullWithoutUpstreamIsStale(t *testing.T) {
	requireGit(t)

	cache := t.TempDir()
	gitCmd(t, cache, "init", "-q")

	status, err := NewManager("unused", cache, NewShellGit()).Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusStale, status)
}
