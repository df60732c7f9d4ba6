package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectSkills(t *testing.T) {
	cfg := loadTestConfig(t, "")

	tests := []struct {
		name    string
		args    []string
		opts    UpdateConfig
		want    []string
		wantErr string
	}{
		{name: "named", args: []string{"adk_developer"}, want: []string{"adk_developer"}},
		{name: "all", opts: UpdateConfig{All: true}, want: []string{"a2ui_developer", "adk_developer"}},
		{name: "none", wantErr: "specify a skill"},
		{name: "unknown", args: []string{"nope"}, wantErr: `unknown skill "nope"`},
		{name: "all with names", args: []string{"adk_developer"}, opts: UpdateConfig{All: true}, wantErr: "--all cannot be combined"},
		{name: "skill dir with many", opts: UpdateConfig{All: true, SkillDir: "/tmp/x"}, wantErr: "--skill-dir can only be used"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectSkills(cfg, tt.args, &tt.opts)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunUpdate(t *testing.T) {
	cfg := loadTestConfig(t, "")
	git := &fakeGit{files: map[string]string{
		"contributing/samples/hello/agent.py":      "print('hi')",
		"contributing/samples/hello/__pycache__/a": "x",
	}}
	p, out, _ := newTestPresenter()

	err := runUpdate(context.Background(), cfg, []string{"adk_developer"}, NewUpdateConfig(), git, p)
	require.NoError(t, err)

	skillDir := cfg.SkillDir("adk_developer")
	assert.FileExists(t, filepath.Join(skillDir, "examples/hello/agent.py"))
	assert.NoDirExists(t, filepath.Join(skillDir, "examples/hello/__pycache__"))
	assert.Equal(t, 1, git.clones)

	assert.Contains(t, out.String(), "Updating adk_developer")
	assert.Contains(t, out.String(), "Synced contributing/samples -> examples (1 files)")
	assert.Contains(t, out.String(), "Skipped docs (not in repository)")
	assert.Contains(t, out.String(), "adk_developer updated in")
}

func TestRunUpdate_SkillDirOverride(t *testing.T) {
	cfg := loadTestConfig(t, "")
	git := &fakeGit{files: map[string]string{"contributing/samples/a.py": "a"}}
	p, _, _ := newTestPresenter()
	dir := filepath.Join(t.TempDir(), "custom")

	opts := NewUpdateConfig()
	opts.SkillDir = dir
	require.NoError(t, runUpdate(context.Background(), cfg, []string{"adk_developer"}, opts, git, p))

	assert.FileExists(t, filepath.Join(dir, "examples/a.py"))
	_, err := os.Stat(cfg.SkillDir("adk_developer"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunUpdate_CloneFailure(t *testing.T) {
	cfg := loadTestConfig(t, "")
	git := &fakeGit{cloneErr: errors.New("network unreachable")}
	p, _, errOut := newTestPresenter()

	err := runUpdate(context.Background(), cfg, nil, &UpdateConfig{All: true}, git, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 skills failed")
	assert.Contains(t, errOut.String(), "Failed to update a2ui_developer")
	assert.Contains(t, errOut.String(), "network unreachable")
	assert.Equal(t, 2, git.clones)
	assert.NoDirExists(t, cfg.SkillDir("adk_developer"))
}
