package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adkSkill = `---
name: adk_developer
description: Build agents with the Agent Development Kit
---

# ADK Developer

Read examples/ before writing code.
`

func writeSkill(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "adk_developer")
	writeSkill(t, dir, adkSkill)

	skill, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "adk_developer", skill.Name)
	assert.Equal(t, "Build agents with the Agent Development Kit", skill.Description)
	assert.Equal(t, dir, skill.Directory)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		assert.True(t, errors.Is(err, ErrNotInstalled))
	})

	t.Run("no frontmatter", func(t *testing.T) {
		dir := t.TempDir()
		writeSkill(t, dir, "# Just markdown\n")
		_, err := Load(dir)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotInstalled))
	})

	t.Run("no name", func(t *testing.T) {
		dir := t.TempDir()
		writeSkill(t, dir, "---\ndescription: nameless\n---\n\nbody\n")
		_, err := Load(dir)
		assert.ErrorContains(t, err, "skill name is required")
	})
}

func TestInspect(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "adk_developer")
	writeSkill(t, dir, adkSkill)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "examples"), 0o755))

	entry := Inspect("adk_developer", dir, []string{"examples", "docs"})
	assert.True(t, entry.Installed())
	assert.NoError(t, entry.Err)
	assert.Equal(t, []string{"examples"}, entry.Present)
	assert.Equal(t, []string{"docs"}, entry.Missing)
}

func TestInspect_NotInstalled(t *testing.T) {
	entry := Inspect("a2ui_developer", filepath.Join(t.TempDir(), "missing"), []string{"docs"})
	assert.False(t, entry.Installed())
	assert.NoError(t, entry.Err)
	assert.Equal(t, []string{"docs"}, entry.Missing)
}
