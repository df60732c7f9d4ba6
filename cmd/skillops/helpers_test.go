package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillops/pkg/config"
	"github.com/jingkaihe/skillops/pkg/presenter"
)

func loadTestConfig(t *testing.T, yamlContent string) *config.Config {
	t.Helper()
	root := t.TempDir()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yamlContent)))
	v.Set("cache_root", filepath.Join(root, "cache"))
	v.Set("skills_root", filepath.Join(root, "skills"))

	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func newTestPresenter() (*presenter.TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return presenter.NewWithOptions(&out, &errOut, presenter.ColorNever), &out, &errOut
}

// fakeGit clones a fixed tree into the target directory.
type fakeGit struct {
	files    map[string]string
	clones   int
	cloneErr error
}

func (f *fakeGit) Clone(_ context.Context, _, dir string) error {
	f.clones++
	if f.cloneErr != nil {
		return f.cloneErr
	}
	files := map[string]string{".git/HEAD": "ref: refs/heads/main"}
	for k, v := range f.files {
		files[k] = v
	}
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeGit) Pull(context.Context, string) error { return nil }
