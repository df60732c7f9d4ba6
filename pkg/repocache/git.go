package repocache

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillops/pkg/osutil"
)

// Git is the subset of version-control operations the cache needs.
type Git interface {
	// Clone clones url into dir, which already exists and is empty.
	Clone(ctx context.Context, url, dir string) error
	// Pull fetches and merges the upstream branch of the working copy in dir.
	Pull(ctx context.Context, dir string) error
}

// ShellGit implements Git by running the git binary.
type ShellGit struct {
	binary string
}

// NewShellGit returns a Git backed by the git executable on PATH.
func NewShellGit() *ShellGit {
	return &ShellGit{binary: "git"}
}

// Clone runs `git clone <url> .` inside dir.
func (g *ShellGit) Clone(ctx context.Context, url, dir string) error {
	cmd := exec.CommandContext(ctx, g.binary, "clone", url, ".")
	cmd.Dir = dir
	if err := run(cmd); err != nil {
		return errors.Wrap(err, "git clone failed")
	}
	return nil
}

// Pull runs `git pull` inside dir.
func (g *ShellGit) Pull(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, g.binary, "pull")
	cmd.Dir = dir
	if err := run(cmd); err != nil {
		return errors.Wrap(err, "git pull failed")
	}
	return nil
}

// run executes cmd without ever prompting for credentials and folds its
// combined output into the returned error. Cancelling the command's context
// kills git together with its transport helpers.
func run(cmd *exec.Cmd) error {
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	osutil.SetProcessGroup(cmd)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "%s", string(output))
	}
	return nil
}
