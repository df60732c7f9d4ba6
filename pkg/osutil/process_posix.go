//go:build unix

// Package osutil holds platform-specific process helpers.
package osutil

import (
	"os/exec"
	"syscall"
)

// SetProcessGroup runs cmd in its own process group and makes context
// cancellation kill the whole group, so helpers spawned by cmd (such as
// git-remote-https) exit with it.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
