//go:build windows

// Package osutil holds platform-specific process helpers.
package osutil

import (
	"os"
	"os/exec"
	"syscall"
)

// SetProcessGroup starts cmd in a new process group. Windows has no group
// kill, so cancellation only terminates cmd itself.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Kill)
	}
}
