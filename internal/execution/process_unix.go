//go:build !windows

package execution

import (
	"os"
	"os/exec"
	"syscall"
)

// The build tool runs in its own process group so the JVMs it forks are terminated with it
func setPlatformSpecificAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

func terminate(process *os.Process) error {
	if err := syscall.Kill(-process.Pid, syscall.SIGTERM); err != nil {
		return process.Signal(syscall.SIGTERM)
	}
	return nil
}
