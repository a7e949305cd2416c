//go:build windows

package execution

import (
	"os"
	"os/exec"
)

func setPlatformSpecificAttrs(cmd *exec.Cmd) {}

func terminate(process *os.Process) error {
	return process.Kill()
}
