package utils

import (
	"context"
	"os/exec"
	"syscall"
)

// RunFunc is the signature of a shell runner, injectable for tests.
type RunFunc func(shell, dir string, env []string) *ExecItem

type ExecItem struct {
	Pid    int
	Status int
	Args   []string
	Output string
}

// DoExec run shell command and wait for it to finish.
// Status holds the exit code; Output holds combined stdout/stderr.
func DoExec(shell, dir string, env []string) *ExecItem {
	return DoExecContext(context.Background(), shell, dir, env)
}

// DoExecContext run shell command under ctx; the process is killed
// when ctx expires and Status reports nonzero.
func DoExecContext(ctx context.Context, shell, dir string, env []string) *ExecItem {
	execItem := &ExecItem{
		Status: 0,
	}
	cmd := exec.CommandContext(ctx, "/bin/bash", "-c", shell)
	if dir != "" {
		cmd.Dir = dir
	}
	if env != nil {
		cmd.Env = env
	}
	result, err := cmd.CombinedOutput()
	execItem.Args = cmd.Args
	execItem.Output = string(result)
	if cmd.Process != nil {
		execItem.Pid = cmd.Process.Pid
	}
	if err != nil {
		execItem.Status = -1
		if ex, ok := err.(*exec.ExitError); ok {
			execItem.Status = ex.Sys().(syscall.WaitStatus).ExitStatus()
		}
		if execItem.Output == "" {
			execItem.Output = err.Error()
		}
	}
	return execItem
}
