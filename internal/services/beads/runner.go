package beads

import (
	"context"
	"os/exec"
	"time"
)

// CommandRunner abstracts command execution for testing
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs real commands using os/exec
type ExecRunner struct{}

// Run executes a command with a 30-second timeout unless ctx already has a deadline
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	// stdout only: bd prints warnings on stderr
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}
