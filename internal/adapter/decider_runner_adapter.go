package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// waitDelay bounds how long a killed decider's children may keep its output
// pipes open.
const waitDelay = 2 * time.Second

// DeciderRunnerAdapter abstracts running the external decider script.
type DeciderRunnerAdapter interface {
	// RunDecider runs decider with the candidate path as its only argument and
	// waits for it. It returns the exit code and the combined stdout/stderr.
	// err is non-nil only when the process could not be run to completion
	// (missing binary, killed by timeout or cancellation); a non-zero exit
	// code alone is not an error.
	RunDecider(ctx context.Context, decider, candidatePath string) (exitCode int, output string, err error)
}

// LocalDeciderRunnerAdapter provides a concrete implementation using os/exec.
// The decider runs until it exits or ctx is done.
type LocalDeciderRunnerAdapter struct{}

// NewLocalDeciderRunnerAdapter constructs a LocalDeciderRunnerAdapter.
func NewLocalDeciderRunnerAdapter() *LocalDeciderRunnerAdapter {
	return &LocalDeciderRunnerAdapter{}
}

// RunDecider runs the decider on a candidate file.
func (a *LocalDeciderRunnerAdapter) RunDecider(ctx context.Context, decider, candidatePath string) (int, string, error) {
	// #nosec G204 - running the user's decider is the whole point
	cmd := exec.CommandContext(ctx, decider, candidatePath)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String() + stderr.String()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, output, fmt.Errorf("decider %s interrupted: %w", decider, ctxErr)
	}

	if err == nil {
		return 0, output, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), output, nil
	}

	return -1, output, fmt.Errorf("run decider %s: %w", decider, err)
}
