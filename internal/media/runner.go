package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Output holds both captured streams of a finished tool invocation.
// Stderr is kept even on success; ffmpeg writes its progress there.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes external media tools. The argument list fully
// determines tool behavior; no interactive input is ever supplied.
type Runner interface {
	Run(ctx context.Context, command string, args ...string) (Output, error)
}

// ExecRunner runs tools as OS subprocesses. A non-zero Timeout bounds
// each invocation; zero means no limit, matching the reference behavior.
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, command string, args ...string) (Output, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		return out, &ExternalToolError{
			Command:  command,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
		}
	}
	return out, fmt.Errorf("run %s: %w", command, err)
}
