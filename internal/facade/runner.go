package facade

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds every non-interactive external command.
const DefaultTimeout = 10 * time.Second

// Runner executes external tools.
type Runner interface {
	// Run executes name with args and returns stdout. A non-zero exit,
	// a missing binary, or an exceeded wait is returned as an *Error.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// RunInteractive executes name with args attached to the caller's
	// terminal and waits without a timeout.
	RunInteractive(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Timeout for Run. Zero means DefaultTimeout; negative disables it.
	Timeout time.Duration
}

func (r ExecRunner) timeout() time.Duration {
	if r.Timeout == 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// Run executes a command and returns its stdout.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if d := r.timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Don't let a grandchild holding the pipes open keep us past the deadline.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}
	return stdout.String(), commandError(ctx, name, err, stderr.String())
}

// RunInteractive wires stdin, stdout, and stderr to the current process.
func (r ExecRunner) RunInteractive(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return commandError(ctx, name, err, "")
	}
	return nil
}

func commandError(ctx context.Context, name string, err error, stderr string) *Error {
	msg := strings.TrimSpace(stderr)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{
			Kind:     KindTimeout,
			Msg:      fmt.Sprintf("%s did not finish in time", name),
			Err:      ctx.Err(),
			ExitCode: -1,
		}
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return &Error{
			Kind:     KindNotInstalled,
			Msg:      fmt.Sprintf("%s not found in PATH", name),
			Err:      err,
			ExitCode: -1,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Error{
			Kind:     classify(msg),
			Msg:      msg,
			Err:      err,
			ExitCode: exitErr.ExitCode(),
		}
	}
	return &Error{Kind: KindCommandFailed, Msg: msg, Err: err, ExitCode: -1}
}
