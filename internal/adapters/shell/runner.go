// Package shell provides command runners that execute package check and install commands.
package shell

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/syntax"
)

const (
	// DefaultTimeout applies to Execute when the runner was built without one.
	DefaultTimeout = 60 * time.Second

	waitDelay = 2 * time.Second
)

// Runner implements ports.CommandRunner by running commands through `sh -c`.
type Runner struct {
	logger  ports.Logger
	timeout time.Duration
	shell   string
	dir     string
}

// Option configures a Runner.
type Option func(*Runner)

// WithShell overrides the shell binary used to run commands.
func WithShell(shell string) Option {
	return func(r *Runner) { r.shell = shell }
}

// WithDir sets the working directory of every command.
func WithDir(dir string) Option {
	return func(r *Runner) { r.dir = dir }
}

// NewRunner creates a Runner. A non-positive timeout falls back to DefaultTimeout.
func NewRunner(logger ports.Logger, timeout time.Duration, opts ...Option) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &Runner{
		logger:  logger,
		timeout: timeout,
		shell:   "sh",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs cmd with the runner's default timeout.
func (r *Runner) Execute(ctx context.Context, cmd string) (domain.CommandOutput, error) {
	return r.ExecuteStreaming(ctx, cmd, r.timeout, nil)
}

// ExecuteWithTimeout runs cmd and kills it once timeout elapses.
func (r *Runner) ExecuteWithTimeout(
	ctx context.Context,
	cmd string,
	timeout time.Duration,
) (domain.CommandOutput, error) {
	return r.ExecuteStreaming(ctx, cmd, timeout, nil)
}

// ExecuteStreaming runs cmd, copying its output to sink while also capturing it.
// A non-zero exit status is reported in the output, not as an error.
func (r *Runner) ExecuteStreaming(
	ctx context.Context,
	cmd string,
	timeout time.Duration,
	sink ports.OutputSink,
) (domain.CommandOutput, error) {
	if timeout <= 0 {
		timeout = r.timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sinkOut, sinkErr := sinkWriters(sink)
	stdout := newCapture(sinkOut, r.logger, "")
	stderr := newCapture(sinkErr, r.logger, "stderr: ")

	c := exec.CommandContext(runCtx, r.shell, "-c", cmd) //nolint:gosec // commands come from package definitions
	c.Dir = r.dir
	c.Stdout = stdout
	c.Stderr = stderr
	c.WaitDelay = waitDelay

	start := time.Now()
	err := c.Run()

	out := domain.CommandOutput{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err := contextError(ctx, runCtx, cmd, timeout); err != nil {
		return out, err
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, zerr.With(zerr.Wrap(domain.ErrCommandIO, err.Error()), "command", cmd)
	}

	out.Success = true
	return out, nil
}

// IsCommandAvailable reports whether `command -v name` succeeds.
func (r *Runner) IsCommandAvailable(ctx context.Context, name string) bool {
	quoted, err := syntax.Quote(name, syntax.LangPOSIX)
	if err != nil {
		return false
	}
	out, err := r.ExecuteWithTimeout(ctx, "command -v "+quoted+" >/dev/null 2>&1", r.timeout)
	return err == nil && out.Success
}

// contextError maps an expired deadline or a cancelled parent context to a typed error.
func contextError(parent, run context.Context, cmd string, timeout time.Duration) error {
	if parent.Err() != nil {
		return zerr.With(zerr.Wrap(domain.ErrCommandExecution, parent.Err().Error()), "command", cmd)
	}
	if errors.Is(run.Err(), context.DeadlineExceeded) {
		err := zerr.With(zerr.Wrap(domain.ErrCommandTimeout, ""), "command", cmd)
		return zerr.With(err, "timeout", timeout.String())
	}
	return nil
}
