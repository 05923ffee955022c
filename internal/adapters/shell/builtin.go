package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// syntaxErrorExitCode is the status POSIX shells exit with when a command does not parse.
const syntaxErrorExitCode = 2

// BuiltinRunner implements ports.CommandRunner with an in-process POSIX shell interpreter.
// It needs no sh binary on the host; external programs are still started through PATH.
type BuiltinRunner struct {
	logger  ports.Logger
	timeout time.Duration
	dir     string
	env     []string
}

// NewBuiltinRunner creates a BuiltinRunner inheriting the process environment.
func NewBuiltinRunner(logger ports.Logger, timeout time.Duration, opts ...Option) *BuiltinRunner {
	base := NewRunner(logger, timeout, opts...)
	return &BuiltinRunner{
		logger:  logger,
		timeout: base.timeout,
		dir:     base.dir,
		env:     os.Environ(),
	}
}

// Execute runs cmd with the runner's default timeout.
func (r *BuiltinRunner) Execute(ctx context.Context, cmd string) (domain.CommandOutput, error) {
	return r.ExecuteStreaming(ctx, cmd, r.timeout, nil)
}

// ExecuteWithTimeout runs cmd and aborts it once timeout elapses.
func (r *BuiltinRunner) ExecuteWithTimeout(
	ctx context.Context,
	cmd string,
	timeout time.Duration,
) (domain.CommandOutput, error) {
	return r.ExecuteStreaming(ctx, cmd, timeout, nil)
}

// ExecuteStreaming interprets cmd, copying its output to sink while also capturing it.
func (r *BuiltinRunner) ExecuteStreaming(
	ctx context.Context,
	cmd string,
	timeout time.Duration,
	sink ports.OutputSink,
) (domain.CommandOutput, error) {
	if timeout <= 0 {
		timeout = r.timeout
	}

	sinkOut, sinkErr := sinkWriters(sink)

	prog, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(strings.NewReader(cmd), "")
	if err != nil {
		return syntaxErrorOutput(err, sinkErr), nil
	}

	stdout := newCapture(sinkOut, r.logger, "")
	stderr := newCapture(sinkErr, r.logger, "stderr: ")

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(r.env...)),
		interp.StdIO(nil, stdout, stderr),
	}
	if r.dir != "" {
		opts = append(opts, interp.Dir(r.dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return domain.CommandOutput{}, zerr.With(zerr.Wrap(domain.ErrCommandIO, err.Error()), "command", cmd)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err = runner.Run(runCtx, prog)

	out := domain.CommandOutput{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := contextError(ctx, runCtx, cmd, timeout); ctxErr != nil {
		return out, ctxErr
	}

	if err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			out.ExitCode = int(status)
			return out, nil
		}
		return out, zerr.With(zerr.Wrap(domain.ErrCommandExecution, err.Error()), "command", cmd)
	}

	out.Success = true
	return out, nil
}

// syntaxErrorOutput reports a parse failure the way sh -c does: exit status 2 and the message on stderr.
func syntaxErrorOutput(err error, sinkErr io.Writer) domain.CommandOutput {
	msg := "sh: " + err.Error() + "\n"
	if sinkErr != nil {
		_, _ = io.WriteString(sinkErr, msg)
	}
	return domain.CommandOutput{ExitCode: syntaxErrorExitCode, Stderr: msg}
}

// IsCommandAvailable reports whether name resolves to an executable on PATH.
func (r *BuiltinRunner) IsCommandAvailable(_ context.Context, name string) bool {
	dir := r.dir
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	_, err := interp.LookPathDir(dir, expand.ListEnviron(r.env...), name)
	return err == nil
}
