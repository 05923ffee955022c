package ports

import (
	"context"
	"io"
	"time"

	"go.trai.ch/selfie/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=command_runner.go -destination=mocks/mock_command_runner.go -package=mocks

// OutputSink receives command output as it is produced.
type OutputSink interface {
	Stdout() io.Writer
	Stderr() io.Writer
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	// Execute runs cmd with the runner's default timeout.
	Execute(ctx context.Context, cmd string) (domain.CommandOutput, error)

	// ExecuteWithTimeout runs cmd and fails with domain.ErrCommandTimeout once timeout elapses.
	ExecuteWithTimeout(ctx context.Context, cmd string, timeout time.Duration) (domain.CommandOutput, error)

	// ExecuteStreaming behaves like ExecuteWithTimeout and also copies output lines to sink as they arrive.
	ExecuteStreaming(
		ctx context.Context,
		cmd string,
		timeout time.Duration,
		sink OutputSink,
	) (domain.CommandOutput, error)

	// IsCommandAvailable reports whether name resolves to an executable.
	IsCommandAvailable(ctx context.Context, name string) bool
}

// RunnerFactory builds the CommandRunner matching the effective configuration.
type RunnerFactory func(cfg domain.AppConfig) CommandRunner
