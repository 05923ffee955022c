package domain

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/zerr"
)

// InstallationStatus is the state of a single installation attempt.
type InstallationStatus string

const (
	// StatusNotStarted is the initial state.
	StatusNotStarted InstallationStatus = "NotStarted"
	// StatusChecking indicates the check command is running.
	StatusChecking InstallationStatus = "Checking"
	// StatusNotInstalled indicates the check found the package missing.
	StatusNotInstalled InstallationStatus = "NotInstalled"
	// StatusAlreadyInstalled indicates the check found the package present.
	StatusAlreadyInstalled InstallationStatus = "AlreadyInstalled"
	// StatusInstalling indicates the install command is running.
	StatusInstalling InstallationStatus = "Installing"
	// StatusComplete indicates the install command succeeded.
	StatusComplete InstallationStatus = "Complete"
	// StatusFailed indicates the check or install could not complete.
	StatusFailed InstallationStatus = "Failed"
	// StatusSkipped indicates the installation was never attempted.
	StatusSkipped InstallationStatus = "Skipped"
)

var transitions = map[InstallationStatus][]InstallationStatus{
	StatusNotStarted:   {StatusChecking, StatusSkipped},
	StatusChecking:     {StatusNotInstalled, StatusAlreadyInstalled, StatusFailed},
	StatusNotInstalled: {StatusInstalling},
	StatusInstalling:   {StatusComplete, StatusFailed},
}

// IsTerminal reports whether no further transition can leave s.
func (s InstallationStatus) IsTerminal() bool {
	switch s {
	case StatusAlreadyInstalled, StatusComplete, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s InstallationStatus) CanTransitionTo(next InstallationStatus) bool {
	return slices.Contains(transitions[s], next)
}

// CommandOutput is the captured result of one shell command.
type CommandOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Success  bool
	Duration time.Duration
}

// Runner executes a single shell command on behalf of an Installation.
type Runner interface {
	Run(ctx context.Context, command string) (CommandOutput, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, command string) (CommandOutput, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, command string) (CommandOutput, error) {
	return f(ctx, command)
}

// Installation is the mutable record of one attempt to install one package.
// A failed Installation is never reset; retrying needs a new one.
type Installation struct {
	Package     Package
	Environment string
	Config      EnvironmentConfig

	clock     clockwork.Clock
	status    InstallationStatus
	reason    string
	startTime time.Time
	duration  time.Duration
	output    *CommandOutput
}

// NewInstallation creates an Installation in the NotStarted state.
func NewInstallation(pkg *Package, environment string, cfg EnvironmentConfig, clock clockwork.Clock) *Installation {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Installation{
		Package:     *pkg,
		Environment: environment,
		Config:      cfg,
		clock:       clock,
		status:      StatusNotStarted,
	}
}

// Status returns the current state.
func (i *Installation) Status() InstallationStatus {
	return i.status
}

// Reason explains a Failed or Skipped status.
func (i *Installation) Reason() string {
	return i.reason
}

// Duration is the time between Start and Complete.
func (i *Installation) Duration() time.Duration {
	return i.duration
}

// Output returns the output of the last command run, if any.
func (i *Installation) Output() *CommandOutput {
	return i.output
}

// Start records the start time.
func (i *Installation) Start() {
	i.startTime = i.clock.Now()
}

// ExecuteCheck runs the check command and reports whether the package is already installed.
// Without a check command it reports false and runs nothing.
// A non-zero exit is not an error; a runner failure marks the installation Failed.
func (i *Installation) ExecuteCheck(ctx context.Context, runner Runner) (bool, error) {
	if err := i.transition(StatusChecking); err != nil {
		return false, err
	}

	if !i.Config.HasCheck() {
		return false, i.transition(StatusNotInstalled)
	}

	out, err := runner.Run(ctx, i.Config.Check)
	if err != nil {
		i.fail(err.Error())
		return false, zerr.With(zerr.Wrap(err, "check command failed"), "package", i.Package.Name)
	}
	i.output = &out

	if out.Success {
		return true, i.transition(StatusAlreadyInstalled)
	}
	return false, i.transition(StatusNotInstalled)
}

// ExecuteInstall runs the install command.
// A non-zero exit or a runner failure marks the installation Failed and is returned as an error.
func (i *Installation) ExecuteInstall(ctx context.Context, runner Runner) error {
	if err := i.transition(StatusInstalling); err != nil {
		return err
	}

	out, err := runner.Run(ctx, i.Config.Install)
	if err != nil {
		i.fail(err.Error())
		return zerr.With(zerr.Wrap(err, "install command failed"), "package", i.Package.Name)
	}
	i.output = &out

	if !out.Success {
		i.fail(failureReason(&out))
		err := zerr.With(zerr.Wrap(ErrInstallCommandFailed, ""), "package", i.Package.Name)
		err = zerr.With(err, "exit_code", out.ExitCode)
		return zerr.With(err, "stderr", strings.TrimSpace(out.Stderr))
	}

	return i.transition(StatusComplete)
}

// Skip marks a not yet started installation as Skipped.
func (i *Installation) Skip(reason string) error {
	if err := i.transition(StatusSkipped); err != nil {
		return err
	}
	i.reason = reason
	return nil
}

// Complete records the duration and sets the final status.
func (i *Installation) Complete(final InstallationStatus) error {
	if !final.IsTerminal() {
		return i.invalidTransition(final)
	}
	if final != i.status {
		if err := i.transition(final); err != nil {
			return err
		}
	}
	if !i.startTime.IsZero() {
		i.duration = i.clock.Since(i.startTime)
	}
	return nil
}

// Result returns a snapshot of the installation for reporting.
func (i *Installation) Result() InstallationResult {
	res := InstallationResult{
		Package:  i.Package.Name,
		Version:  i.Package.Version,
		Status:   i.status,
		Reason:   i.reason,
		Duration: i.duration,
	}
	if i.output != nil {
		out := *i.output
		res.Output = &out
	}
	return res
}

func (i *Installation) transition(next InstallationStatus) error {
	if !i.status.CanTransitionTo(next) {
		return i.invalidTransition(next)
	}
	i.status = next
	return nil
}

func (i *Installation) invalidTransition(next InstallationStatus) error {
	err := zerr.With(zerr.Wrap(ErrInvalidTransition, ""), "from", string(i.status))
	err = zerr.With(err, "to", string(next))
	return zerr.With(err, "package", i.Package.Name)
}

func (i *Installation) fail(reason string) {
	i.status = StatusFailed
	i.reason = reason
}

func failureReason(out *CommandOutput) string {
	reason := fmt.Sprintf("exit code %d", out.ExitCode)
	if stderr := strings.TrimSpace(out.Stderr); stderr != "" {
		reason += ": " + stderr
	}
	return reason
}
