package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/zerr"
)

// scriptedRunner answers commands from a table and counts invocations.
type scriptedRunner struct {
	clock   clockwork.FakeClock
	outputs map[string]domain.CommandOutput
	errs    map[string]error
	calls   []string
}

func (r *scriptedRunner) Run(_ context.Context, command string) (domain.CommandOutput, error) {
	r.calls = append(r.calls, command)
	if r.clock != nil {
		r.clock.Advance(250 * time.Millisecond)
	}
	if err, ok := r.errs[command]; ok {
		return domain.CommandOutput{}, err
	}
	return r.outputs[command], nil
}

func newInstallation(check string, clock clockwork.Clock) *domain.Installation {
	p := &domain.Package{
		Name:    "ripgrep",
		Version: "14.0.0",
		Environments: map[string]domain.EnvironmentConfig{
			"linux": {Install: "install-rg", Check: check},
		},
	}
	cfg, _ := p.ResolveEnvironment("linux")
	return domain.NewInstallation(p, "linux", cfg, clock)
}

func TestInstallation_ExecuteCheck_NoCheckCommand(t *testing.T) {
	runner := &scriptedRunner{}
	inst := newInstallation("", clockwork.NewFakeClock())

	installed, err := inst.ExecuteCheck(context.Background(), runner)
	require.NoError(t, err)
	assert.False(t, installed)
	assert.Equal(t, domain.StatusNotInstalled, inst.Status())
	assert.Empty(t, runner.calls, "no command should run without a check command")
}

func TestInstallation_ExecuteCheck(t *testing.T) {
	tests := []struct {
		name          string
		output        domain.CommandOutput
		runErr        error
		wantInstalled bool
		wantStatus    domain.InstallationStatus
		wantErr       error
	}{
		{
			name:          "exit zero means installed",
			output:        domain.CommandOutput{Success: true},
			wantInstalled: true,
			wantStatus:    domain.StatusAlreadyInstalled,
		},
		{
			name:       "non-zero exit means not installed",
			output:     domain.CommandOutput{ExitCode: 1},
			wantStatus: domain.StatusNotInstalled,
		},
		{
			name:       "timeout fails the installation",
			runErr:     zerr.With(zerr.Wrap(domain.ErrCommandTimeout, ""), "timeout", "1s"),
			wantStatus: domain.StatusFailed,
			wantErr:    domain.ErrCommandTimeout,
		},
		{
			name:       "spawn failure fails the installation",
			runErr:     zerr.Wrap(domain.ErrCommandIO, ""),
			wantStatus: domain.StatusFailed,
			wantErr:    domain.ErrCommandIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &scriptedRunner{
				outputs: map[string]domain.CommandOutput{"rg --version": tt.output},
				errs:    map[string]error{},
			}
			if tt.runErr != nil {
				runner.errs["rg --version"] = tt.runErr
			}
			inst := newInstallation("rg --version", clockwork.NewFakeClock())

			installed, err := inst.ExecuteCheck(context.Background(), runner)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.NotEmpty(t, inst.Reason())
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantInstalled, installed)
			assert.Equal(t, tt.wantStatus, inst.Status())
			assert.Equal(t, []string{"rg --version"}, runner.calls)
		})
	}
}

func TestInstallation_InstallSucceeds(t *testing.T) {
	clock := clockwork.NewFakeClock()
	runner := &scriptedRunner{
		clock:   clock,
		outputs: map[string]domain.CommandOutput{"install-rg": {Success: true, Stdout: "ok\n"}},
	}
	inst := newInstallation("", clock)

	inst.Start()
	installed, err := inst.ExecuteCheck(context.Background(), runner)
	require.NoError(t, err)
	require.False(t, installed)

	require.NoError(t, inst.ExecuteInstall(context.Background(), runner))
	require.NoError(t, inst.Complete(domain.StatusComplete))

	assert.Equal(t, domain.StatusComplete, inst.Status())
	assert.Positive(t, inst.Duration())

	res := inst.Result()
	assert.Equal(t, "ripgrep", res.Package)
	require.NotNil(t, res.Output)
	assert.Equal(t, "ok\n", res.Output.Stdout)
}

func TestInstallation_InstallExitsNonZero(t *testing.T) {
	clock := clockwork.NewFakeClock()
	runner := &scriptedRunner{
		clock: clock,
		outputs: map[string]domain.CommandOutput{
			"install-rg": {ExitCode: 1, Stderr: "permission denied\n"},
		},
	}
	inst := newInstallation("", clock)

	inst.Start()
	_, err := inst.ExecuteCheck(context.Background(), runner)
	require.NoError(t, err)

	err = inst.ExecuteInstall(context.Background(), runner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInstallCommandFailed))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, 1, zErr.Metadata()["exit_code"])
	assert.Equal(t, "permission denied", zErr.Metadata()["stderr"])
	assert.Equal(t, "ripgrep", zErr.Metadata()["package"])

	assert.Equal(t, domain.StatusFailed, inst.Status())
	assert.Equal(t, "exit code 1: permission denied", inst.Reason())

	require.NoError(t, inst.Complete(domain.StatusFailed))
	assert.Positive(t, inst.Duration(), "duration is recorded for failures too")
}

func TestInstallation_InvalidTransitions(t *testing.T) {
	t.Run("install before check", func(t *testing.T) {
		inst := newInstallation("", clockwork.NewFakeClock())
		err := inst.ExecuteInstall(context.Background(), &scriptedRunner{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
		assert.Equal(t, domain.StatusNotStarted, inst.Status())
	})

	t.Run("install after already installed", func(t *testing.T) {
		runner := &scriptedRunner{outputs: map[string]domain.CommandOutput{"check": {Success: true}}}
		inst := newInstallation("check", clockwork.NewFakeClock())
		installed, err := inst.ExecuteCheck(context.Background(), runner)
		require.NoError(t, err)
		require.True(t, installed)

		err = inst.ExecuteInstall(context.Background(), runner)
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
		assert.Equal(t, []string{"check"}, runner.calls)
	})

	t.Run("failed is never reset", func(t *testing.T) {
		runner := &scriptedRunner{errs: map[string]error{"check": zerr.Wrap(domain.ErrCommandIO, "")}}
		inst := newInstallation("check", clockwork.NewFakeClock())
		_, err := inst.ExecuteCheck(context.Background(), runner)
		require.Error(t, err)

		_, err = inst.ExecuteCheck(context.Background(), runner)
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
		assert.Equal(t, domain.StatusFailed, inst.Status())
	})

	t.Run("complete rejects non-terminal status", func(t *testing.T) {
		inst := newInstallation("", clockwork.NewFakeClock())
		err := inst.Complete(domain.StatusInstalling)
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	})
}

func TestInstallation_Skip(t *testing.T) {
	inst := newInstallation("", clockwork.NewFakeClock())
	require.NoError(t, inst.Skip("aborted"))
	require.NoError(t, inst.Complete(domain.StatusSkipped))

	res := inst.Result()
	assert.Equal(t, domain.StatusSkipped, res.Status)
	assert.Equal(t, "aborted", res.Reason)
	assert.Zero(t, res.Duration)
	assert.Nil(t, res.Output)
}

func TestInstallationStatus_IsTerminal(t *testing.T) {
	terminal := []domain.InstallationStatus{
		domain.StatusAlreadyInstalled, domain.StatusComplete, domain.StatusFailed, domain.StatusSkipped,
	}
	transient := []domain.InstallationStatus{
		domain.StatusNotStarted, domain.StatusChecking, domain.StatusNotInstalled, domain.StatusInstalling,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s)
	}
	for _, s := range transient {
		assert.False(t, s.IsTerminal(), s)
	}
}
