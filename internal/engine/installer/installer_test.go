package installer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/selfie/internal/adapters/telemetry"
	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
	"go.trai.ch/selfie/internal/core/ports/mocks"
	"go.trai.ch/selfie/internal/engine/installer"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const (
	env     = "linux"
	timeout = 30 * time.Second
)

func config(stopOnError bool, parallel int) domain.AppConfig {
	return domain.AppConfig{
		Environment:      env,
		PackageDirectory: "/packages",
		CommandTimeout:   timeout,
		StopOnError:      stopOnError,
		MaxParallel:      parallel,
		LogFormat:        domain.LogFormatText,
		Shell:            domain.ShellSystem,
	}
}

// definition describes a test package in the linux environment.
type definition struct {
	check string
	deps  []string
}

func installCmd(name string) string { return "install " + name }

func newRepo(t *testing.T, defs map[string]definition) *mocks.MockPackageRepository {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockPackageRepository(ctrl)
	repo.EXPECT().GetPackage(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, name string) (domain.Package, error) {
			def, ok := defs[name]
			if !ok {
				return domain.Package{}, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, ""), "package", name)
			}
			return domain.Package{
				Name:    name,
				Version: "1.0.0",
				Environments: map[string]domain.EnvironmentConfig{
					env: {Install: installCmd(name), Check: def.check, Dependencies: def.deps},
				},
			}, nil
		},
	).AnyTimes()
	return repo
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	return logger
}

// step is the scripted outcome of one command.
type step struct {
	exitCode int
	err      error
	delay    time.Duration
}

// fakeRunner answers commands from a script and records what ran.
// Unscripted commands succeed. Delays sleep on the real clock so they work inside a synctest bubble.
type fakeRunner struct {
	script map[string]step
	clock  clockwork.FakeClock

	mu        sync.Mutex
	ran       []string
	running   int
	maxActive int
}

func (f *fakeRunner) Execute(ctx context.Context, cmd string) (domain.CommandOutput, error) {
	return f.ExecuteStreaming(ctx, cmd, 0, nil)
}

func (f *fakeRunner) ExecuteWithTimeout(ctx context.Context, cmd string, d time.Duration) (domain.CommandOutput, error) {
	return f.ExecuteStreaming(ctx, cmd, d, nil)
}

func (f *fakeRunner) ExecuteStreaming(
	ctx context.Context,
	cmd string,
	_ time.Duration,
	_ ports.OutputSink,
) (domain.CommandOutput, error) {
	f.mu.Lock()
	f.ran = append(f.ran, cmd)
	f.running++
	f.maxActive = max(f.maxActive, f.running)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.running--
		f.mu.Unlock()
	}()

	s := f.script[cmd]
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return domain.CommandOutput{}, zerr.With(zerr.Wrap(domain.ErrCommandExecution, ctx.Err().Error()), "command", cmd)
		}
	}
	if f.clock != nil {
		f.clock.Advance(time.Second)
	}
	if s.err != nil {
		return domain.CommandOutput{}, s.err
	}
	out := domain.CommandOutput{ExitCode: s.exitCode, Success: s.exitCode == 0}
	if !out.Success {
		out.Stderr = "boom\n"
	}
	return out, nil
}

func (f *fakeRunner) IsCommandAvailable(context.Context, string) bool { return true }

func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ran...)
}

func names(results []domain.InstallationResult) []string {
	out := make([]string, len(results))
	for i := range results {
		out[i] = results[i].Package
	}
	return out
}

func TestManager_InstallPackage_NoCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := clockwork.NewFakeClock()
	runner := mocks.NewMockCommandRunner(ctrl)
	tel := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)

	ctx := context.Background()
	tel.EXPECT().Record(gomock.Any(), "install jq").Return(ctx, vertex)
	runner.EXPECT().ExecuteStreaming(gomock.Any(), "apt-get install -y jq", timeout, vertex).DoAndReturn(
		func(context.Context, string, time.Duration, ports.OutputSink) (domain.CommandOutput, error) {
			clock.Advance(2 * time.Second)
			return domain.CommandOutput{Success: true}, nil
		},
	)
	vertex.EXPECT().Complete(nil)

	m := installer.New(config(true, 1), nil, runner, tel, quietLogger(t), installer.WithClock(clock))
	res, err := m.InstallPackage(ctx, &domain.Package{
		Name:         "jq",
		Environments: map[string]domain.EnvironmentConfig{env: {Install: "apt-get install -y jq"}},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusComplete, res.Status)
	assert.Equal(t, 2*time.Second, res.Duration)
	require.NotNil(t, res.Output)
	assert.True(t, res.Output.Success)
}

func TestManager_InstallPackage_AlreadyInstalled(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	tel := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)

	tel.EXPECT().Record(gomock.Any(), gomock.Any()).Return(context.Background(), vertex)
	runner.EXPECT().ExecuteStreaming(gomock.Any(), "command -v git", timeout, vertex).
		Return(domain.CommandOutput{Success: true}, nil).Times(1)
	gomock.InOrder(
		vertex.EXPECT().Cached(),
		vertex.EXPECT().Complete(nil),
	)

	m := installer.New(config(true, 1), nil, runner, tel, quietLogger(t))
	res, err := m.InstallPackage(context.Background(), &domain.Package{
		Name:         "git",
		Environments: map[string]domain.EnvironmentConfig{env: {Install: "apt-get install -y git", Check: "command -v git"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAlreadyInstalled, res.Status)
}

func TestManager_InstallPackage_InstallFails(t *testing.T) {
	clock := clockwork.NewFakeClock()
	runner := &fakeRunner{clock: clock, script: map[string]step{
		"which fd":       {exitCode: 1},
		installCmd("fd"): {exitCode: 1},
	}}

	m := installer.New(config(true, 1), nil, runner, telemetry.NewNoOp(), quietLogger(t), installer.WithClock(clock))
	res, err := m.InstallPackage(context.Background(), &domain.Package{
		Name:         "fd",
		Environments: map[string]domain.EnvironmentConfig{env: {Install: installCmd("fd"), Check: "which fd"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInstallCommandFailed))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, 1, zErr.Metadata()["exit_code"])
	assert.Equal(t, "boom", zErr.Metadata()["stderr"])

	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Equal(t, "exit code 1: boom", res.Reason)
	assert.Equal(t, 2*time.Second, res.Duration, "duration covers check and install")
	assert.Equal(t, []string{"which fd", installCmd("fd")}, runner.commands())
}

func TestManager_InstallPackage_CheckTimeout(t *testing.T) {
	timeoutErr := zerr.With(zerr.Wrap(domain.ErrCommandTimeout, ""), "timeout", timeout.String())
	runner := &fakeRunner{script: map[string]step{"slow-check": {err: timeoutErr}}}

	m := installer.New(config(true, 1), nil, runner, telemetry.NewNoOp(), quietLogger(t))
	res, err := m.InstallPackage(context.Background(), &domain.Package{
		Name:         "slow",
		Environments: map[string]domain.EnvironmentConfig{env: {Install: "x", Check: "slow-check"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCommandTimeout))
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Equal(t, []string{"slow-check"}, runner.commands(), "install is not attempted after a failed check")
}

func TestManager_InstallPackage_EnvironmentIncompatible(t *testing.T) {
	runner := &fakeRunner{}
	m := installer.New(config(true, 1), nil, runner, telemetry.NewNoOp(), quietLogger(t))

	res, err := m.InstallPackage(context.Background(), &domain.Package{
		Name:         "mas",
		Environments: map[string]domain.EnvironmentConfig{"macos": {Install: "brew install mas"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEnvironmentIncompatible))
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Empty(t, runner.commands())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "mas", zErr.Metadata()["package"])
	assert.Equal(t, env, zErr.Metadata()["environment"])
}

var scenario = map[string]definition{
	"main-pkg": {deps: []string{"dep1", "dep2"}},
	"dep1":     {deps: []string{"dep3"}},
	"dep2":     {check: "has dep2"},
	"dep3":     {},
}

func TestManager_Install_Sequential(t *testing.T) {
	runner := &fakeRunner{}
	m := installer.New(config(true, 1), newRepo(t, scenario), runner, telemetry.NewNoOp(), quietLogger(t))

	res, err := m.Install(context.Background(), "main-pkg")
	require.NoError(t, err)

	assert.Equal(t, "main-pkg", res.Package)
	assert.Equal(t, domain.StatusComplete, res.Status)
	assert.Equal(t, []string{"dep3", "dep1", "dep2"}, names(res.Dependencies))
	assert.Equal(t, domain.StatusAlreadyInstalled, res.Dependencies[2].Status)
	assert.Equal(t, 3, res.Count(domain.StatusComplete))

	assert.Equal(t, []string{
		installCmd("dep3"), installCmd("dep1"), "has dep2", installCmd("main-pkg"),
	}, runner.commands())
}

func TestManager_Install_StopOnError(t *testing.T) {
	runner := &fakeRunner{script: map[string]step{installCmd("dep1"): {exitCode: 2}}}
	m := installer.New(config(true, 1), newRepo(t, scenario), runner, telemetry.NewNoOp(), quietLogger(t))

	res, err := m.Install(context.Background(), "main-pkg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInstallationFailed))
	assert.True(t, errors.Is(err, domain.ErrInstallCommandFailed))

	assert.Equal(t, domain.StatusSkipped, res.Status)
	assert.Equal(t, "aborted after dep1 failed", res.Reason)
	require.Len(t, res.Dependencies, 3)
	assert.Equal(t, domain.StatusComplete, res.Dependencies[0].Status)
	assert.Equal(t, domain.StatusFailed, res.Dependencies[1].Status)
	assert.Equal(t, domain.StatusSkipped, res.Dependencies[2].Status)
	assert.True(t, res.Failed())

	assert.Equal(t, []string{installCmd("dep3"), installCmd("dep1")}, runner.commands())
}

func TestManager_Install_ContinueOnError(t *testing.T) {
	logger := quietLogger(t)
	logger.EXPECT().Warn(gomock.Any()).Times(1)

	runner := &fakeRunner{script: map[string]step{installCmd("dep1"): {exitCode: 2}}}
	m := installer.New(config(false, 1), newRepo(t, scenario), runner, telemetry.NewNoOp(), logger)

	res, err := m.Install(context.Background(), "main-pkg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInstallationFailed))
	assert.True(t, errors.Is(err, domain.ErrInstallCommandFailed))

	assert.Equal(t, domain.StatusComplete, res.Status, "dependents are still attempted")
	assert.Equal(t, domain.StatusFailed, res.Dependencies[1].Status)
	assert.Equal(t, 0, res.Count(domain.StatusSkipped))
	assert.Len(t, runner.commands(), 4)
}

func TestManager_Install_ResolveError(t *testing.T) {
	runner := &fakeRunner{}
	m := installer.New(config(true, 1), newRepo(t, map[string]definition{
		"a": {deps: []string{"missing-dep"}},
	}), runner, telemetry.NewNoOp(), quietLogger(t))

	res, err := m.Install(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPackageNotFound))
	assert.Empty(t, res.Package)
	assert.Empty(t, runner.commands(), "nothing runs when resolution fails")
}

func TestManager_Install_CancelledBeforeStart(t *testing.T) {
	runner := &fakeRunner{}
	m := installer.New(config(true, 1), newRepo(t, map[string]definition{"a": {}}), runner, telemetry.NewNoOp(), quietLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Install(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.commands())
}

func TestManager_InstallPackage_EmptyInstallCommand(t *testing.T) {
	for _, install := range []string{"", "  ", "\n\t"} {
		t.Run("install="+install, func(t *testing.T) {
			runner := &fakeRunner{}
			m := installer.New(config(true, 1), nil, runner, telemetry.NewNoOp(), quietLogger(t))

			res, err := m.InstallPackage(context.Background(), &domain.Package{
				Name:         "hollow",
				Environments: map[string]domain.EnvironmentConfig{env: {Install: install, Check: "which hollow"}},
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidPackage))
			assert.Equal(t, domain.StatusFailed, res.Status)
			assert.NotEmpty(t, res.Reason)
			assert.Empty(t, runner.commands(), "neither check nor install runs")

			zErr, ok := err.(*zerr.Error)
			require.True(t, ok)
			assert.Equal(t, "hollow", zErr.Metadata()["package"])
			assert.Equal(t, env, zErr.Metadata()["environment"])
		})
	}
}

// packageRepo serves fixed packages by name.
func packageRepo(t *testing.T, pkgs ...domain.Package) *mocks.MockPackageRepository {
	t.Helper()
	repo := mocks.NewMockPackageRepository(gomock.NewController(t))
	repo.EXPECT().GetPackage(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, name string) (domain.Package, error) {
			for _, pkg := range pkgs {
				if pkg.Name == name {
					return pkg, nil
				}
			}
			return domain.Package{}, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, ""), "package", name)
		},
	).AnyTimes()
	return repo
}

func linuxPackage(name, install string, deps ...string) domain.Package {
	return domain.Package{
		Name:         name,
		Version:      "1.0.0",
		Environments: map[string]domain.EnvironmentConfig{env: {Install: install, Dependencies: deps}},
	}
}

func checkCommandsConfig() domain.AppConfig {
	cfg := config(true, 1)
	cfg.CheckCommands = true
	return cfg
}

func TestManager_Install_CheckCommandsMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	runner.EXPECT().IsCommandAvailable(gomock.Any(), "brew").Return(false).Times(1)
	runner.EXPECT().IsCommandAvailable(gomock.Any(), "cargo").Return(true).Times(1)

	repo := packageRepo(t,
		linuxPackage("ripgrep", "brew install ripgrep", "pcre2", "jq", "shim"),
		linuxPackage("pcre2", "brew install pcre2"),
		linuxPackage("jq", "cargo install jq"),
		linuxPackage("shim", "echo nothing to do"),
	)

	m := installer.New(checkCommandsConfig(), repo, runner, telemetry.NewNoOp(), quietLogger(t))
	res, err := m.Install(context.Background(), "ripgrep")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCommandNotAvailable))
	assert.Empty(t, res.Package, "no installation starts")

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, []string{"pcre2", "ripgrep"}, zErr.Metadata()["packages"])
	assert.Equal(t, []string{"brew"}, zErr.Metadata()["commands"])
}

func TestManager_Install_CheckCommandsAvailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	runner.EXPECT().IsCommandAvailable(gomock.Any(), "apt-get").Return(true).Times(1)
	runner.EXPECT().ExecuteStreaming(gomock.Any(), gomock.Any(), timeout, gomock.Any()).
		Return(domain.CommandOutput{Success: true}, nil).Times(2)

	repo := packageRepo(t,
		linuxPackage("git", "apt-get install -y git", "curl"),
		linuxPackage("curl", "apt-get install -y curl"),
	)

	m := installer.New(checkCommandsConfig(), repo, runner, telemetry.NewNoOp(), quietLogger(t))
	res, err := m.Install(context.Background(), "git")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, res.Status)
	assert.Equal(t, []string{"curl"}, names(res.Dependencies))
}

func TestManager_Install_CheckCommandsDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	runner.EXPECT().IsCommandAvailable(gomock.Any(), gomock.Any()).Times(0)
	runner.EXPECT().ExecuteStreaming(gomock.Any(), "brew install jq", timeout, gomock.Any()).
		Return(domain.CommandOutput{ExitCode: 127, Stderr: "brew: not found"}, nil)

	m := installer.New(config(true, 1), packageRepo(t, linuxPackage("jq", "brew install jq")),
		runner, telemetry.NewNoOp(), quietLogger(t))
	res, err := m.Install(context.Background(), "jq")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInstallCommandFailed))
	assert.Equal(t, domain.StatusFailed, res.Status)
}
