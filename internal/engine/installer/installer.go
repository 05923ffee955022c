// Package installer runs installations for a resolved dependency graph.
package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
	"go.trai.ch/selfie/internal/engine/resolver"
	"go.trai.ch/selfie/internal/engine/validator"
	"go.trai.ch/zerr"
)

// Manager installs packages and their dependencies into the configured environment.
type Manager struct {
	cfg       domain.AppConfig
	resolver  *resolver.Resolver
	runner    ports.CommandRunner
	telemetry ports.Telemetry
	logger    ports.Logger
	clock     clockwork.Clock
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used to time installations.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// New creates a Manager. Environment, CommandTimeout, StopOnError, MaxParallel and CheckCommands are read from cfg.
func New(
	cfg domain.AppConfig,
	repo ports.PackageRepository,
	runner ports.CommandRunner,
	telemetry ports.Telemetry,
	logger ports.Logger,
	opts ...Option,
) *Manager {
	m := &Manager{
		cfg:       cfg,
		resolver:  resolver.New(repo),
		runner:    runner,
		telemetry: telemetry,
		logger:    logger,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Install resolves root and installs it after all of its dependencies.
// The returned result is root's, with every other resolved package in Dependencies in resolved order.
// A partial result is returned alongside any installation error.
func (m *Manager) Install(ctx context.Context, root string) (domain.InstallationResult, error) {
	res, err := m.resolver.ResolveGraph(ctx, root, m.cfg.Environment)
	if err != nil {
		return domain.InstallationResult{}, err
	}

	names := make([]string, len(res.Order))
	for i := range res.Order {
		names[i] = res.Order[i].Name
	}
	m.logger.Debug(fmt.Sprintf("installation order for %s: %v", root, names))

	if m.cfg.CheckCommands {
		if err := m.checkCommands(ctx, res.Order); err != nil {
			return domain.InstallationResult{}, err
		}
	}

	var results map[string]domain.InstallationResult
	if m.cfg.MaxParallel > 1 && len(res.Order) > 1 {
		results, err = m.runParallel(ctx, res)
	} else {
		results, err = m.runSequential(ctx, res.Order)
	}

	out := results[res.Root().Name]
	for _, pkg := range res.Order[:len(res.Order)-1] {
		out.Dependencies = append(out.Dependencies, results[pkg.Name])
	}
	return out, err
}

// InstallPackage installs pkg alone, without looking at its dependencies.
func (m *Manager) InstallPackage(ctx context.Context, pkg *domain.Package) (domain.InstallationResult, error) {
	cfg, err := pkg.ResolveEnvironment(m.cfg.Environment)
	if err != nil {
		incompatible := zerr.With(zerr.Wrap(domain.ErrEnvironmentIncompatible, ""), "package", pkg.Name)
		incompatible = zerr.With(incompatible, "environment", m.cfg.Environment)
		return domain.InstallationResult{
			Package: pkg.Name,
			Version: pkg.Version,
			Status:  domain.StatusFailed,
			Reason:  incompatible.Error(),
		}, incompatible
	}

	if strings.TrimSpace(cfg.Install) == "" {
		invalid := zerr.With(zerr.Wrap(domain.ErrInvalidPackage, "install command is empty"), "package", pkg.Name)
		invalid = zerr.With(invalid, "environment", m.cfg.Environment)
		return domain.InstallationResult{
			Package: pkg.Name,
			Version: pkg.Version,
			Status:  domain.StatusFailed,
			Reason:  invalid.Error(),
		}, invalid
	}

	inst := domain.NewInstallation(pkg, m.cfg.Environment, cfg, m.clock)
	err = m.execute(ctx, inst)
	return inst.Result(), err
}

// checkCommands verifies that the program each install command starts can be found.
// Every missing program is reported together with the packages that need it.
func (m *Manager) checkCommands(ctx context.Context, order []domain.Package) error {
	var packages, commands []string
	available := make(map[string]bool)

	for i := range order {
		base := validator.BaseCommand(order[i].Environments[m.cfg.Environment].Install)
		if base == "" || validator.IsShellBuiltin(base) {
			continue
		}
		ok, seen := available[base]
		if !seen {
			ok = m.runner.IsCommandAvailable(ctx, base)
			available[base] = ok
			if !ok {
				commands = append(commands, base)
			}
		}
		if !ok {
			packages = append(packages, order[i].Name)
		}
	}

	if len(commands) == 0 {
		return nil
	}
	err := zerr.With(zerr.Wrap(domain.ErrCommandNotAvailable, strings.Join(commands, ", ")), "packages", packages)
	return zerr.With(err, "commands", commands)
}

// execute drives inst through check and install, streaming command output to a telemetry vertex.
func (m *Manager) execute(ctx context.Context, inst *domain.Installation) error {
	name := inst.Package.Name
	ctx, vertex := m.telemetry.Record(ctx, "install "+name)
	runner := domain.RunnerFunc(func(ctx context.Context, command string) (domain.CommandOutput, error) {
		m.logger.Debug(fmt.Sprintf("%s: running %q", name, command))
		return m.runner.ExecuteStreaming(ctx, command, m.cfg.CommandTimeout, vertex)
	})

	inst.Start()

	installed, err := inst.ExecuteCheck(ctx, runner)
	if err != nil {
		return m.finish(inst, vertex, domain.StatusFailed, err)
	}
	if installed {
		vertex.Cached()
		m.logger.Info(name + " is already installed")
		return m.finish(inst, vertex, domain.StatusAlreadyInstalled, nil)
	}

	m.logger.Info("installing " + name)
	if err := inst.ExecuteInstall(ctx, runner); err != nil {
		return m.finish(inst, vertex, domain.StatusFailed, err)
	}

	if err := m.finish(inst, vertex, domain.StatusComplete, nil); err != nil {
		return err
	}
	m.logger.Info(fmt.Sprintf("installed %s in %s", name, inst.Duration()))
	return nil
}

func (m *Manager) finish(
	inst *domain.Installation,
	vertex ports.Vertex,
	status domain.InstallationStatus,
	cause error,
) error {
	if err := inst.Complete(status); err != nil && cause == nil {
		cause = err
	}
	vertex.Complete(cause)
	return cause
}

// skipped returns the result of a package that was never attempted.
func (m *Manager) skipped(pkg *domain.Package, reason string) domain.InstallationResult {
	inst := domain.NewInstallation(pkg, m.cfg.Environment, domain.EnvironmentConfig{}, m.clock)
	_ = inst.Skip(reason)
	return inst.Result()
}

func (m *Manager) runSequential(
	ctx context.Context,
	order []domain.Package,
) (map[string]domain.InstallationResult, error) {
	results := make(map[string]domain.InstallationResult, len(order))
	var failures failureSet
	var skipReason string

	for i := range order {
		pkg := &order[i]
		if skipReason == "" && ctx.Err() != nil {
			skipReason = "cancelled"
		}
		if skipReason != "" {
			results[pkg.Name] = m.skipped(pkg, skipReason)
			continue
		}

		res, err := m.InstallPackage(ctx, pkg)
		results[pkg.Name] = res
		if err != nil {
			failures.add(pkg.Name, err)
			if m.cfg.StopOnError {
				skipReason = "aborted after " + pkg.Name + " failed"
			} else {
				m.logger.Warn(fmt.Sprintf("%s failed, continuing: %v", pkg.Name, err))
			}
		}
	}

	return results, failures.err(ctx)
}

// failureSet collects the failed packages of one run.
type failureSet struct {
	names []string
	errs  []error
}

func (f *failureSet) add(name string, err error) {
	f.names = append(f.names, name)
	f.errs = append(f.errs, err)
}

// err joins the failures under ErrInstallationFailed. A cancelled ctx is reported as well.
func (f *failureSet) err(ctx context.Context) error {
	errs := f.errs
	if ctxErr := ctx.Err(); ctxErr != nil {
		errs = append(errs, ctxErr)
	}
	if len(errs) == 0 {
		return nil
	}

	summary := zerr.Wrap(domain.ErrInstallationFailed, fmt.Sprintf("%d package(s) failed", len(f.names)))
	if len(f.names) > 0 {
		summary = zerr.With(summary, "packages", f.names)
	}
	return errors.Join(append([]error{summary}, errs...)...)
}
