// Package app implements the application layer for selfie.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/selfie/internal/adapters/repository" //nolint:depguard // Wired in app layer
	"go.trai.ch/selfie/internal/adapters/telemetry"  //nolint:depguard // Wired in app layer
	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
	"go.trai.ch/selfie/internal/engine/installer"
	"go.trai.ch/selfie/internal/engine/resolver"
	"go.trai.ch/selfie/internal/engine/validator"
	"go.trai.ch/selfie/internal/tui"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	telemetry    ports.Telemetry
	receipts     ports.ReceiptStore
	repositories ports.RepositoryFactory
	runners      ports.RunnerFactory
	installers   installer.Factory
	teaOptions   []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	tel ports.Telemetry,
	receipts ports.ReceiptStore,
	repositories ports.RepositoryFactory,
	runners ports.RunnerFactory,
	installers installer.Factory,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		telemetry:    tel,
		receipts:     receipts,
		repositories: repositories,
		runners:      runners,
		installers:   installers,
	}
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// InstallOptions configuration for the Install method.
type InstallOptions struct {
	// Progress shows the live progress view on stderr while installing.
	Progress bool
}

// Install installs name and its dependencies.
func (a *App) Install(
	ctx context.Context,
	name string,
	overrides domain.ConfigOverrides,
	opts InstallOptions,
) (domain.InstallationResult, error) {
	cfg, err := a.configure(overrides)
	if err != nil {
		return domain.InstallationResult{}, err
	}

	repo := a.repositories(cfg.PackageDirectory)
	runner := a.runners(cfg)

	a.logger.Info(fmt.Sprintf("installing %s for %s", name, cfg.Environment))

	var res domain.InstallationResult
	if opts.Progress {
		res, err = a.installWithProgress(ctx, name, func(tel ports.Telemetry) *installer.Manager {
			return a.installers(cfg, repo, runner, tel)
		})
	} else {
		res, err = a.installers(cfg, repo, runner, a.telemetry).Install(ctx, name)
	}

	if res.Package != "" {
		a.logger.Info(summary(&res))
		a.record(&res, cfg.Environment)
	}
	return res, err
}

// record stores receipts for the successful installs in res. Failing to store them does not fail the installation.
func (a *App) record(res *domain.InstallationResult, environment string) {
	receipts := domain.ReceiptsFor(res, environment, time.Now())
	if err := a.receipts.Put(receipts...); err != nil {
		a.logger.Warn(fmt.Sprintf("could not record installation receipts: %v", err))
	}
}

// installWithProgress runs the installation and the progress view concurrently.
// Quitting the view cancels the installation.
func (a *App) installWithProgress(
	ctx context.Context,
	name string,
	manager func(ports.Telemetry) *installer.Manager,
) (domain.InstallationResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := tui.NewFeed()
	recorder := telemetry.NewRecorder(feed)

	optsTea := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(os.Stderr)}, a.teaOptions...)
	program := tea.NewProgram(tui.NewModel(feed), optsTea...)

	var res domain.InstallationResult
	var g errgroup.Group

	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return zerr.Wrap(err, "progress view failed")
		}
		return nil
	})

	g.Go(func() error {
		defer func() { _ = recorder.Close() }()
		var err error
		res, err = manager(recorder).Install(ctx, name)
		return err
	})

	return res, g.Wait()
}

func summary(res *domain.InstallationResult) string {
	return fmt.Sprintf("%s: %d installed, %d already installed, %d failed, %d skipped in %s",
		res.Package,
		res.Count(domain.StatusComplete),
		res.Count(domain.StatusAlreadyInstalled),
		res.Count(domain.StatusFailed),
		res.Count(domain.StatusSkipped),
		res.TotalDuration(),
	)
}

// PackageSummary is one row of a package listing.
type PackageSummary struct {
	Package   domain.Package
	Supported bool
	// Receipt is the last recorded installation, nil if there is none.
	Receipt *domain.Receipt
}

// List returns every package in the package directory and whether it supports the configured environment.
func (a *App) List(ctx context.Context, overrides domain.ConfigOverrides) ([]PackageSummary, error) {
	cfg, err := a.configure(overrides)
	if err != nil {
		return nil, err
	}

	pkgs, err := a.repositories(cfg.PackageDirectory).ListPackages(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PackageSummary, len(pkgs))
	for i := range pkgs {
		out[i] = PackageSummary{Package: pkgs[i], Supported: pkgs[i].SupportsEnvironment(cfg.Environment)}
		if out[i].Receipt, err = a.receipts.Get(pkgs[i].Name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PackageInfo describes one package in the configured environment.
type PackageInfo struct {
	Package     domain.Package
	Environment string
	Supported   bool
	Receipt     *domain.Receipt
	// Order is the installation order of the package and its dependencies, set when it resolves.
	Order []string
	// ResolveError explains why Order is empty for a supported package.
	ResolveError error
}

// Info loads name and resolves its dependencies for the configured environment.
func (a *App) Info(ctx context.Context, name string, overrides domain.ConfigOverrides) (PackageInfo, error) {
	cfg, err := a.configure(overrides)
	if err != nil {
		return PackageInfo{}, err
	}

	repo := a.repositories(cfg.PackageDirectory)
	pkg, err := repo.GetPackage(ctx, name)
	if err != nil {
		return PackageInfo{}, err
	}

	info := PackageInfo{
		Package:     pkg,
		Environment: cfg.Environment,
		Supported:   pkg.SupportsEnvironment(cfg.Environment),
	}
	if info.Receipt, err = a.receipts.Get(name); err != nil {
		return PackageInfo{}, err
	}
	if !info.Supported {
		return info, nil
	}

	order, err := resolver.New(repo).Resolve(ctx, name, cfg.Environment)
	if err != nil {
		info.ResolveError = err
		return info, nil
	}
	for i := range order {
		info.Order = append(info.Order, order[i].Name)
	}
	return info, nil
}

// Validate checks the package named target, or the package file at target when it is a YAML path.
// The report is returned together with an error when it holds error-level issues.
func (a *App) Validate(ctx context.Context, target string, overrides domain.ConfigOverrides) (validator.Report, error) {
	cfg, err := a.configure(overrides)
	if err != nil {
		return validator.Report{}, err
	}

	pkg, err := a.loadForValidation(ctx, cfg, target)
	if err != nil {
		return validator.Report{}, err
	}

	report := validator.New(a.runners(cfg)).Validate(ctx, &pkg, cfg.Environment)
	if !report.Valid() {
		err := zerr.With(
			zerr.Wrap(domain.ErrInvalidPackage, fmt.Sprintf("%d validation error(s)", len(report.Errors()))),
			"package", target,
		)
		return report, err
	}
	return report, nil
}

func (a *App) loadForValidation(ctx context.Context, cfg domain.AppConfig, target string) (domain.Package, error) {
	if !isPackageFile(target) {
		return a.repositories(cfg.PackageDirectory).GetPackage(ctx, target)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return domain.Package{}, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, err.Error()), "file", target)
	}
	return repository.Decode(data, target)
}

func isPackageFile(target string) bool {
	ext := strings.ToLower(filepath.Ext(target))
	return ext == ".yaml" || ext == ".yml"
}

// ConfigReport is the outcome of a configuration check.
type ConfigReport struct {
	Config   domain.AppConfig
	Packages int
	// ShellAvailable is false when the configured shell cannot be found.
	ShellAvailable bool
}

// CheckConfig loads and validates the configuration and verifies that the package directory is readable.
func (a *App) CheckConfig(ctx context.Context, overrides domain.ConfigOverrides) (ConfigReport, error) {
	cfg, err := a.configure(overrides)
	if err != nil {
		return ConfigReport{}, err
	}

	report := ConfigReport{Config: cfg, ShellAvailable: true}
	if cfg.Shell == domain.ShellSystem {
		report.ShellAvailable = a.runners(cfg).IsCommandAvailable(ctx, "sh")
	}

	pkgs, err := a.repositories(cfg.PackageDirectory).ListPackages(ctx)
	if err != nil {
		return report, err
	}
	report.Packages = len(pkgs)
	return report, nil
}

// configure loads the configuration and applies its logging settings.
func (a *App) configure(overrides domain.ConfigOverrides) (domain.AppConfig, error) {
	cfg, err := a.configLoader.Load(overrides)
	if err != nil {
		return domain.AppConfig{}, zerr.Wrap(err, "failed to load configuration")
	}

	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(cfg.LogFormat == domain.LogFormatJSON)
	}
	if l, ok := a.logger.(interface{ SetVerbose(bool) }); ok {
		l.SetVerbose(cfg.Verbose)
	}
	if l, ok := a.logger.(interface{ SetColors(bool) }); ok {
		l.SetColors(cfg.UseColors)
	}

	a.logger.Debug(fmt.Sprintf("configuration: environment=%s packages=%s shell=%s parallel=%d",
		cfg.Environment, cfg.PackageDirectory, cfg.Shell, cfg.MaxParallel))
	return cfg, nil
}
