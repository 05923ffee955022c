// Package domain contains the core domain models for package resolution and installation.
package domain

import (
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// EnvironmentConfig holds the commands and dependencies of a package for one environment.
type EnvironmentConfig struct {
	// Install is the shell command that installs the package. It must not be empty.
	Install string

	// Check is an optional shell command that exits 0 when the package is already installed.
	Check string

	// Dependencies lists the names of packages that must be installed first.
	// It may contain duplicates; use UniqueDependencies when walking it.
	Dependencies []string
}

// HasCheck reports whether a check command is configured.
func (c EnvironmentConfig) HasCheck() bool {
	return strings.TrimSpace(c.Check) != ""
}

// UniqueDependencies returns the dependency names in first-seen order with
// duplicates and blank entries removed.
func (c EnvironmentConfig) UniqueDependencies() []string {
	seen := make(map[string]struct{}, len(c.Dependencies))
	deps := make([]string, 0, len(c.Dependencies))
	for _, dep := range c.Dependencies {
		dep = strings.TrimSpace(dep)
		if dep == "" {
			continue
		}
		if _, ok := seen[dep]; ok {
			continue
		}
		seen[dep] = struct{}{}
		deps = append(deps, dep)
	}
	return deps
}

var packageNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IsValidPackageName reports whether name is usable as a package name and as a file name in the package directory.
func IsValidPackageName(name string) bool {
	return packageNamePattern.MatchString(name)
}

// Package is a named installable unit. It is immutable once loaded.
type Package struct {
	Name         string
	Version      string
	Homepage     string
	Description  string
	Environments map[string]EnvironmentConfig

	// Path is the file the package was loaded from, if any.
	Path string
}

// ResolveEnvironment returns the configuration for the given environment.
func (p *Package) ResolveEnvironment(environment string) (EnvironmentConfig, error) {
	cfg, ok := p.Environments[environment]
	if !ok {
		return EnvironmentConfig{}, zerr.With(
			zerr.With(zerr.Wrap(ErrEnvironmentNotSupported, ""), "environment", environment),
			"package", p.Name,
		)
	}
	return cfg, nil
}

// EnvironmentNames returns the supported environment names, sorted.
func (p *Package) EnvironmentNames() []string {
	names := make([]string, 0, len(p.Environments))
	for name := range p.Environments {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SupportsEnvironment reports whether the package can be installed into environment.
func (p *Package) SupportsEnvironment(environment string) bool {
	_, ok := p.Environments[environment]
	return ok
}
