// Package validator checks package definitions for mistakes before they are installed.
package validator

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
	"mvdan.cc/sh/v3/syntax"
)

// Severity ranks a validation issue.
type Severity string

const (
	// SeverityError marks a definition that cannot be installed as written.
	SeverityError Severity = "error"
	// SeverityWarning marks a definition that works but is likely to cause trouble.
	SeverityWarning Severity = "warning"
)

// Issue is a single finding about one field of a package definition.
type Issue struct {
	Field      string
	Message    string
	Suggestion string
	Severity   Severity
}

// Report collects the issues found in one package.
type Report struct {
	Package string
	Issues  []Issue
}

// Valid reports whether the package has no error-level issues.
func (r *Report) Valid() bool {
	return len(r.Errors()) == 0
}

// Errors returns the error-level issues.
func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-level issues.
func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(s Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

func (r *Report) add(s Severity, field, msg, suggestion string) {
	r.Issues = append(r.Issues, Issue{Field: field, Message: msg, Suggestion: suggestion, Severity: s})
}

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+`)

// Validator checks package definitions. With a runner it also checks that commands exist on this host.
type Validator struct {
	runner ports.CommandRunner
}

// New creates a Validator. runner may be nil to skip availability checks.
func New(runner ports.CommandRunner) *Validator {
	return &Validator{runner: runner}
}

// Validate checks pkg. environment is the environment the caller intends to install into.
func (v *Validator) Validate(ctx context.Context, pkg *domain.Package, environment string) Report {
	report := Report{Package: pkg.Name}

	checkFields(&report, pkg)
	checkHomepage(&report, pkg.Homepage)

	if len(pkg.Environments) == 0 {
		return report
	}

	if environment != "" && !pkg.SupportsEnvironment(environment) {
		report.add(SeverityWarning, "environments",
			fmt.Sprintf("environment %q is not configured", environment),
			fmt.Sprintf("Add an environment section for %q if it should be installable there.", environment))
	}

	for _, name := range pkg.EnvironmentNames() {
		cfg := pkg.Environments[name]
		prefix := "environments." + name

		if strings.TrimSpace(cfg.Install) == "" {
			report.add(SeverityError, prefix+".install", "install command is required",
				"Add an install command like 'brew install "+pkg.Name+"'.")
		} else {
			checkCommand(&report, prefix+".install", cfg.Install, true)
		}

		if cfg.HasCheck() {
			checkCommand(&report, prefix+".check", cfg.Check, false)
		}

		for i, dep := range cfg.Dependencies {
			if strings.TrimSpace(dep) == "" {
				report.add(SeverityError, fmt.Sprintf("%s.dependencies[%d]", prefix, i),
					"dependency name cannot be empty", "Remove the empty entry or name the dependency.")
			}
		}

		if name == environment {
			v.checkHost(ctx, &report, name, cfg)
		}
	}

	return report
}

func checkFields(report *Report, pkg *domain.Package) {
	switch {
	case pkg.Name == "":
		report.add(SeverityError, "name", "package name is required", "Add 'name: your-package-name'.")
	case !domain.IsValidPackageName(pkg.Name):
		report.add(SeverityError, "name", "package name contains invalid characters",
			"Use only letters, digits, hyphens and underscores.")
	}

	switch {
	case pkg.Version == "":
		report.add(SeverityError, "version", "package version is required", "Add 'version: \"0.1.0\"'.")
	case !versionPattern.MatchString(pkg.Version):
		report.add(SeverityWarning, "version", "package version should follow semantic versioning",
			"Use a version like '1.0.0'.")
	}

	if len(pkg.Environments) == 0 {
		report.add(SeverityError, "environments", "at least one environment must be defined",
			"Add an 'environments' section.")
	}
}

func checkHomepage(report *Report, homepage string) {
	if homepage == "" {
		return
	}
	u, err := url.Parse(homepage)
	if err != nil {
		report.add(SeverityError, "homepage", "invalid URL: "+err.Error(), "Use an http:// or https:// URL.")
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		report.add(SeverityWarning, "homepage",
			fmt.Sprintf("URL should use http or https, found %q", u.Scheme), "Use an https:// URL.")
	}
}

// checkCommand parses command as POSIX shell and reports syntax errors and risky constructs.
func checkCommand(report *Report, field, command string, install bool) {
	file, err := parse(command)
	if err != nil {
		report.add(SeverityError, field, "invalid shell syntax: "+err.Error(), "Fix the command syntax.")
		return
	}

	var backticks, privileged, downloads bool
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.CmdSubst:
			backticks = backticks || n.Backquotes
		case *syntax.CallExpr:
			args := literals(n)
			privileged = privileged || needsPrivileges(args)
			downloads = downloads || downloadsContent(args)
		}
		return true
	})

	if backticks {
		report.add(SeverityWarning, field, "command uses backticks for command substitution",
			"Use $(...) instead of backticks.")
	}
	if install && privileged {
		report.add(SeverityWarning, field, "command might require administrative privileges",
			"Make sure the installing user can run it.")
	}
	if install && downloads {
		report.add(SeverityWarning, field, "command may download content from the internet",
			"Review where the content comes from.")
	}
}

// checkHost checks the selected environment's commands against this machine.
func (v *Validator) checkHost(ctx context.Context, report *Report, env string, cfg domain.EnvironmentConfig) {
	prefix := "environments." + env

	install := BaseCommand(cfg.Install)
	if managers := recommendedManagers(env); managers != nil && install != "" && !slices.Contains(managers, install) {
		report.add(SeverityWarning, prefix+".install",
			fmt.Sprintf("%q may not suit environment %q, recommended: %s", install, env, strings.Join(managers, ", ")),
			"Use the environment's native package manager.")
	}

	if v.runner == nil {
		return
	}

	fields := []struct{ field, command string }{
		{prefix + ".install", cfg.Install},
		{prefix + ".check", cfg.Check},
	}
	for _, f := range fields {
		base := BaseCommand(f.command)
		if base == "" || IsShellBuiltin(base) {
			continue
		}
		if !v.runner.IsCommandAvailable(ctx, base) {
			report.add(SeverityWarning, f.field,
				fmt.Sprintf("command %q not found in environment %q", base, env),
				"Install the command before using this package.")
		}
	}
}

// BaseCommand returns the program name of the first simple command in command, or "" if there is none.
func BaseCommand(command string) string {
	file, err := parse(command)
	if err != nil {
		return ""
	}
	var base string
	syntax.Walk(file, func(node syntax.Node) bool {
		if base != "" {
			return false
		}
		if call, ok := node.(*syntax.CallExpr); ok {
			if args := literals(call); len(args) > 0 {
				base = args[0]
			}
		}
		return true
	})
	return base
}

func parse(command string) (*syntax.File, error) {
	return syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(strings.NewReader(command), "")
}

// literals returns the leading arguments of call that are plain words.
func literals(call *syntax.CallExpr) []string {
	var out []string
	for _, w := range call.Args {
		lit := w.Lit()
		if lit == "" {
			break
		}
		out = append(out, lit)
	}
	return out
}

var privilegedCommands = []string{"sudo", "apt", "apt-get", "dnf", "yum", "pacman", "zypper", "systemctl"}

func needsPrivileges(args []string) bool {
	return len(args) > 0 && slices.Contains(privilegedCommands, args[0])
}

func downloadsContent(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "curl", "wget", "fetch":
		return true
	case "git":
		return len(args) > 1 && (args[1] == "clone" || args[1] == "pull")
	case "npm", "pip", "pip3":
		return len(args) > 1 && args[1] == "install"
	}
	return false
}

var environmentManagers = []struct {
	pattern  string
	managers []string
}{
	{"mac", []string{"brew", "port", "mas"}},
	{"darwin", []string{"brew", "port", "mas"}},
	{"ubuntu", []string{"apt", "apt-get", "dpkg"}},
	{"debian", []string{"apt", "apt-get", "dpkg"}},
	{"fedora", []string{"dnf", "yum", "rpm"}},
	{"rhel", []string{"dnf", "yum", "rpm"}},
	{"centos", []string{"dnf", "yum", "rpm"}},
	{"arch", []string{"pacman", "yay", "paru"}},
	{"opensuse", []string{"zypper", "rpm"}},
	{"windows", []string{"choco", "scoop", "winget"}},
}

func recommendedManagers(env string) []string {
	env = strings.ToLower(env)
	for _, e := range environmentManagers {
		if strings.Contains(env, e.pattern) {
			return e.managers
		}
	}
	return nil
}

// IsShellBuiltin reports whether name is a shell builtin that needs no program on PATH.
func IsShellBuiltin(name string) bool {
	switch name {
	case "command", "type", "test", "[", "echo", "printf", "true", "false", "cd", "export", "set", ":":
		return true
	}
	return false
}
