package validator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports/mocks"
	"go.trai.ch/selfie/internal/engine/validator"
	"go.uber.org/mock/gomock"
)

func validPackage() *domain.Package {
	return &domain.Package{
		Name:     "ripgrep",
		Version:  "14.1.0",
		Homepage: "https://github.com/BurntSushi/ripgrep",
		Environments: map[string]domain.EnvironmentConfig{
			"macos": {Install: "brew install ripgrep", Check: "command -v rg"},
			"linux": {Install: "cargo install ripgrep", Dependencies: []string{"rust"}},
		},
	}
}

func fields(issues []validator.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Field)
	}
	return out
}

func TestValidator_ValidPackage(t *testing.T) {
	report := validator.New(nil).Validate(context.Background(), validPackage(), "macos")
	assert.True(t, report.Valid())
	assert.Empty(t, report.Issues)
	assert.Equal(t, "ripgrep", report.Package)
}

func TestValidator_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Package)
		field  string
	}{
		{name: "missing name", mutate: func(p *domain.Package) { p.Name = "" }, field: "name"},
		{name: "invalid name", mutate: func(p *domain.Package) { p.Name = "rip grep!" }, field: "name"},
		{name: "missing version", mutate: func(p *domain.Package) { p.Version = "" }, field: "version"},
		{name: "no environments", mutate: func(p *domain.Package) { p.Environments = nil }, field: "environments"},
		{name: "bad homepage", mutate: func(p *domain.Package) { p.Homepage = "http://[::1" }, field: "homepage"},
		{
			name: "empty install",
			mutate: func(p *domain.Package) {
				p.Environments["linux"] = domain.EnvironmentConfig{Install: "  "}
			},
			field: "environments.linux.install",
		},
		{
			name: "empty dependency",
			mutate: func(p *domain.Package) {
				p.Environments["linux"] = domain.EnvironmentConfig{Install: "x", Dependencies: []string{"rust", ""}}
			},
			field: "environments.linux.dependencies[1]",
		},
		{
			name: "unterminated quote",
			mutate: func(p *domain.Package) {
				p.Environments["macos"] = domain.EnvironmentConfig{Install: `echo "hello`}
			},
			field: "environments.macos.install",
		},
		{
			name: "broken pipe",
			mutate: func(p *domain.Package) {
				p.Environments["linux"] = domain.EnvironmentConfig{Install: "x", Check: "rg --version | | grep 14"}
			},
			field: "environments.linux.check",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := validPackage()
			tt.mutate(pkg)

			report := validator.New(nil).Validate(context.Background(), pkg, "")
			assert.False(t, report.Valid())
			assert.Contains(t, fields(report.Errors()), tt.field)
		})
	}
}

func TestValidator_Warnings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Package)
		env     string
		field   string
		message string
	}{
		{
			name:    "loose version",
			mutate:  func(p *domain.Package) { p.Version = "latest" },
			field:   "version",
			message: "semantic versioning",
		},
		{
			name:    "ftp homepage",
			mutate:  func(p *domain.Package) { p.Homepage = "ftp://example.com" },
			field:   "homepage",
			message: "http or https",
		},
		{
			name:    "environment not configured",
			mutate:  func(*domain.Package) {},
			env:     "windows",
			field:   "environments",
			message: `"windows" is not configured`,
		},
		{
			name: "backticks",
			mutate: func(p *domain.Package) {
				p.Environments["linux"] = domain.EnvironmentConfig{Install: "cargo install `cat name`"}
			},
			field:   "environments.linux.install",
			message: "backticks",
		},
		{
			name: "privileged",
			mutate: func(p *domain.Package) {
				p.Environments["linux"] = domain.EnvironmentConfig{Install: "sudo apt-get install -y ripgrep"}
			},
			field:   "environments.linux.install",
			message: "administrative privileges",
		},
		{
			name: "download",
			mutate: func(p *domain.Package) {
				p.Environments["linux"] = domain.EnvironmentConfig{Install: "curl -fsSL https://x.sh | sh"}
			},
			field:   "environments.linux.install",
			message: "download",
		},
		{
			name: "git clone after cd",
			mutate: func(p *domain.Package) {
				p.Environments["linux"] = domain.EnvironmentConfig{Install: "cd /tmp && git clone https://x/y.git"}
			},
			field:   "environments.linux.install",
			message: "download",
		},
		{
			name:    "foreign package manager",
			mutate:  func(*domain.Package) {},
			env:     "ubuntu",
			field:   "environments.ubuntu.install",
			message: "apt, apt-get, dpkg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := validPackage()
			pkg.Environments["ubuntu"] = domain.EnvironmentConfig{Install: "snap install ripgrep"}
			tt.mutate(pkg)

			report := validator.New(nil).Validate(context.Background(), pkg, tt.env)
			assert.True(t, report.Valid(), "warnings do not invalidate: %v", report.Errors())

			var found bool
			for _, w := range report.Warnings() {
				if w.Field == tt.field && strings.Contains(w.Message, tt.message) {
					found = true
					assert.NotEmpty(t, w.Suggestion)
				}
			}
			assert.True(t, found, "no %q warning on %s in %+v", tt.message, tt.field, report.Issues)
		})
	}
}

func TestValidator_CommandAvailability(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	runner.EXPECT().IsCommandAvailable(gomock.Any(), "brew").Return(false)

	pkg := validPackage()
	report := validator.New(runner).Validate(context.Background(), pkg, "macos")

	require.Len(t, report.Warnings(), 1)
	w := report.Warnings()[0]
	assert.Equal(t, "environments.macos.install", w.Field)
	assert.Contains(t, w.Message, `"brew" not found`)
}

func TestBaseCommand(t *testing.T) {
	tests := map[string]string{
		"brew install git":              "brew",
		"  apt-get update && apt-get x": "apt-get",
		"FOO=1 make install":            "make",
		"(cd src && make)":              "cd",
		"":                              "",
		`echo "broken`:                  "",
	}
	for command, want := range tests {
		assert.Equal(t, want, validator.BaseCommand(command), command)
	}
}
