package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Shells that can run package commands.
const (
	// ShellSystem runs commands through the host's sh binary.
	ShellSystem = "sh"
	// ShellBuiltin runs commands in the embedded POSIX interpreter.
	ShellBuiltin = "builtin"
)

// AppConfig is the effective configuration of one invocation.
type AppConfig struct {
	Environment      string
	PackageDirectory string
	CommandTimeout   time.Duration
	StopOnError      bool
	MaxParallel      int
	Verbose          bool
	UseColors        bool
	LogFormat        string
	Shell            string
	// CheckCommands verifies that every install program exists before anything is installed.
	CheckCommands bool
}

// Validate checks the fields that have no usable zero value.
func (c *AppConfig) Validate() error {
	switch {
	case c.Environment == "":
		return invalidConfig("environment", "must not be empty")
	case c.PackageDirectory == "":
		return invalidConfig("package_directory", "must not be empty")
	case c.CommandTimeout <= 0:
		return invalidConfig("command_timeout", "must be greater than zero")
	case c.MaxParallel < 1:
		return invalidConfig("max_parallel", "must be at least 1")
	case c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON:
		return invalidConfig("log_format", "must be text or json")
	case c.Shell != ShellSystem && c.Shell != ShellBuiltin:
		return invalidConfig("shell", "must be sh or builtin")
	}
	return nil
}

func invalidConfig(field, msg string) error {
	return zerr.With(zerr.Wrap(ErrInvalidConfig, field+" "+msg), "field", field)
}

// ConfigOverrides holds values given on the command line. Nil fields are left to the file and defaults.
type ConfigOverrides struct {
	ConfigFile       string
	Environment      *string
	PackageDirectory *string
	CommandTimeout   *time.Duration
	StopOnError      *bool
	MaxParallel      *int
	Verbose          *bool
	UseColors        *bool
	LogFormat        *string
	Shell            *string
	CheckCommands    *bool
}
