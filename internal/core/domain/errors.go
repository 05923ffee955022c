package domain

import "go.trai.ch/zerr"

// Graph errors.
var (
	// ErrDuplicateNode is returned when a package is added to a graph that already holds that name.
	ErrDuplicateNode = zerr.New("duplicate graph node")

	// ErrUnknownNode is returned when an edge references a package that is not in the graph.
	ErrUnknownNode = zerr.New("unknown graph node")

	// ErrCircularDependency is returned when the dependency graph contains a cycle.
	ErrCircularDependency = zerr.New("circular dependency detected")
)

// Repository and resolver errors.
var (
	// ErrPackageNotFound is returned when no package definition exists for a name.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrMultiplePackagesFound is returned when more than one definition exists for a name.
	ErrMultiplePackagesFound = zerr.New("multiple packages found")

	// ErrEnvironmentNotSupported is returned when a package has no configuration for the target environment.
	ErrEnvironmentNotSupported = zerr.New("environment not supported")

	// ErrPackageDirectoryNotFound is returned when the package directory does not exist.
	ErrPackageDirectoryNotFound = zerr.New("package directory not found")

	// ErrInvalidPackage is returned when a package file cannot be decoded.
	ErrInvalidPackage = zerr.New("invalid package definition")
)

// Installation errors.
var (
	// ErrEnvironmentIncompatible is returned when a package cannot be installed into the configured environment.
	ErrEnvironmentIncompatible = zerr.New("package is incompatible with environment")

	// ErrCommandExecution is returned when a command could not be run to completion.
	ErrCommandExecution = zerr.New("command execution failed")

	// ErrCommandTimeout is returned when a command exceeds its deadline.
	ErrCommandTimeout = zerr.New("command timed out")

	// ErrCommandIO is returned when a command's process or pipes could not be set up.
	ErrCommandIO = zerr.New("command i/o failure")

	// ErrInstallCommandFailed is returned when an install command exits with a non-zero status.
	ErrInstallCommandFailed = zerr.New("install command failed")

	// ErrInvalidTransition is returned when an installation is moved to a state it cannot reach.
	ErrInvalidTransition = zerr.New("invalid installation state transition")

	// ErrCommandNotAvailable is returned when a program that install commands start cannot be found.
	ErrCommandNotAvailable = zerr.New("required command not available")

	// ErrInstallationFailed is returned when one or more packages of a run failed to install.
	ErrInstallationFailed = zerr.New("installation failed")
)

// Configuration errors.
var (
	// ErrInvalidConfig is returned when the application configuration fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrConfigReadFailed is returned when the configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read configuration")
)
