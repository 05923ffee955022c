// Package commands implements the CLI commands for the selfie package installer.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/selfie/internal/app"
	"go.trai.ch/selfie/internal/build"
	"go.trai.ch/selfie/internal/core/domain"
)

// CLI represents the command line interface for selfie.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "selfie",
		Short:         "Install packages and their dependencies from YAML definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("environment", "e", "", "Target environment (defaults to the host platform)")
	flags.StringP("package-directory", "p", "", "Directory containing package definitions")
	flags.StringP("config", "c", "", "Path to the configuration file")
	flags.BoolP("verbose", "v", false, "Enable debug output")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-format", "", "Log format: text or json")
	flags.Int("parallel", 0, "Maximum number of packages installed at once")
	flags.Duration("timeout", 0, "Timeout for each check or install command")
	flags.Bool("stop-on-error", true, "Stop after the first failed package")
	flags.String("shell", "", "Shell used for package commands: sh or builtin")
	flags.Bool("check-commands", false, "Verify that install programs exist before installing")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newInfoCmd())
	rootCmd.AddCommand(c.newValidateCmd())
	rootCmd.AddCommand(c.newConfigCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}

// overrides collects the flags set on the command line. Unset flags leave the
// config file and defaults in charge.
func overrides(cmd *cobra.Command) domain.ConfigOverrides {
	flags := cmd.Flags()
	var o domain.ConfigOverrides

	o.ConfigFile, _ = flags.GetString("config")

	if flags.Changed("environment") {
		v, _ := flags.GetString("environment")
		o.Environment = &v
	}
	if flags.Changed("package-directory") {
		v, _ := flags.GetString("package-directory")
		o.PackageDirectory = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		o.Verbose = &v
	}
	if flags.Changed("no-color") {
		v, _ := flags.GetBool("no-color")
		colors := !v
		o.UseColors = &colors
	}
	if flags.Changed("log-format") {
		v, _ := flags.GetString("log-format")
		o.LogFormat = &v
	}
	if flags.Changed("parallel") {
		v, _ := flags.GetInt("parallel")
		o.MaxParallel = &v
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		o.CommandTimeout = &v
	}
	if flags.Changed("stop-on-error") {
		v, _ := flags.GetBool("stop-on-error")
		o.StopOnError = &v
	}
	if flags.Changed("shell") {
		v, _ := flags.GetString("shell")
		o.Shell = &v
	}
	if flags.Changed("check-commands") {
		v, _ := flags.GetBool("check-commands")
		o.CheckCommands = &v
	}
	return o
}
