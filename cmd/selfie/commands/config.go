package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and the package directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := c.app.CheckConfig(cmd.Context(), overrides(cmd))
			if err != nil {
				return err
			}

			cfg := report.Config
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "%-18s %s\n", "environment:", cfg.Environment)
			_, _ = fmt.Fprintf(w, "%-18s %s (%d packages)\n", "package directory:", cfg.PackageDirectory, report.Packages)
			_, _ = fmt.Fprintf(w, "%-18s %s\n", "command timeout:", cfg.CommandTimeout)
			_, _ = fmt.Fprintf(w, "%-18s %d\n", "max parallel:", cfg.MaxParallel)
			_, _ = fmt.Fprintf(w, "%-18s %t\n", "stop on error:", cfg.StopOnError)
			_, _ = fmt.Fprintf(w, "%-18s %s\n", "shell:", cfg.Shell)
			_, _ = fmt.Fprintf(w, "%-18s %t\n", "check commands:", cfg.CheckCommands)

			if !report.ShellAvailable {
				_, _ = fmt.Fprintln(w, warningStyle.Render(
					fmt.Sprintf("%s shell %q not found, use --shell builtin", iconWarning, cfg.Shell)))
				return nil
			}
			_, _ = fmt.Fprintf(w, "%s configuration is valid\n", successStyle.Render(iconCheck))
			return nil
		},
	})
	return cmd
}
