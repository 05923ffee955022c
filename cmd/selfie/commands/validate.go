package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/selfie/internal/engine/validator"
)

func (c *CLI) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <package|file.yaml>",
		Short: "Check a package definition for mistakes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.Validate(cmd.Context(), args[0], overrides(cmd))
			if report.Package != "" {
				printReport(cmd.OutOrStdout(), &report)
			}
			return err
		},
	}
}

func printReport(w io.Writer, report *validator.Report) {
	if len(report.Issues) == 0 {
		_, _ = fmt.Fprintf(w, "%s %s is valid\n", successStyle.Render(iconCheck), report.Package)
		return
	}

	for _, issue := range report.Issues {
		icon := warningStyle.Render(iconWarning)
		if issue.Severity == validator.SeverityError {
			icon = failureStyle.Render(iconCross)
		}
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", icon, issue.Field, issue.Message)
		if issue.Suggestion != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", mutedStyle.Render(issue.Suggestion))
		}
	}
	_, _ = fmt.Fprintf(w, "%s: %d error(s), %d warning(s)\n",
		report.Package, len(report.Errors()), len(report.Warnings()))
}
