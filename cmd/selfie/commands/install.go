package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/selfie/internal/adapters/detector"
	"go.trai.ch/selfie/internal/app"
	"go.trai.ch/selfie/internal/core/domain"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <package>",
		Short: "Install a package and its dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			logFormat, _ := cmd.Flags().GetString("log-format")

			mode := detector.ResolveMode(detector.DetectEnvironment(os.Stderr), output)
			progress := mode == detector.ModeTUI && logFormat != domain.LogFormatJSON

			res, err := c.app.Install(cmd.Context(), args[0], overrides(cmd), app.InstallOptions{Progress: progress})
			if res.Package != "" {
				printResult(cmd.OutOrStdout(), &res)
			}
			return err
		},
	}
	cmd.Flags().StringP("output", "o", "auto", "Progress output: auto, tui or plain")
	return cmd
}

// printResult writes one line per package in installation order, the requested package last.
func printResult(w io.Writer, res *domain.InstallationResult) {
	for i := range res.Dependencies {
		printResultLine(w, &res.Dependencies[i])
	}
	printResultLine(w, res)
}

func printResultLine(w io.Writer, res *domain.InstallationResult) {
	line := fmt.Sprintf("%s %-24s %-16s %s", statusIcon(res.Status), res.Package, res.Status, res.Duration.Round(time.Millisecond))
	if res.Reason != "" {
		line += "  " + res.Reason
	}
	_, _ = fmt.Fprintln(w, line)
}

func statusIcon(s domain.InstallationStatus) string {
	switch s {
	case domain.StatusComplete, domain.StatusAlreadyInstalled:
		return successStyle.Render(iconCheck)
	case domain.StatusFailed:
		return failureStyle.Render(iconCross)
	default:
		return mutedStyle.Render(iconSkip)
	}
}
