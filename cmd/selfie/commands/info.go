package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/selfie/internal/app"
)

func (c *CLI) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <package>",
		Short: "Show a package and its installation order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := c.app.Info(cmd.Context(), args[0], overrides(cmd))
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), &info)
			return nil
		},
	}
}

func printInfo(w io.Writer, info *app.PackageInfo) {
	pkg := &info.Package
	field := func(name, value string) {
		if value != "" {
			_, _ = fmt.Fprintf(w, "%-14s %s\n", name+":", value)
		}
	}

	_, _ = fmt.Fprintln(w, titleStyle.Render(pkg.Name))
	field("version", pkg.Version)
	field("description", pkg.Description)
	field("homepage", pkg.Homepage)
	field("file", pkg.Path)
	field("environments", strings.Join(pkg.EnvironmentNames(), ", "))
	if r := info.Receipt; r != nil {
		field("installed", fmt.Sprintf("%s on %s (%s)", r.Version, r.InstalledAt.Format(time.DateOnly), r.Environment))
	}

	if !info.Supported {
		_, _ = fmt.Fprintln(w, warningStyle.Render(
			fmt.Sprintf("%s not available for environment %q", iconWarning, info.Environment)))
		return
	}

	env := pkg.Environments[info.Environment]
	field("install", env.Install)
	field("check", env.Check)

	switch {
	case info.ResolveError != nil:
		_, _ = fmt.Fprintln(w, failureStyle.Render(
			fmt.Sprintf("%s dependencies cannot be resolved: %v", iconCross, info.ResolveError)))
	case len(info.Order) > 0:
		field("install order", strings.Join(info.Order, " → "))
	}
}
