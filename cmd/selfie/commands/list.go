package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pkgs, err := c.app.List(cmd.Context(), overrides(cmd))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(pkgs) == 0 {
				_, _ = fmt.Fprintln(w, "no packages found")
				return nil
			}
			for _, p := range pkgs {
				icon := successStyle.Render(iconCheck)
				if !p.Supported {
					icon = mutedStyle.Render(iconSkip)
				}
				line := fmt.Sprintf("%s %-24s %-10s", icon, p.Package.Name, p.Package.Version)
				if p.Receipt != nil {
					line += " " + successStyle.Render("installed "+p.Receipt.Version)
				}
				if p.Package.Description != "" {
					line += " " + mutedStyle.Render(p.Package.Description)
				}
				_, _ = fmt.Fprintln(w, line)
			}
			return nil
		},
	}
}
