package commands

import (
	"github.com/spf13/cobra"

	"github.com/migforge/migforge/cli/internal/ui"
	"github.com/migforge/migforge/cli/internal/update"
	"github.com/migforge/migforge/cli/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			ui.PrintBox("migforge", info.FullString())
			if check {
				return update.CheckForUpdates(info.Version)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check whether a newer release is available")

	return cmd
}
