package commands

import (
	"github.com/spf13/cobra"

	"github.com/pesalens/pesalens/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var workspaceDir string

	rootCmd := &cobra.Command{
		Use:     "pesalens",
		Short:   "M-Pesa statement analytics",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "C", ".", "workspace directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newIngestCommand(&workspaceDir),
		newReportCommand(&workspaceDir),
		newLedgersCommand(&workspaceDir),
		newRulesCommand(&workspaceDir),
		newServeCommand(&workspaceDir),
	)

	return rootCmd
}
