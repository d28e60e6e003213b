package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRulesCommand(workspaceDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the classification rule table",
		Long:  "Show the classification rule table. When several phrases match, the rule listed last wins.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*workspaceDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rules, err := ws.rules()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tPHRASE\tLABEL")
			for i, r := range rules {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, r.Phrase, r.Label)
			}
			return tw.Flush()
		},
	}
}
