package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLedgersCommand(workspaceDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ledgers",
		Short: "List stored ledgers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*workspaceDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			entries, err := ws.store.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ledgers yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tINGESTED\tFILE\tHOLDER\tRECORDS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
					e.LedgerID, e.Timestamp.Format("2006-01-02 15:04"), e.Filename, e.HolderName, e.Records)
			}
			return tw.Flush()
		},
	}
}
