package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/instrument"
	"github.com/pesalens/pesalens/internal/logger"
	"github.com/pesalens/pesalens/internal/queries"
)

func newReportCommand(workspaceDir *string) *cobra.Command {
	var ledgerID string
	var list bool

	cmd := &cobra.Command{
		Use:   "report [query]",
		Short: "Run a query against a stored ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*workspaceDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			svc := ws.queryService(instrument.Nop())
			if list {
				return listQueries(cmd, svc)
			}
			if len(args) == 0 {
				return fmt.Errorf("no query given; see --list")
			}
			return runReport(cmd, ws, svc, ledgerID, args[0])
		},
	}

	cmd.Flags().StringVar(&ledgerID, "ledger", queries.Latest, "ledger ID")
	cmd.Flags().BoolVar(&list, "list", false, "list available queries")

	return cmd
}

func listQueries(cmd *cobra.Command, svc *queries.Service) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, q := range svc.Registry().List() {
		fmt.Fprintf(tw, "%s\t%s\n", q.Name, q.Description)
	}
	return tw.Flush()
}

func runReport(cmd *cobra.Command, ws *workspace, svc *queries.Service, ledgerID, name string) error {
	ctx := logger.WithContext(cmd.Context(), ws.log)
	result, err := svc.Run(ctx, ledgerID, name)
	if errors.Is(err, apperr.ErrUnavailable) {
		result = map[string]string{"message": queries.NoDataMessage}
	} else if err != nil {
		return err
	}

	decimal.MarshalJSONWithoutQuotes = true
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
