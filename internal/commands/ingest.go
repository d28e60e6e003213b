package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pesalens/pesalens/internal/ingest"
	"github.com/pesalens/pesalens/internal/instrument"
	"github.com/pesalens/pesalens/internal/logger"
	"github.com/pesalens/pesalens/internal/statement"
)

func newIngestCommand(workspaceDir *string) *cobra.Command {
	var password string
	var scan bool

	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Ingest M-Pesa statements into ledgers",
		Long: "Ingest statement files (CSV, XLSX or PDF) into new ledgers. With --scan,\n" +
			"every statement in import/ is ingested and moved to import/processed/.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !scan {
				return fmt.Errorf("no statements given; pass files or --scan")
			}
			ws, err := openWorkspace(*workspaceDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runIngest(cmd, ws, args, password, scan)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "statement password")
	cmd.Flags().BoolVar(&scan, "scan", false, "ingest every statement in import/")

	return cmd
}

func runIngest(cmd *cobra.Command, ws *workspace, files []string, password string, scan bool) error {
	p, err := ws.pipeline(instrument.Nop())
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context(), ws.log)
	out := cmd.OutOrStdout()

	ingestFile := func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading statement: %w", err)
		}
		res, err := p.Ingest(ctx, ingest.Upload{
			Filename: filepath.Base(path),
			Data:     data,
			Password: password,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		fmt.Fprintf(out, "%s -> ledger %s (%d transactions", res.Filename, res.LedgerID, res.TotalRecords)
		if res.CustomerName != "" {
			fmt.Fprintf(out, ", %s", res.CustomerName)
		}
		fmt.Fprintln(out, ")")
		return nil
	}

	var failed int
	for _, f := range files {
		if err := ingestFile(f); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			failed++
		}
	}

	if scan {
		pending, err := statement.Scan(ws.dir)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Fprintln(out, "No statements in import/")
		}
		for _, f := range pending {
			if err := ingestFile(f.Path); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				failed++
				continue
			}
			if err := statement.MarkProcessed(ws.dir, f.Name); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d statement(s) failed", failed)
	}
	return nil
}
