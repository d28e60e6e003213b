package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pesalens/pesalens/internal/buildinfo"
	"github.com/pesalens/pesalens/internal/instrument"
	"github.com/pesalens/pesalens/internal/server"
)

func newServeCommand(workspaceDir *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve ingestion and queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*workspaceDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				ws.cfg.Server.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := instrument.New(reg)

			p, err := ws.pipeline(metrics)
			if err != nil {
				return err
			}
			srv := server.New(server.Options{
				Pipeline:       p,
				Queries:        ws.queryService(metrics),
				Ledgers:        ws.store,
				Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
				Logger:         ws.log,
				MaxUploadBytes: ws.cfg.Server.MaxUploadBytes,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ws.log.Info().Str("version", buildinfo.Version).Str("workspace", ws.dir).Msg("starting server")
			return srv.ListenAndServe(ctx, ws.cfg.Server.Addr, ws.cfg.Server.ReadTimeout, ws.cfg.Server.WriteTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
