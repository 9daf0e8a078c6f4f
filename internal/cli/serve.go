package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-locator/internal/server"
)

var flagListen string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live snapshot over HTTP and WebSocket",
		Long: "Run the location coordinator and expose it:\n\n" +
			"  GET  /api/snapshot   current address, prayer times and next prayer\n" +
			"  POST /api/refresh    ?trigger=manual|foreground|periodic\n" +
			"  POST /api/location   {\"latitude\":..,\"longitude\":..} from a device sensor\n" +
			"  GET  /api/ws         stream of snapshots\n" +
			"  GET  /health",
		RunE: runServe,
	}
	addStackFlags(cmd)
	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (overrides config, default :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStack(ctx, cfg, stackOptions{PollInterval: flagPollInterval, AlertLead: flagAlertLead})
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Start(ctx); err != nil {
		return err
	}

	addr := cfg.Runtime().Listen
	if cmd.Flags().Changed("listen") {
		addr = flagListen
	}
	return server.New(st.coord, cfg.Runtime().CallTimeout*4, logger).Run(ctx, addr)
}
