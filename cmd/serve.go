package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartloom-cli/internal/geo"
	"github.com/KaramelBytes/chartloom-cli/internal/metrics"
	"github.com/KaramelBytes/chartloom-cli/internal/server"
)

var (
	serveAddr    string
	serveOffline bool
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chart pipeline over HTTP",
	Long: `Starts an HTTP API:
  POST /v1/columns          {rows}            inferred column types
  POST /v1/charts/auto      {rows, question}  heuristic chart
  POST /v1/charts/normalize <model reply>     normalized chart spec
  POST /v1/charts/suggest   {rows, question}  model chart with heuristic fallback
  GET  /v1/maps/{name}                        GeoJSON from maps_dir
  GET  /healthz, /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		addr := serveAddr
		if addr == "" {
			addr = c.ListenAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.New()
		a, closeAll, err := buildAdvisor(ctx, c, advisorOptions{Offline: serveOffline, Metrics: m})
		if err != nil {
			return err
		}
		defer closeAll()

		srv := server.New(server.Config{
			Advisor:        a,
			Maps:           geo.Resolver{Dir: c.MapsDir},
			Logger:         logger,
			Metrics:        m,
			AllowedOrigins: serveOrigins,
		})
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "never call a model; suggest uses the heuristic")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "cors-origin", nil, "allowed CORS origins (default *)")
}
