package cmd

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/relloyd/country-metrics/actions"
	"github.com/relloyd/country-metrics/pipe"
	"github.com/relloyd/country-metrics/stats"
	"github.com/spf13/cobra"
)

var serveConfig = actions.WebServerConfig{
	Scheme: "http",
	Addr:   net.IP{0, 0, 0, 0},
	Port:   8080,
}

var serveStatsSeconds int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service that runs the pipeline on request",
	Long: `Start a web service that runs the pipeline on request.
Only one run may be in progress at a time; a concurrent request receives HTTP 409.

  GET  /health
  POST /runs                  start a full run
  POST /stages/{stage}        start one stage
  GET  /runs                  list runs
  GET  /runs/{runId}          run status and step stats
  POST /runs/{runId}/stop     cancel a run
  POST /stop                  stop the server`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, log, err := newCountryPipeline(cmd.Flags(), os.LookupEnv)
		if err != nil {
			return err
		}
		p.StatsOptions = append(p.StatsOptions, stats.SetStatsDumpFrequency(time.Duration(serveStatsSeconds)*time.Second))
		serveConfig.Pipeline = p
		ctx, stop := pipe.WithSignalCancel(context.Background(), log)
		defer stop()
		return actions.RunWebServer(ctx, log, &serveConfig)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.Flags().IPVarP(&serveConfig.Addr, switches["address"].name, switches["address"].shortHand, net.IP{0, 0, 0, 0}, switches["address"].desc)
	switches.addFlag(serveCmd.Flags(), &serveConfig.Port, "port", 8080)
	switches.addFlag(serveCmd.Flags(), &serveStatsSeconds, "stats", 0)
}
