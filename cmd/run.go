package cmd

import (
	"context"
	"os"
	"time"

	c "github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/pipe"
	"github.com/relloyd/country-metrics/stats"
	"github.com/spf13/cobra"
)

var statsSeconds int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run cleanup, extract, transform and load in order",
	Long: `Run cleanup, extract, transform and load in order, stopping at the first failure.
The destination table is replaced in a single transaction so a failed run leaves the previous rows in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd)
	},
}

func newStageCmd(stage string, short string) *cobra.Command {
	return &cobra.Command{
		Use:   stage,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStages(cmd, stage)
		},
	}
}

// runStages executes the given stages, or all of them, until done or interrupted.
func runStages(cmd *cobra.Command, stages ...string) error {
	p, log, err := newCountryPipeline(cmd.Flags(), os.LookupEnv)
	if err != nil {
		return err
	}
	p.StatsOptions = append(p.StatsOptions, stats.SetStatsDumpFrequency(time.Duration(statsSeconds)*time.Second))
	ctx, stop := pipe.WithSignalCancel(context.Background(), log)
	defer stop()
	return p.Run(ctx, stages...) // the run logs its own failure
}

func init() {
	rootCmd.AddCommand(runCmd)
	switches.addFlag(runCmd.Flags(), &statsSeconds, "stats", c.StatsCaptureFrequencySec)
	rootCmd.AddCommand(
		newStageCmd(c.StepNameCleanup, "Delete artifacts left by a previous run"),
		newStageCmd(c.StepNameExtract, "Fetch countries from the source and write the raw artifact"),
		newStageCmd(c.StepNameTransform, "Derive density from the raw artifact and write the final artifact"),
		newStageCmd(c.StepNameLoad, "Replace the destination table contents with the final artifact"),
	)
}
