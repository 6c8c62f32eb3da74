package cmd

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2026-01-01T00:00+0000"
	stackDumpOnPanic bool
	configFile       string
)

var rootCmd = &cobra.Command{
	Use:   "country-metrics",
	Short: "Refresh a country metrics table from a public countries API",
	Long: `country-metrics fetches country reference data, derives population density and
fully refreshes a relational table with the result.

A run executes the stages cleanup, extract, transform and load in that order.
Each stage can also be run on its own, or over HTTP using "serve".
Settings are read from the config file, then CM_* environment variables, then flags.`,
	SilenceUsage: true,
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
	switches.addFlag(rootCmd.PersistentFlags(), &configFile, "config-file", "")
	addSettingFlags(rootCmd.PersistentFlags())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode {
			lambda.Start(newLambdaHandler(os.LookupEnv))
		} else if err := execute12FactorMode(os.LookupEnv, twelveFactorActions); err != nil {
			// execute12FactorMode logs the error.
			os.Exit(1)
		}
	} else if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
