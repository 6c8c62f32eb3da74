package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/country-metrics/actions"
	c "github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/pipe"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures twelveFactorMode is known before the CLI is used.
func init() {
	setupTwelveFactorMode(os.LookupEnv)
}

const (
	envVarTwelveFactorMode = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand          = c.EnvVarPrefix + "_" + "COMMAND"
	envVarConfigFile       = c.EnvVarPrefix + "_" + "CONFIG_FILE"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if envVarTwelveFactorMode is "lambda"
)

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode(lookupEnv func(string) (string, bool)) {
	mode, _ := lookupEnv(envVarTwelveFactorMode)
	twelveFactorMode = mode != ""
	lambdaMode = strings.ToLower(mode) == "lambda"
}

type twelveFactorAction func(ctx context.Context, p *actions.CountryPipeline) error

func stagesAction(stages ...string) twelveFactorAction {
	return func(ctx context.Context, p *actions.CountryPipeline) error {
		return p.Run(ctx, stages...)
	}
}

// twelveFactorActions maps values of CM_COMMAND to what they run. An empty command means "run".
var twelveFactorActions = map[string]twelveFactorAction{
	"run":               stagesAction(),
	c.StepNameCleanup:   stagesAction(c.StepNameCleanup),
	c.StepNameExtract:   stagesAction(c.StepNameExtract),
	c.StepNameTransform: stagesAction(c.StepNameTransform),
	c.StepNameLoad:      stagesAction(c.StepNameLoad),
}

// execute12FactorMode runs the action named by CM_COMMAND using settings from CM_* variables
// and the config file, if any. Flags are not read.
func execute12FactorMode(lookupEnv func(string) (string, bool), acts map[string]twelveFactorAction) error {
	p, log, err := newCountryPipeline(nil, lookupEnv)
	if err != nil {
		if log == nil {
			log = logger.NewLogger(c.ServiceName, "info", stackDumpOnPanic)
		}
		log.Error(err)
		return err
	}
	log.Info("running in 12 factor mode...")
	command, _ := lookupEnv(envVarCommand)
	command = strings.ToLower(strings.TrimSpace(command))
	if command == "" {
		command = "run"
	}
	a, ok := acts[command]
	if !ok {
		err = fmt.Errorf("invalid %v value %q", envVarCommand, command)
		log.Error(err)
		return err
	}
	ctx, stop := pipe.WithSignalCancel(context.Background(), log)
	defer stop()
	return a(ctx, p)
}

// LambdaResult is returned to the Lambda caller after each invocation.
type LambdaResult struct {
	RunId  string         `json:"runId"`
	Status pipe.RunStatus `json:"status"`
}

// newLambdaHandler returns a handler that performs one full run per invocation.
func newLambdaHandler(lookupEnv func(string) (string, bool)) func(ctx context.Context) (LambdaResult, error) {
	return func(ctx context.Context) (LambdaResult, error) {
		p, log, err := newCountryPipeline(nil, lookupEnv)
		if err != nil {
			if log != nil {
				log.Error(err)
			}
			return LambdaResult{}, err
		}
		r, err := p.NewRun()
		if err != nil {
			return LambdaResult{}, err
		}
		err = r.Execute(ctx)
		return LambdaResult{RunId: r.Id, Status: r.Status()}, err
	}
}
