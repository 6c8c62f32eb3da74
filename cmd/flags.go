package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/actions"
	"github.com/relloyd/country-metrics/config"
	c "github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

// switches holds the flags that are not pipeline settings.
// Pipeline settings are registered from config.Settings by addSettingFlags.
var switches = cliFlags{
	"config-file": cliFlag{name: "config-file", shortHand: "c",
		desc: "YAML config `<file>` (default: ~/.country-metrics/config.yaml)"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Specify \"yaml\" or \"json\" to print the configuration"},
	"key": cliFlag{name: "key", shortHand: "k",
		desc: "* The dotted config key, e.g. store.host"},
	"value": cliFlag{name: "value", shortHand: "v",
		desc: "* The value to save"},
	"force": cliFlag{name: "force", shortHand: "f",
		desc: "Overwrite existing values"},
	"port": cliFlag{name: "port", shortHand: "p",
		desc: "Port to listen on"},
	"address": cliFlag{name: "address", shortHand: "a",
		desc: "Address to listen on"},
	"stats": cliFlag{name: "stats", shortHand: "t",
		desc: "Interval in seconds between step stats log entries (0 to disable)"},
}

// settingShortHands gives single character names to the most used settings.
var settingShortHands = map[string]string{
	"logLevel":   "l",
	"store.type": "s",
}

// addFlag registers the named switch on fs and binds it to target.
func (f cliFlags) addFlag(fs *pflag.FlagSet, target interface{}, name string, defaultValue interface{}) {
	sw, ok := f[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	switch t := target.(type) {
	case *string:
		fs.StringVarP(t, sw.name, sw.shortHand, defaultValue.(string), sw.desc)
	case *int:
		fs.IntVarP(t, sw.name, sw.shortHand, defaultValue.(int), sw.desc)
	case *bool:
		fs.BoolVarP(t, sw.name, sw.shortHand, defaultValue.(bool), sw.desc)
	default:
		panic("Error: unhandled CLI flag target value type")
	}
}

// addSettingFlags adds a string flag for every pipeline setting, e.g. --store-host.
// Defaults are not set on the flags so that only explicit values override the config file and environment.
func addSettingFlags(fs *pflag.FlagSet) {
	for _, s := range config.Settings {
		fs.StringP(s.FlagName(), settingShortHands[s.Key], "", fmt.Sprintf("%v (env %v)", s.Description, s.EnvVar()))
	}
}

// settingValues returns the dotted key and value of each setting flag that was supplied.
func settingValues(fs *pflag.FlagSet) map[string]interface{} {
	values := make(map[string]interface{})
	for _, s := range config.Settings {
		fl := fs.Lookup(s.FlagName())
		if fl != nil && fl.Changed {
			values[s.Key] = fl.Value.String()
		}
	}
	return values
}

// loadPipelineConfig resolves defaults, the config file, the environment and then flags.
func loadPipelineConfig(fs *pflag.FlagSet, lookupEnv func(string) (string, bool)) (*config.Pipeline, error) {
	var f *config.File
	var err error
	fileName := configFile
	if fileName == "" && lookupEnv != nil {
		fileName, _ = lookupEnv(envVarConfigFile)
	}
	if fileName != "" {
		f = config.NewFile(fileName)
	} else if f, err = config.NewDefaultFile(); err != nil && !twelveFactorMode {
		return nil, err
	} // else in 12 factor mode run without a file when there is no home dir
	p, err := config.Load(f, lookupEnv)
	if err != nil {
		return nil, err
	}
	if fs != nil {
		if err := p.Apply(settingValues(fs)); err != nil {
			return nil, errors.Wrap(err, "flags")
		}
	}
	if _, err := logrus.ParseLevel(p.LogLevel); err != nil {
		return nil, err
	}
	return p, nil
}

// newCountryPipeline builds the logger and pipeline for a command.
func newCountryPipeline(fs *pflag.FlagSet, lookupEnv func(string) (string, bool)) (*actions.CountryPipeline, logger.Logger, error) {
	p, err := loadPipelineConfig(fs, lookupEnv)
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewLogger(c.ServiceName, p.LogLevel, stackDumpOnPanic)
	if twelveFactorMode {
		log.SetJSONFormat()
	}
	cp, err := actions.NewCountryPipeline(log, *p)
	if err != nil {
		return nil, log, err
	}
	return cp, log, nil
}
