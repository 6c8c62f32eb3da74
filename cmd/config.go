package cmd

import (
	"os"

	"github.com/relloyd/country-metrics/actions"
	"github.com/relloyd/country-metrics/config"
	"github.com/spf13/cobra"
)

var (
	configOutput   string
	configSetCfg   = actions.ConfigSetConfig{}
	configUnsetCfg = actions.ConfigUnsetConfig{}
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved settings",
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration with secrets redacted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPipelineConfig(cmd.Flags(), os.LookupEnv)
		if err != nil {
			return err
		}
		return actions.RunConfigPrint(cmd.OutOrStdout(), *p, configOutput)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save a setting in the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := configFileForWrite()
		if err != nil {
			return err
		}
		configSetCfg.ConfigFile = f
		return actions.RunConfigSet(cmd.OutOrStdout(), &configSetCfg)
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Remove a setting from the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := configFileForWrite()
		if err != nil {
			return err
		}
		configUnsetCfg.ConfigFile = f
		return actions.RunConfigUnset(cmd.OutOrStdout(), &configUnsetCfg)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the settings saved in the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := configFileForWrite()
		if err != nil {
			return err
		}
		return actions.RunConfigList(cmd.OutOrStdout(), f)
	},
}

func configFileForWrite() (*config.File, error) {
	if configFile != "" {
		return config.NewFile(configFile), nil
	}
	return config.NewDefaultFile()
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPrintCmd, configSetCmd, configUnsetCmd, configListCmd)
	switches.addFlag(configPrintCmd.Flags(), &configOutput, "output", config.OutputFormatYaml)
	switches.addFlag(configSetCmd.Flags(), &configSetCfg.Key, "key", "")
	switches.addFlag(configSetCmd.Flags(), &configSetCfg.Value, "value", "")
	switches.addFlag(configSetCmd.Flags(), &configSetCfg.Force, "force", false)
	_ = configSetCmd.MarkFlagRequired("key")
	_ = configSetCmd.MarkFlagRequired("value")
	switches.addFlag(configUnsetCmd.Flags(), &configUnsetCfg.Key, "key", "")
	_ = configUnsetCmd.MarkFlagRequired("key")
}
