package actions

import (
	"fmt"
	"io"
	"strings"

	"github.com/relloyd/country-metrics/config"
	"github.com/relloyd/country-metrics/helper"
)

type ConfigSetConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Key        string       `errorTxt:"key" mandatory:"yes"`
	Value      string       `errorTxt:"value" mandatory:"yes"`
	Force      bool
}

type ConfigUnsetConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Key        string       `errorTxt:"key" mandatory:"yes"`
}

// RunConfigSet saves key+value in the config file, creating the file if needed.
// Unless cfg.Force is set it returns an error when the key exists.
func RunConfigSet(out io.Writer, cfg *ConfigSetConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if !config.IsKnownKey(cfg.Key) {
		return fmt.Errorf("unknown key %q, expected one of: %v", cfg.Key, strings.Join(knownKeys(), ", "))
	}
	if _, err := cfg.ConfigFile.Get(cfg.Key); err == nil && !cfg.Force {
		return fmt.Errorf("key %q exists, use force to update the value or unset it first", cfg.Key)
	} else if err != nil {
		_, keyNotFoundErr := err.(config.KeyNotFoundError)
		_, fileNotFoundErr := err.(config.FileNotFoundError)
		if !(keyNotFoundErr || fileNotFoundErr) {
			return err
		}
	}
	if err := cfg.ConfigFile.Set(cfg.Key, cfg.Value); err != nil {
		return fmt.Errorf("error writing config file: %v", err)
	}
	_, _ = fmt.Fprintf(out, "Key %q set in %q\n", cfg.Key, cfg.ConfigFile.FullPath)
	return nil
}

// RunConfigUnset removes a key from the config file.
func RunConfigUnset(out io.Writer, cfg *ConfigUnsetConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.Key); err != nil {
		return fmt.Errorf("unable to delete key %q from config: %v", cfg.Key, err)
	}
	_, _ = fmt.Fprintf(out, "Key %q removed\n", cfg.Key)
	return nil
}

// RunConfigList prints the keys saved in the config file with their values.
// The store password is masked.
func RunConfigList(out io.Writer, f *config.File) error {
	values, err := f.Values()
	if err != nil {
		return err
	}
	keys, err := f.GetAllKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		_, _ = fmt.Fprintf(out, "No keys set in %q\n", f.FullPath)
		return nil
	}
	for _, k := range keys {
		v := values[k]
		if k == "store.password" {
			v = "xxxxx"
		}
		_, _ = fmt.Fprintf(out, "%v = %v\n", k, v)
	}
	return nil
}

// RunConfigPrint renders the effective configuration with secrets redacted.
func RunConfigPrint(out io.Writer, p config.Pipeline, format string) error {
	b, err := config.Render(p, format)
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

func knownKeys() []string {
	keys := make([]string, 0, len(config.Settings))
	for _, s := range config.Settings {
		keys = append(keys, s.Key)
	}
	return keys
}
