package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/assetwatch/internal/config"
)

const configName = ".assetwatch"

// flagOverrides maps command line flags to the configuration keys they replace.
var flagOverrides = map[string]string{
	"store":           "store.path",
	"driver":          "store.driver",
	"inventory":       "pages.inventory",
	"result":          "pages.result",
	"url-column":      "fields.url",
	"max-redirects":   "checks.max_redirects",
	"target-interval": "pacing.target_interval",
	"write-interval":  "pacing.write_interval",
	"log-level":       "log.level",
	"log-dir":         "log.dir",
}

// newViper builds the configuration source: defaults, then the config file,
// then ASSETWATCH_* variables (a .env file in the working directory is loaded
// into the environment first). It returns the path of the file read, if any.
func newViper(cfgFile string) (*viper.Viper, string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	config.SetDefaults(v)
	config.BindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("failed to read config: %w", err)
		}
		return v, "", nil
	}
	return v, v.ConfigFileUsed(), nil
}

// applyFlagOverrides copies explicitly set flags onto v so they win over the
// config file and the environment.
func applyFlagOverrides(flags *pflag.FlagSet, v *viper.Viper) {
	if flags == nil || v == nil {
		return
	}
	for name, key := range flagOverrides {
		applyStringOverride(flags, name, func(value string) {
			v.Set(key, value)
		})
	}
	if flag := flags.Lookup("no-backup"); flag != nil && flag.Changed {
		v.Set("backup.enabled", false)
	}
}

func applyStringOverride(flags *pflag.FlagSet, name string, setter func(string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || !flag.Changed {
		return
	}
	setter(flag.Value.String())
}
