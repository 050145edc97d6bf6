package util

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const EnvPrefix = "SCHEDLAT"

// AddConfigFlags registers the flags shared by every configurable tool.
func AddConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "YAML config file with defaults for any flag")
	cmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
}

// LoadConfig layers, from highest precedence: explicitly set flags,
// SCHEDLAT_* environment variables, the --config file, and flag defaults.
func LoadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}
	return v, nil
}
