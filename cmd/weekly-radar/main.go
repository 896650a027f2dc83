// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the weekly-radar CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/weekly-radar/internal/observability"
	"github.com/pdiddy/weekly-radar/internal/secrets"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the weekly-radar CLI.
var rootCmd = &cobra.Command{
	Use:   "weekly-radar",
	Short: "Weekly multi-source tracker for one research topic",
	Long: `weekly-radar collects one week of mentions of a research topic from web
search, code hosting, a model hub and a preprint server, enriches the
preprints, and archives one ranked summary document per week.

Run the current week with "run", fill history with "backfill", inspect the
archive with "weeks", and expose a trigger endpoint with "serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, zerolog.New(os.Stderr))
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./weekly-radar.yaml or ~/.config/weekly-radar/weekly-radar.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files")
	rootCmd.PersistentFlags().String("data-dir", "", "archive base directory (overrides archive.data_dir)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (overrides logging.level)")

	_ = viper.BindPFlag("archive.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	setDefaults(viper.GetViper())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("weekly-radar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "weekly-radar"))
		}
	}

	viper.SetEnvPrefix("WEEKLY_RADAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes, completes and validates the configuration.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	secrets.Apply(&cfg, loadedSecrets)
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg.
func newLogger(cfg types.Config) zerolog.Logger {
	return observability.NewLogger(cfg.Logging).With().Str("component", "weekly-radar").Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
