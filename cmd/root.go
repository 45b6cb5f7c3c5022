// Package cmd implements the lendreg command line interface.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudwalk/lending-registry/internal/config"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config

	// callerFlag overrides cfg.Caller for a single invocation.
	callerFlag string
)

var rootCmd = &cobra.Command{
	Use:     "lendreg",
	Short:   "A lending market registry for credit lines and liquidity pools",
	Long: `lendreg coordinates the creation of credit lines and liquidity pools
through per-category factories, records every resource in the market
ledger, and keeps a durable audit journal of all registry changes.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/lendreg/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&callerFlag, "caller", "",
		"acting identity (overrides config caller)")
	rootCmd.PersistentFlags().String("db", "",
		"registry database path")

	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("db_path", defaults.DBPath)
	viper.SetDefault("creation_policy", defaults.CreationPolicy)
	viper.SetDefault("access.policy", defaults.Access.Policy)
	viper.SetDefault("access.role", defaults.Access.Role)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("flags", defaults.Flags)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .lendreg/config.yaml (current directory)
		// 2. ~/.config/lendreg/config.yaml (user config)
		if _, err := os.Stat(".lendreg/config.yaml"); err == nil {
			viper.SetConfigFile(".lendreg/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "lendreg"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .lendreg/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".lendreg/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// configFilePath returns the path of the loaded config file, falling back
// to the local default.
func configFilePath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return ".lendreg/config.yaml"
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
