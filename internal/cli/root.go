// Package cli is the netmonsim command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"netmonsim/internal/config"
	"netmonsim/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	seed       uint64
)

var rootCmd = &cobra.Command{
	Use:   "netmonsim",
	Short: "netmonsim - simulated network monitor for security training",
	Long: `netmonsim synthesizes believable network traffic for a training desktop:
page visits, opened emails and background noise become a live packet list,
with suspicious hosts flagged so trainees can practise spotting them.
No real packets are captured or sent.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML file (default: built-in scenario)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Random seed, 0 for time-based")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("seed") {
		cfg.Traffic.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	logging.InitLogger(cfg.Log.Level, cfg.Log.Format, nil)
	return cfg, nil
}
