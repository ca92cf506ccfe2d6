package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/shipyard/internal/cli"
	"github.com/aretw0/shipyard/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shipyard",
	Short: "Shipyard builds Endless Sky plugins from game data",
	Long: `Shipyard combines the stable Endless Sky data files with your own uploads
and runs a plugin generator over them, producing a ready-to-install zip archive.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "shipyard.yaml", "Configuration file (.yaml, .json or .toml)")
	pf.String("log-level", "", "Log level: debug, info, warn, error or off")
	pf.String("log-format", "", "Log format: text or json")
	pf.String("baseline-url", "", "Base URL of the baseline dataset")
	pf.String("baseline-dir", "", "Local directory holding the baseline dataset")
	pf.String("manifest", "", "Manifest location relative to the baseline")
	pf.String("generators", "", "External generators file")
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}

	overrides := map[string]*string{
		"log-level":    &cfg.LogLevel,
		"log-format":   &cfg.LogFormat,
		"baseline-url": &cfg.Baseline.URL,
		"baseline-dir": &cfg.Baseline.Dir,
		"manifest":     &cfg.Baseline.Manifest,
		"generators":   &cfg.GeneratorsFile,
		"addr":         &cfg.Addr,
		"redis-addr":   &cfg.Redis.Addr,
		"out":          &cfg.OutputDir,
	}
	for name, dst := range overrides {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	logger, err := cli.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
