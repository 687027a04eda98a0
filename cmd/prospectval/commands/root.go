package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadvet/prospectval/internal/config"
	"github.com/leadvet/prospectval/internal/logger"
)

const version = "0.3.0"

var rootFlags struct {
	LogLevel  string
	LogFormat string
	Config    string
}

// Set by the root PersistentPreRunE before any command runs.
var (
	rootConfig = &config.Config{}
	rootLogger = slog.Default()
)

// rootCmd is constructed in init: its PersistentPreRunE references
// resolveLogConfig, which reads rootCmd's flags, so a package-level
// initializer would be an initialization cycle.
var rootCmd *cobra.Command

// loadFileConfig reads the TOML config file. An explicit --config path must
// exist; the default location may be absent.
func loadFileConfig() (*config.Config, error) {
	if rootFlags.Config != "" {
		return config.Load(rootFlags.Config)
	}
	return config.LoadDefault()
}

// resolveLogConfig applies the precedence flags > environment > config
// file > built-in defaults.
func resolveLogConfig() logger.Config {
	cfg := logger.DefaultConfig()
	if rootConfig.Log.Level != "" && os.Getenv("LOG_LEVEL") == "" {
		cfg.Level = rootConfig.Log.Level
	}
	if rootConfig.Log.Format != "" && os.Getenv("LOG_FORMAT") == "" {
		cfg.Format = rootConfig.Log.Format
	}
	if rootCmd.PersistentFlags().Changed("log-level") {
		cfg.Level = rootFlags.LogLevel
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		cfg.Format = rootFlags.LogFormat
	}
	return cfg
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd = &cobra.Command{
		Use:     "prospectval",
		Short:   "Prospectval validates company websites for lead qualification",
		Version: version,
		Long: `A command-line tool for evaluating company websites against a battery of
heuristic checks: reachability, content legitimacy, on-page SEO quality,
contact information, and organizational maturity signals. Each URL gets a
per-check score and a weighted overall pass/fail verdict.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			fileCfg, err := loadFileConfig()
			if err != nil {
				return err
			}
			rootConfig = fileCfg
			rootLogger = logger.NewLogger(resolveLogConfig())
			logger.SetDefault(rootLogger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&rootFlags.LogLevel, "log-level", "info", "Log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&rootFlags.LogFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&rootFlags.Config, "config", "", "Path to TOML config file (default $XDG_CONFIG_HOME/prospectval/config.toml)")

	rootCmd.AddGroup(&cobra.Group{ID: "validation", Title: "Validation Commands:"})

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deployCmd)
}
