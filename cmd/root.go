package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/sg/dynamic"
	"github.com/gnolang/sg/internal/config"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger   *zap.Logger
	registry *dynamic.Registry
)

var rootCmd = &cobra.Command{
	Use:          "sg",
	Short:        "sg - structural rewrite over tree-sitter grammars",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogger(); err != nil {
			return err
		}
		reg, err := loadRegistry(logger, cfgFile)
		if err != nil {
			return err
		}
		registry = reg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to the configuration file (default ./"+config.DefaultFileName+" when present)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for scanning")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(langCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(scanCmd)
}

func setupLogger() error {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// loadRegistry registers the custom languages of the configuration at path.
// Grammars that fail to load are logged and left out; invalid declarations
// are fatal.
func loadRegistry(logger *zap.Logger, path string) (*dynamic.Registry, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	reg, err := cfg.NewRegistry(logger)
	if reg == nil {
		return nil, err
	}
	if err != nil {
		logger.Warn("Some custom languages are unavailable", zap.Error(err))
	}
	return reg, nil
}
