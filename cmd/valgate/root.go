package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"valgate/internal/config"
	"valgate/internal/core/engine"
	"valgate/internal/pkg/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "valgate",
	Short: "Validation preprocessing gateway",
	Long:  `valgate runs JSON payloads through ordered preprocessing chains before validation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Init(cfgFile)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")
}

// runtime is what every subcommand needs once the config is loaded
type runtime struct {
	cfg    *config.Config
	log    *zap.Logger
	engine *engine.Engine
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewWithConfig(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	e, err := engine.NewEngine(&cfg.Engine, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	return &runtime{cfg: cfg, log: log, engine: e}, nil
}
