// Package cmd implements the stencil-engine command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stencil-engine/pkg/config"
	"github.com/stencil-engine/pkg/pprof"
	"github.com/stencil-engine/pkg/telemetry"
	"github.com/stencil-engine/pkg/utils"
)

var (
	// Global flags.
	verbose    bool
	configPath string

	// Pprof flags.
	pprofEnabled bool
	pprofMode    string
	pprofDir     string
	pprofAddr    string

	logger         utils.Logger
	cfg            *config.Config
	pprofCollector *pprof.Collector
	otelShutdown   telemetry.ShutdownFunc
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "stencil-engine",
	Short: "A cache-oblivious parallel stencil execution engine",
	Long: `stencil-engine runs stencil computations with a cache-oblivious
trapezoidal decomposition: the space-time iteration domain is cut
recursively into trapezoids that fit in cache, and independent
sub-regions execute on concurrent tasks while the data-dependence
order of the stencil shape is preserved.

Sample stencils (shift, diffusion, life, heat, kleinshift) are built
in; run them directly, benchmark them, or record and replay execution
plans.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		otelShutdown, err = telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("telemetry init failed: %v", err)
			otelShutdown = nil
		}

		if pprofEnabled {
			collector, err := pprof.NewCollector(pprof.Config{
				Mode:      pprof.Mode(pprofMode),
				OutputDir: pprofDir,
				Addr:      pprofAddr,
			})
			if err != nil {
				return err
			}
			if err := collector.Start(); err != nil {
				return err
			}
			pprofCollector = collector
			logger.Info("pprof collection started (mode: %s)", pprofMode)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofCollector != nil {
			if err := pprofCollector.Stop(); err != nil {
				logger.Warn("failed to stop pprof collector: %v", err)
			} else {
				logger.Info("pprof data saved to: %s", pprofCollector.OutputDir())
			}
			pprofCollector = nil
		}
		if otelShutdown != nil {
			if err := otelShutdown(context.Background()); err != nil {
				logger.Warn("telemetry shutdown failed: %v", err)
			}
			otelShutdown = nil
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// BinName returns the binary's base name for help texts.
func BinName() string {
	return filepath.Base(os.Args[0])
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.PersistentFlags().BoolVar(&pprofEnabled, "pprof", false, "collect runtime profiles")
	rootCmd.PersistentFlags().StringVar(&pprofMode, "pprof-mode", string(pprof.ModeFile), "pprof mode: file or http")
	rootCmd.PersistentFlags().StringVar(&pprofDir, "pprof-dir", "./pprof", "directory for profile files")
	rootCmd.PersistentFlags().StringVar(&pprofAddr, "pprof-addr", "localhost:6060", "address for the http pprof endpoint")
}
