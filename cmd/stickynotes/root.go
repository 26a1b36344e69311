package main

import (
	"fmt"
	"os"
	"stickynotes/internal/config"
	"stickynotes/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg      *config.Config
	zlog     *zap.Logger
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stickynotes",
	Short: "A multi-user sticky notes web application",
	Long: `Sticky Notes lets users sign up, log in and keep short personal notes.
Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		zlog, err = logger.New(cfg.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zlog != nil {
			_ = zlog.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}
