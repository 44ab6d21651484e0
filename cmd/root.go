// Package cmd is the progression command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/progression/bottemplate"
	"github.com/ellavondegurechaff/progression/bottemplate/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	configPath string
	cfg        *bottemplate.Config
)

var rootCmd = &cobra.Command{
	Use:           "progression",
	Short:         "Quests, daily streaks, the lottery wheel and the coin ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = bottemplate.LoadConfig(configPath); err != nil {
			return err
		}
		logger.Setup(cfg.Log.Level, cfg.Log.AddSource)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to config")
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
