package cmd

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the effective reward catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the catalog in the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		// LoadConfig already rejected an invalid catalog.
		fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d quests, %d daily tiers, %d wheel segments\n",
			len(cfg.Catalog.Quests), len(cfg.Catalog.DailyRewards), len(cfg.Catalog.Wheel))
		return nil
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the effective catalog as a TOML [catalog] section",
	RunE: func(cmd *cobra.Command, args []string) error {
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(struct {
			Catalog *rewards.Catalog `toml:"catalog"`
		}{cfg.Catalog})
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}
