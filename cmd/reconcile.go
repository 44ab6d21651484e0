package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/bottemplate/services"
)

var (
	reconcileUsers       []string
	reconcileConcurrency int
	reconcileUpload      bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare cached balances with the ledger and report mismatches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]snowflake.ID, 0, len(reconcileUsers))
		for _, raw := range reconcileUsers {
			id, err := snowflake.Parse(raw)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", raw, err)
			}
			ids = append(ids, id)
		}

		ctx := cmd.Context()
		db, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		engine, store, err := newEngine(db)
		if err != nil {
			return err
		}

		report, err := services.Sweep(ctx, engine, store, ids, reconcileConcurrency)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err = enc.Encode(report); err != nil {
			return err
		}

		if reconcileUpload {
			if !cfg.Spaces.Enabled() {
				return fmt.Errorf("--upload needs spaces.key, spaces.secret and spaces.bucket")
			}
			client, err := services.NewSpacesClient(ctx, cfg.Spaces.Key, cfg.Spaces.Secret, cfg.Spaces.Region, cfg.Spaces.Endpoint)
			if err != nil {
				return err
			}
			key, err := services.NewReportSink(client, cfg.Spaces.Bucket, cfg.Spaces.ReportPrefix).UploadWithTimeout(ctx, report)
			if err != nil {
				return err
			}
			slog.Info("Reconciliation report uploaded", slog.String("key", key))
		}

		if !report.Balanced() {
			return fmt.Errorf("%d of %d users out of balance", len(report.Mismatches), report.Checked)
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringSliceVar(&reconcileUsers, "user", nil, "only reconcile these user ids")
	reconcileCmd.Flags().IntVar(&reconcileConcurrency, "concurrency", config.ReconcileConcurrency, "concurrent checks")
	reconcileCmd.Flags().BoolVar(&reconcileUpload, "upload", false, "upload the report to Spaces")
	rootCmd.AddCommand(reconcileCmd)
}
