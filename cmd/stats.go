package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roomstager-app/roomstager/internal/config"
	"github.com/roomstager-app/roomstager/internal/stats"
	"github.com/roomstager-app/roomstager/internal/storage"
)

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Inspect and export visit and trial usage data",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	openStore := func() (*storage.Store, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return storage.Open(cfg.DatabasePath())
	}

	var (
		outputDir string
		format    string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export visits and trial usage counters to files",
		Long: `Exports the visits log and per-client trial usage counters from the
server database to Parquet or JSONL files for offline analysis.`,
		Example: `  # Export to Parquet files under ./stats
  roomstager stats export

  # Export JSONL from a specific database
  roomstager stats export --config config.yaml --format jsonl --output /tmp/export`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if err := stats.Export(store, outputDir, format); err != nil {
				return err
			}
			slog.Info("Stats exported", "dir", outputDir, "format", format)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", "stats", "Directory to write export files to")
	exportCmd.Flags().StringVarP(&format, "format", "f", "parquet", "Export format (parquet or jsonl)")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print headline usage counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			sum, err := stats.Summarize(store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Visits:        %d\n", sum.Visits)
			fmt.Fprintf(cmd.OutOrStdout(), "Trial clients: %d\n", sum.TrialClients)
			fmt.Fprintf(cmd.OutOrStdout(), "Generations:   %d\n", sum.Generations)
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog items: %d\n", sum.CatalogItems)
			return nil
		},
	}

	cmd.AddCommand(exportCmd, summaryCmd)
	return cmd
}
