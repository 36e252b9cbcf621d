package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trifetch/trifetch/internal/preprocess"
	"github.com/trifetch/trifetch/internal/storage"
	"github.com/trifetch/trifetch/internal/waveform"
)

func preprocessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preprocess [raw-dir]",
		Short: "Assemble raw ECG recordings into the processed store",
		Long: `Walk a raw dataset directory for event recordings (three segment .txt
files plus an event_*.json metadata record per event folder), assemble each
event's segments into one full-resolution trace, and record it in the
manifest.

The batch is restartable: events already present in the manifest with an
intact trace file are skipped, so re-running over the same data is a no-op.

Examples:
  # Process a raw dataset
  trifetch preprocess ~/datasets/trifetch-raw

  # Re-process everything from scratch with eight workers
  trifetch preprocess --rebuild --workers 8 ~/datasets/trifetch-raw`,
		Args: cobra.ExactArgs(1),
		RunE: runPreprocess,
	}

	cmd.Flags().IntP("workers", "w", 4, "concurrent event workers")
	cmd.Flags().Bool("rebuild", false, "re-process events that are already in the store")

	return cmd
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	rawDir := args[0]
	workers, _ := cmd.Flags().GetInt("workers")
	rebuild, _ := cmd.Flags().GetBool("rebuild")

	spec := specFromConfig()
	if err := spec.Validate(); err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(viper.GetString("data.db_path"))
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate manifest: %w", err)
	}

	files, err := waveform.NewFileStore(viper.GetString("data.ecg_dir"))
	if err != nil {
		return err
	}

	job, err := preprocess.NewJob(spec, store, files, slog.Default(),
		preprocess.WithWorkers(workers),
		preprocess.WithRebuild(rebuild))
	if err != nil {
		return err
	}

	summary, err := job.Run(cmd.Context(), rawDir)
	if err != nil {
		return fmt.Errorf("preprocessing aborted: %w", err)
	}

	fmt.Printf("Processed %d events (%d skipped, %d failed)\n",
		summary.Processed, summary.Skipped, summary.Failed)

	return nil
}
