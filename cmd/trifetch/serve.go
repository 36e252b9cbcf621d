package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trifetch/trifetch/internal/common"
	"github.com/trifetch/trifetch/internal/engine"
	"github.com/trifetch/trifetch/internal/render"
	"github.com/trifetch/trifetch/internal/server"
	"github.com/trifetch/trifetch/internal/service"
	"github.com/trifetch/trifetch/internal/storage"
	"github.com/trifetch/trifetch/internal/vision"
	"github.com/trifetch/trifetch/internal/waveform"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the patient/episode/event browsing API",
		Long: `Start the HTTP API over a preprocessed dataset. Event-detail requests
downsample the stored trace for display and classify the full-resolution
waveform through the configured vision service; when that service is
unreachable the event's own ground-truth label is returned at reduced
confidence instead of an error.`,
		RunE: runServe,
	}

	cmd.Flags().String("host", "", "bind address (overrides server.host)")
	cmd.Flags().Int("port", 0, "listen port (overrides server.port)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	spec := specFromConfig()
	if err := spec.Validate(); err != nil {
		return err
	}

	factor := viper.GetInt("ecg.downsample_factor")

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

	visionCfg := visionConfigFromViper()
	var client service.VisionClient
	client, err = vision.NewClient(visionCfg)
	if err != nil {
		// Serve anyway: every classification takes the fallback path.
		slog.Warn("vision service not configured, running in fallback-only mode", "error", err)
		client = vision.Unavailable{Reason: fmt.Errorf("%w: %v", common.ErrClassificationUnavailable, err)}
	}

	classifier := vision.NewClassifier(client, visionCfg, vision.BuildPrompt(spec.Duration()), slog.Default())
	renderer := render.NewRenderer(render.DefaultStyle())

	eng, err := engine.New(spec, factor, store, files, renderer, classifier, slog.Default())
	if err != nil {
		return err
	}

	srv := server.New(store, eng, slog.Default())

	host := viper.GetString("server.host")
	if flagHost, _ := cmd.Flags().GetString("host"); flagHost != "" {
		host = flagHost
	}
	port := viper.GetInt("server.port")
	if flagPort, _ := cmd.Flags().GetInt("port"); flagPort != 0 {
		port = flagPort
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down cleanly: %w", err)
		}
		return nil
	}
}
