package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/roomstager-app/roomstager/internal/analysis"
	"github.com/roomstager-app/roomstager/internal/compose"
	"github.com/roomstager-app/roomstager/internal/config"
	"github.com/roomstager-app/roomstager/internal/genclient"
	"github.com/roomstager-app/roomstager/internal/handlers"
	"github.com/roomstager-app/roomstager/internal/hosting"
	"github.com/roomstager-app/roomstager/internal/quota"
	"github.com/roomstager-app/roomstager/internal/recommend"
	"github.com/roomstager-app/roomstager/internal/segment"
	"github.com/roomstager-app/roomstager/internal/storage"
	"github.com/roomstager-app/roomstager/internal/vision"
	"github.com/roomstager-app/roomstager/internal/vision/gemini"
	"github.com/roomstager-app/roomstager/internal/vision/openai"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the staging API server",
		Long: `Starts the Roomstager HTTP API.

The API accepts room and furniture photo uploads, runs vision-based
placement analysis, and composes result images through the configured
backend (generative or pixel composite).`,
		Example: `  # Start server with defaults (:8080, generative backend)
  roomstager serve

  # Start server with a config file
  roomstager serve --config config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirs(); err != nil {
				return err
			}

			store, err := storage.Open(cfg.DatabasePath())
			if err != nil {
				return err
			}

			handler, err := buildHandler(cfg, store)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.HandleFunc("/api/upload/room", handler.LogVisit(handler.HandleUploadRoom))
			mux.HandleFunc("/api/upload/furniture", handler.LogVisit(handler.HandleUploadFurniture))
			mux.HandleFunc("/api/generate", handler.LogVisit(handler.HandleGenerate))
			mux.HandleFunc("/api/room/scan", handler.LogVisit(handler.HandleScanRoom))
			mux.HandleFunc("/api/catalog", handler.LogVisit(handler.HandleCatalog))
			mux.HandleFunc("/api/catalog/", handler.LogVisit(handler.HandleCatalogItem))
			mux.HandleFunc("/api/recommendations", handler.LogVisit(handler.HandleRecommendations))
			mux.HandleFunc("/api/visits", handler.HandleVisits)
			mux.HandleFunc("/api/health", handler.HandleHealth)
			mux.HandleFunc("/results/", handler.ServeResults)
			mux.HandleFunc("/uploads/", handler.ServeUploads)
			mux.HandleFunc("/catalog/", handler.ServeCatalog)

			server := &http.Server{
				Addr:    cfg.Addr,
				Handler: mux,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Roomstager API available", "addr", cfg.Addr, "backend", cfg.Backend, "provider", cfg.Provider)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	return cmd
}

func buildHandler(cfg config.Config, store *storage.Store) (*handlers.Handler, error) {
	var client vision.Client
	switch cfg.Provider {
	case "openai":
		client = openai.New()
	case "gemini":
		client = gemini.New()
	default:
		return nil, fmt.Errorf("unknown vision provider %q", cfg.Provider)
	}

	model := cfg.Model
	if model == "" {
		model = vision.DefaultModel(cfg.Provider)
	}

	var backend compose.Backend
	switch cfg.Backend {
	case "pixel":
		backend = compose.PixelComposite{}
	default:
		gen := genclient.New()
		backend = compose.NewGenerative(gen, hosting.NewUploader(), gen.Model)
	}

	return handlers.New(handlers.Config{
		Store:       store,
		Analyzer:    analysis.New(client, model),
		Dispatcher:  compose.NewDispatcher(backend, "/results"),
		Guard:       quota.NewGuard(store, cfg.TrialLimit),
		Remover:     segment.New(),
		Recommender: recommend.New(client, model),
		UploadsDir:  cfg.UploadsDir(),
		ResultsDir:  cfg.ResultsDir(),
		CatalogDir:  cfg.CatalogDir(),
	}), nil
}
