package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	_ "odoo-exporter/docs"
	"odoo-exporter/internal/api"
	"odoo-exporter/internal/api/handler"
	"odoo-exporter/internal/config"
	"odoo-exporter/internal/filters"
	"odoo-exporter/internal/pipeline"
	"odoo-exporter/internal/store"
	"odoo-exporter/pkg/router"
	"odoo-exporter/pkg/utils"
)

// @title Odoo Exporter API
// @version 1.0
// @description Exports Odoo records to spreadsheets with relational fields resolved to labels.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	configPath := flag.String("config", "", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	if err := store.InitDB(cfg.DatabasePath); err != nil {
		log.Fatalf("❌ Failed to open job history %s: %v", cfg.DatabasePath, err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	savedFilters, err := filters.Open(ctx, cfg.Filters)
	if err != nil {
		log.Fatalf("❌ Failed to open filter store: %v", err)
	}
	defer savedFilters.Close()

	output := utils.NewOutputManager(cfg.Export.DownloadDir)
	runner := pipeline.NewRunner(cfg.PipelineOptions(), pipeline.OdooConnector(cfg.Odoo.CallTimeout), output, store.Recorder{})

	r := router.New()
	api.RegisterRoutes(r, handler.New(runner, savedFilters, output))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      c.Handler(r.Handler()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		log.Printf("🛑 Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️ Shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Server started on http://localhost%s (filters: %s, downloads: %s)",
		cfg.Server.Addr, cfg.Filters.Backend, output.BaseOutputDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("❌ %v", err)
	}
}
