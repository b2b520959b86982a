// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clinsight/internal/ai"
	"github.com/clinsight/internal/config"
	"github.com/clinsight/internal/extractor"
	"github.com/clinsight/internal/history"
	"github.com/clinsight/internal/logger"
	"github.com/clinsight/internal/notify"
	"github.com/clinsight/internal/pipeline"
	"github.com/clinsight/internal/report"
	"github.com/clinsight/internal/server"
	"github.com/clinsight/internal/server/middleware"
	"github.com/clinsight/internal/watcher"
)

const teamName = "博扶AI创意组"

var (
	configPath = flag.String("config", "", "Path to YAML config file (optional)")
	httpPort   = flag.Int("http-port", 0, "HTTP server port (overrides config)")
)

func main() {
	flag.Parse()

	// Local .env holds the API key in development. Missing file is fine.
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *httpPort != 0 {
		cfg.HTTPPort = *httpPort
	}

	if _, err := logger.Init(cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.GetDefault().Close()

	if cfg.Model.APIKey == "" {
		logger.Warnf("no API key configured, analysis requests will fail (set DEEPSEEK_API_KEY)")
	}

	store := history.NewStore(cfg.Storage.HistoryFile, cfg.Limits.RetentionDays)
	store.Load()

	modelClient := ai.NewClient(
		cfg.Model.APIKey,
		cfg.Model.BaseURL,
		cfg.Model.Name,
		cfg.Model.MaxTokens,
		cfg.Model.RequestTimeout,
		ai.WithRetryPolicy(ai.RetryPolicy{MaxAttempts: cfg.Model.MaxAttempts, MinDelay: 4 * time.Second, MaxDelay: 10 * time.Second}),
		ai.WithOnRetry(func(attempt int, err error) {
			logger.Warnf("model call attempt %d failed, retrying: %v", attempt, err)
		}),
	)

	// The logo is optional; decks render a text-only cover without it.
	var logo []byte
	if cfg.Storage.LogoPath != "" {
		logo, err = os.ReadFile(cfg.Storage.LogoPath)
		if err != nil {
			logger.Warnf("logo not loaded from %s: %v", cfg.Storage.LogoPath, err)
			logo = nil
		}
	}

	processor := pipeline.NewProcessor(pipeline.Config{
		MaxFileSize:   cfg.Limits.MaxFileSize,
		MaxBatchFiles: cfg.Limits.MaxBatchFiles,
		CacheEntries:  cfg.Limits.CacheEntries,
		AnalysisChars: cfg.Limits.AnalysisChars,
		UploadDir:     cfg.Storage.UploadDir,
	}, extractor.New(), modelClient, report.NewMaterializer(teamName, logo), store)

	// Optional watch-directory intake alongside browser uploads.
	watchCtx, watchCancel := context.WithCancel(context.Background())
	if cfg.Storage.WatchDir != "" {
		w := watcher.New(cfg.Storage.WatchDir, processor, notify.Desktop)
		go func() {
			if err := w.Run(watchCtx); err != nil && err != context.Canceled {
				logger.Errorf("watcher stopped: %v", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: routes(cfg, processor, store),
	}

	go func() {
		logger.Printf("HTTP server listening on %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	waitForShutdown(httpServer, watchCancel)
}

func routes(cfg *config.Config, processor *pipeline.Processor, store *history.Store) http.Handler {
	mux := http.NewServeMux()

	staticPath, _ := filepath.Abs(cfg.StaticDir)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticPath))))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(cfg.TemplateDir, "index.html"))
	})

	progress := server.NewProgressHub()
	uploadHandler := server.NewUploadHandler(processor, progress, cfg.Limits.MaxFileSize, notify.Desktop)
	historyHandler := server.NewHistoryHandler(store)
	adminHandler := server.NewAdminHandler(cfg.Storage.UploadDir)

	mux.HandleFunc("/api/v1/upload", uploadHandler.HandleUpload)
	mux.HandleFunc("/api/v1/history", historyHandler.HandleCollection)
	mux.HandleFunc("/api/v1/history/", historyHandler.HandleRecord)
	mux.HandleFunc("/api/v1/admin/clear-uploads", adminHandler.HandleClearUploads)
	mux.HandleFunc("/api/v1/health", server.HandleHealth)
	mux.HandleFunc("/api/v1/logs", server.HandleLogStream)
	mux.HandleFunc("/api/v1/progress", progress.HandleProgress)

	return middleware.TrafficLogger(mux)
}

func waitForShutdown(httpServer *http.Server, watchCancel context.CancelFunc) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Printf("Shutting down server...")

	watchCancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP shutdown error: %v", err)
	}
}
