package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-push/app/api"
	"github.com/lysyi3m/rss-push/app/cfg"
	"github.com/lysyi3m/rss-push/app/database"
	"github.com/lysyi3m/rss-push/app/feed"
	"github.com/lysyi3m/rss-push/app/notify"
	"github.com/lysyi3m/rss-push/app/push"
	"github.com/lysyi3m/rss-push/app/render"
	"github.com/lysyi3m/rss-push/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting RSS Push server", "version", appCfg.Version)

	if err := os.MkdirAll(appCfg.DataDir, 0o755); err != nil {
		slog.Error("Failed to create data directory", "path", appCfg.DataDir, "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(filepath.Join(appCfg.DataDir, "rss-push.db"))
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	subRepo := database.NewSubscriptionRepository(db)
	deliveryRepo := database.NewDeliveryRepository(db)

	scratchDir := filepath.Join(appCfg.DataDir, "tmp")
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		slog.Error("Failed to create scratch directory", "path", scratchDir, "error", err)
		os.Exit(1)
	}
	renderer := render.NewRenderer(scratchDir, appCfg.ChromePath)
	defer renderer.Close()

	if appCfg.WebhookURL == "" {
		slog.Warn("WEBHOOK_URL not set, deliveries will fail until it is configured")
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}
	notifier := notify.NewWebhookNotifier(appCfg.WebhookURL, httpClient)

	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), appCfg.UserAgent)
	detector := feed.NewDetector(deliveryRepo)
	pusher := push.NewPusher(subRepo, deliveryRepo, fetcher, detector, renderer,
		notifier, httpClient, appCfg.UserAgent)

	scheduler := tasks.NewScheduler(pusher, time.Duration(appCfg.PushInterval)*time.Second,
		appCfg.SubscriptionsFile, func() tasks.TaskInterface {
			return tasks.NewSyncSubscriptionsTask(appCfg.SubscriptionsFile, subRepo)
		})
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(subRepo, deliveryRepo, pusher, renderer)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if appCfg.APIAccessKey == "" {
			slog.Warn("API_ACCESS_KEY not set, command and API endpoints are disabled")
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler, renderer and database are closed via defers
	slog.Info("Shutdown complete")
}
