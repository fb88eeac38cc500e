package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhymeswithjazz/installer-archive/app/api"
	"github.com/rhymeswithjazz/installer-archive/app/cfg"
	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/fetch"
	"github.com/rhymeswithjazz/installer-archive/app/source"
	"github.com/rhymeswithjazz/installer-archive/app/tasks"
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
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting Installer Archive", "version", appCfg.Version)

	profile, err := source.Load(appCfg.SourceProfile)
	if err != nil {
		slog.Error("Failed to load source profile", "path", appCfg.SourceProfile, "error", err)
		os.Exit(1)
	}
	slog.Info("Source profile loaded", "name", profile.Name, "archive_url", profile.ArchiveURL)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	issueRepo := database.NewIssueRepository(db)
	recRepo := database.NewRecommendationRepository(db)
	tagRepo := database.NewTagRepository(db)

	fetcher := fetch.NewClient(appCfg.UserAgent,
		time.Duration(appCfg.FetchTimeout)*time.Second,
		time.Duration(appCfg.PolitenessDelay)*time.Second,
		appCfg.RespectRobots)

	scheduler := tasks.NewScheduler(profile, fetcher, issueRepo, recRepo)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(profile, fetcher, issueRepo, recRepo, tagRepo)
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
		slog.Info("HTTP server listening", "port", appCfg.Port,
			"admin_api", appCfg.APIAccessKey != "")
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

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
