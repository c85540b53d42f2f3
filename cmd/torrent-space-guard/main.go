package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/torrent-space-guard/internal/adapter/filesystem"
	"github.com/vertextoedge/torrent-space-guard/internal/adapter/qbittorrent"
	"github.com/vertextoedge/torrent-space-guard/internal/adapter/sqlite"
	"github.com/vertextoedge/torrent-space-guard/internal/config"
	"github.com/vertextoedge/torrent-space-guard/internal/domain"
	"github.com/vertextoedge/torrent-space-guard/internal/domain/event"
	"github.com/vertextoedge/torrent-space-guard/internal/logger"
	"github.com/vertextoedge/torrent-space-guard/internal/scheduler"
)

const version = "0.1.0"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zapLogger := logger.GetZapLogger()
	zapLogger.Info("starting torrent-space-guard",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Open the managed-pause ledger database
	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err), zap.String("path", cfg.Database.Path))
	}
	defer store.Close()

	// Monitored directories, shared across all downloaders
	dirs := make([]domain.MonitoredDirectory, 0, len(cfg.Directories))
	for _, d := range cfg.Directories {
		dirs = append(dirs, domain.MonitoredDirectory{
			Path:         d.Path,
			LowWatermark: d.LowWatermarkBytes(),
		})
	}

	// Connect to every configured downloader
	loginCtx, loginCancel := context.WithTimeout(context.Background(), cfg.Scheduler.GetCommandTimeout())
	defer loginCancel()

	downloaders := make([]scheduler.Downloader, 0, len(cfg.Downloaders))
	for _, dc := range cfg.Downloaders {
		client := qbittorrent.NewClient(qbittorrent.Config{
			Name:     dc.Name,
			URL:      dc.URL,
			Username: dc.Username,
			Password: dc.Password,
			Category: dc.Category,
			Timeout:  cfg.Scheduler.GetCommandTimeout(),
		})
		// An unreachable downloader is managed anyway: its cycles degrade to
		// skip-and-report until it comes back, and other downloaders are
		// unaffected.
		if err := client.Login(loginCtx); err != nil {
			zapLogger.Error("failed to login to downloader, will keep retrying per cycle",
				zap.String("downloader", dc.Name),
				zap.String("url", dc.URL),
				zap.Error(err))
		} else {
			zapLogger.Info("connected to downloader",
				zap.String("downloader", dc.Name),
				zap.String("url", dc.URL))
		}

		downloaders = append(downloaders, scheduler.Downloader{
			Client:         client,
			Directories:    dirs,
			MaxActive:      dc.MaxActive,
			MaxActiveBytes: dc.MaxActiveBytes(),
			ReleaseOrder:   cfg.Scheduler.ReleaseOrder,
			SmartSkip:      cfg.Scheduler.SmartSkip,
		})
	}

	// Create event dispatcher with logging
	dispatcher := event.NewInMemoryDispatcher(false)
	dispatcher.Subscribe(event.NewLoggingHandler(zapLogger))

	// Create scheduler service
	schedulerCfg := &scheduler.Config{
		TickInterval:   cfg.Scheduler.GetTickInterval(),
		CommandTimeout: cfg.Scheduler.GetCommandTimeout(),
	}
	schedulerService := scheduler.New(schedulerCfg, downloaders, filesystem.NewQuerier(), store, dispatcher, zapLogger)

	// An item-added notification runs an immediate cycle for its downloader
	dispatcher.Subscribe(schedulerService)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start scheduler
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := schedulerService.Start(ctx); err != nil && err != context.Canceled {
			zapLogger.Error("scheduler stopped with error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	zapLogger.Info("application started successfully",
		zap.Int("downloaders", len(downloaders)),
		zap.Int("directories", len(dirs)),
		zap.Duration("tick_interval", cfg.Scheduler.GetTickInterval()),
	)
	<-sigChan

	zapLogger.Info("shutdown signal received, stopping services...")

	// Cancel context to stop the scheduler
	cancel()
	schedulerService.Stop()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		zapLogger.Error("scheduler did not stop within timeout")
	}

	zapLogger.Info("application stopped successfully")
}
