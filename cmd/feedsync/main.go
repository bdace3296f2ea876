// Command feedsync runs one catalog synchronization pass and prints the
// resulting status as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/bootstrap"
	"github.com/storefront/backend/internal/domain/feedsync"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		tenant     string
		logLevel   string
	)
	flag.StringVar(&configPath, "config", "", "Path to a TOML config file (default: ./config.toml and environment)")
	flag.StringVar(&tenant, "tenant", "", "Only sync the tenant with this ID")
	flag.StringVar(&logLevel, "log-level", "", "Override the configured log level")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	// stdout carries the status document
	if cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}

	req := feedsync.RunRequest{Trigger: feedsync.TriggerManual}
	if tenant != "" {
		id, err := uuid.Parse(tenant)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid tenant ID %q: %v\n", tenant, err)
			return 2
		}
		req.TenantID = &id
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := bootstrap.SetupTelemetry(ctx, cfg.Telemetry, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		return 1
	}
	defer func() {
		_ = tel.Shutdown(context.Background())
	}()

	log, err := bootstrap.NewLogger(cfg.Log, tel.Logs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	db, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	service, err := bootstrap.NewFeedSyncService(cfg.FeedSync, db.DB, tel.Meter.Meter(bootstrap.MeterName), log)
	if err != nil {
		log.Error("Failed to initialize feed sync", zap.Error(err))
		return 1
	}

	runErr := service.Run(ctx, req)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(service.Status()); err != nil {
		log.Error("Failed to write status", zap.Error(err))
		return 1
	}

	if runErr != nil {
		log.Error("Sync failed", zap.Error(runErr))
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}
