package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/bootstrap"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

//	@title			Storefront Backend API
//	@version		1.0
//	@description	Catalog feed synchronization API
//	@BasePath		/api/v1

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Bootstrap logger until the telemetry log bridge is up
	bootLog, err := bootstrap.NewLogger(cfg.Log, nil)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	tel, err := bootstrap.SetupTelemetry(context.Background(), cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	log, err := bootstrap.NewLogger(cfg.Log, tel.Logs)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Storefront Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	syncService, err := bootstrap.NewFeedSyncService(cfg.FeedSync, db.DB, tel.Meter.Meter(bootstrap.MeterName), log)
	if err != nil {
		log.Fatal("Failed to initialize feed sync", zap.Error(err))
	}
	log.Info("Feed sources loaded", zap.Int("count", len(syncService.Sources())))

	syncScheduler, err := bootstrap.NewFeedSyncScheduler(cfg.FeedSync, syncService, log)
	if err != nil {
		log.Fatal("Failed to initialize feed sync scheduler", zap.Error(err))
	}
	if err := syncScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start feed sync scheduler", zap.Error(err))
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. Tracing - root span per request
	// 2. Logger - request ID and access log
	// 3. SpanEnricher - needs the request ID
	// 4. Recovery - catch panics
	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = tel.Tracer.IsEnabled()
	engine.Use(middleware.Tracing(tracingCfg))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.Recovery(log))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, db)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewFeedSyncHandler(syncScheduler, log)).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := syncScheduler.Stop(ctx); err != nil {
		log.Error("Error stopping feed sync scheduler", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := tel.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
