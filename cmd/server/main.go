package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fulfilhub/backend/internal/application/bolsync"
	"github.com/fulfilhub/backend/internal/infrastructure/auth"
	"github.com/fulfilhub/backend/internal/infrastructure/cache"
	"github.com/fulfilhub/backend/internal/infrastructure/config"
	"github.com/fulfilhub/backend/internal/infrastructure/logger"
	"github.com/fulfilhub/backend/internal/infrastructure/marketplace/bol"
	"github.com/fulfilhub/backend/internal/infrastructure/persistence"
	"github.com/fulfilhub/backend/internal/infrastructure/scheduler"
	"github.com/fulfilhub/backend/internal/interfaces/http/handler"
	"github.com/fulfilhub/backend/internal/interfaces/http/middleware"
	"github.com/fulfilhub/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, gormlogger.Warn))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	tokenCache, err := cache.NewTokenCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to create token cache", zap.Error(err))
	}

	bolClient, err := bol.NewClient(&bol.Config{
		TokenURL:   cfg.Bol.TokenURL,
		APIBaseURL: cfg.Bol.APIBaseURL,
		Timeout:    cfg.Bol.RequestTimeout,
		PageSize:   cfg.Bol.PageSize,
	}, tokenCache, log)
	if err != nil {
		log.Fatal("Failed to create bol client", zap.Error(err))
	}

	installationRepo := persistence.NewGormInstallationRepository(db.DB)
	integrationRepo := persistence.NewGormIntegrationRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	syncService := bolsync.NewService(integrationRepo, orderRepo, bolClient, log)
	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	handler.NewHealthHandler().RegisterRoutes(engine)

	router.NewRouter(engine,
		router.WithMiddleware(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			Logger:     log,
		})),
	).Register(handler.NewBolHandler(syncService, log)).Setup()

	var syncScheduler *scheduler.BolSyncScheduler
	if cfg.BolSync.Enabled {
		syncScheduler = scheduler.NewBolSyncScheduler(scheduler.BolSyncSchedulerConfig{
			Interval: cfg.BolSync.Interval(),
		}, syncService, installationRepo, log)
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
	} else {
		log.Info("Background order sync disabled")
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	log.Info("HTTP server listening", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if syncScheduler != nil {
		if err := syncScheduler.Stop(ctx); err != nil {
			log.Error("Failed to stop sync scheduler", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}
