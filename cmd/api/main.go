package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-winery-scm/internal/config"
	"go-winery-scm/internal/metrics"
	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/internal/server"
	"go-winery-scm/internal/ws"
	"go-winery-scm/pkg/database"
	"go-winery-scm/pkg/logger"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger := logger.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(appLogger)

	// 2. Setup Database
	db, err := database.Connect(database.Options{
		Driver: cfg.DBDriver,
		DSN:    cfg.DSN(),
		Debug:  cfg.DBDebug,
	})
	if err != nil {
		appLogger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.Migrate(db, cfg.DBDriver, cfg.DBSQLMigrations, model.All()...); err != nil {
		appLogger.Error("migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Seed default privileges, roles, and admin user
	if err := repository.SeedDefaults(db, cfg.SeedAdminPassword); err != nil {
		appLogger.Error("seed defaults", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(appLogger)
	go wsHub.Run(ctx)

	// 5. Wire layers and routes
	app := server.New(server.Deps{
		Config:     cfg,
		DB:         db,
		Logger:     appLogger,
		Hub:        wsHub,
		Metrics:    metrics.New(),
		RequestLog: true,
	})

	// 6. Graceful Shutdown
	go func() {
		appLogger.Info("server starting", slog.String("port", cfg.Port), slog.String("env", cfg.AppEnv), slog.String("db", cfg.DBDriver))
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLogger.Error("server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("server forced to shutdown", slog.Any("error", err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	appLogger.Info("server exited")
}
