// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/infrastructure/database/postgres"
	"github.com/sweetcrumbs/bakery-backend/internal/infrastructure/database/redis"
	httpserver "github.com/sweetcrumbs/bakery-backend/internal/interfaces/http"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	configureLogger(logger, cfg)

	logger.WithFields(logrus.Fields{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting bakery backend")

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	migration := postgres.NewMigration(db, cfg, logger)
	if err := migration.RunAutoMigrations(); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	if cfg.IsDevelopment() {
		if err := migration.Seed(); err != nil {
			logger.WithError(err).Warn("Data seeding failed")
		}
	}

	server := httpserver.NewServer(cfg, db, redisClient.Redis, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logger.Info("Server shutdown completed")
}

func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}
