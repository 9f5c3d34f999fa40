package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"distilled/internal/app"
	"distilled/internal/config"
	"distilled/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize app", zap.Error(err))
	}
	defer a.Close()

	if cfg.CronSecret == "" {
		logger.Log.Warn("CRON_SECRET is not set, every cron trigger will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Serve(ctx); err != nil {
		logger.Log.Fatal("Server error", zap.Error(err))
	}
}
