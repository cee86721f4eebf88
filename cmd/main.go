package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/saptono/wicara/adapters/audio"
	"github.com/saptono/wicara/adapters/convai"
	"github.com/saptono/wicara/internal/api"
	"github.com/saptono/wicara/internal/config"
	"github.com/saptono/wicara/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize adapters
	dialer, err := convai.NewDialer(cfg.ElevenLabs, logger)
	if err != nil {
		logger.Fatal("Failed to create conversation dialer", zap.Error(err))
	}
	microphone := audio.NewFFMPEGMicrophone(cfg.Audio.CaptureCommand, logger)
	player := audio.NewFFPlayPlayer(
		cfg.Audio.PlaybackCommand,
		cfg.Audio.PlaybackFormat,
		cfg.Audio.SampleRate,
		cfg.Audio.Channels,
		logger,
	)

	// Initialize the session controller
	controller := usecase.NewSessionController(dialer, microphone, player, logger, usecase.Config{
		Stream:    cfg.StreamConfig(),
		Capture:   cfg.CaptureConfig(),
		ChunkSize: cfg.Audio.ChunkSize,
	})

	// Initialize API routes
	api.InitRoutes(e, controller, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Voice client started", zap.String("port", cfg.Server.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	if err := controller.Stop(); err != nil {
		logger.Warn("Failed to stop session cleanly", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
