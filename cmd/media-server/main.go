package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/config"
	"gotube/internal/dbmongo"
	"gotube/internal/media"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := common.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	mongoClient, err := dbmongo.NewMongoConnection(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Close(context.Background())

	storage := dbmongo.NewMediaStorage(mongoClient, cfg.Server.MediaBaseURL)
	server := &http.Server{
		Addr:    ":" + cfg.Server.MediaPort,
		Handler: media.NewHTTPServer(storage, logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("media server forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info("media server starting",
		zap.String("addr", server.Addr),
		zap.String("base_url", cfg.Server.MediaBaseURL),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("media server failed", zap.Error(err))
	}
}
