package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"gotube/internal/health"
	"gotube/internal/wire"
)

const healthInterval = 15 * time.Second

func main() {
	app, cleanup, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	if err := run(app); err != nil {
		app.Logger.Error("server stopped with error", zap.Error(err))
	}
}

func run(app *wire.Application) error {
	logger := app.Logger
	cfg := app.Config.Server

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        setupRouter(app),
		ReadTimeout:    time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(health.UnaryLogger(logger)))
	app.Health.Register(grpcServer)
	listener, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen on grpc port %s: %w", cfg.GRPCPort, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("gRPC health server starting", zap.String("addr", listener.Addr().String()))
		return grpcServer.Serve(listener)
	})
	g.Go(func() error {
		app.Reconciler.Start(gctx)
		return nil
	})
	g.Go(func() error {
		app.Health.Run(gctx, healthInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		grpcServer.GracefulStop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.Info("server gracefully stopped")
		return nil
	})
	return g.Wait()
}
