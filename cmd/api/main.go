package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/hypercar-hub/backend/internal/config"
	"github.com/zhouzirui/hypercar-hub/backend/internal/handler"
	"github.com/zhouzirui/hypercar-hub/backend/internal/logging"
	carService "github.com/zhouzirui/hypercar-hub/backend/internal/service/car"
	eventService "github.com/zhouzirui/hypercar-hub/backend/internal/service/events"
	"github.com/zhouzirui/hypercar-hub/backend/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("hypercar-hub: %v", err)
	}
}

// run owns every deferred cleanup so that main only exits once they have run.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file loaded, using system environment only", zap.Error(envErr))
	}

	store, closeStore, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open car store", zap.Error(err))
		return err
	}
	defer closeStore()

	opts := []carService.Option{
		carService.WithLogger(logger.Named("cars")),
		carService.WithSerializedWrites(cfg.Storage.SerializeWrites),
	}

	var hub *eventService.Hub
	if cfg.Events.Enabled {
		hub = eventService.NewHub(0)
		opts = append(opts, carService.WithPublisher(hub))
		logger.Info("car change feed enabled")
	}

	carSvc := carService.NewService(store, opts...)

	router := handler.NewRouter(carSvc, handler.Options{
		Logger:         logger.Named("http"),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Hub:            hub,
	})

	return startServer(ctx, logger, cfg.Server, router)
}

func startServer(ctx context.Context, logger *zap.Logger, serverCfg config.ServerConfig, router http.Handler) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("HyperCar-Hub API listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", zap.Error(err))
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
