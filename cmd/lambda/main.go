package main

import (
	"context"
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/zhouzirui/hypercar-hub/backend/internal/config"
	"github.com/zhouzirui/hypercar-hub/backend/internal/handler"
	"github.com/zhouzirui/hypercar-hub/backend/internal/lambda"
	"github.com/zhouzirui/hypercar-hub/backend/internal/logging"
	carService "github.com/zhouzirui/hypercar-hub/backend/internal/service/car"
	"github.com/zhouzirui/hypercar-hub/backend/internal/storage"
)

// The change feed needs long-lived connections, which API Gateway HTTP APIs
// do not offer, so no hub is attached here.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	zap.ReplaceGlobals(logger)

	// The store outlives every invocation in a warm container.
	store, _, err := storage.Open(context.Background(), cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open car store", zap.Error(err))
	}

	carSvc := carService.NewService(store,
		carService.WithLogger(logger.Named("cars")),
		carService.WithSerializedWrites(cfg.Storage.SerializeWrites),
	)
	router := handler.NewRouter(carSvc, handler.Options{
		Logger:         logger.Named("http"),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	logger.Info("HyperCar-Hub API Lambda handler initialized", zap.String("store", cfg.Storage.Driver))
	awslambda.Start(lambda.NewAdapter(router).Proxy)
}
