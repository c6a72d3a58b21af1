// Package storage holds the durable car.Store implementations.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/hypercar-hub/backend/internal/config"
	"github.com/zhouzirui/hypercar-hub/backend/internal/model/car"
)

// Open builds the Store selected by cfg.Driver. The returned close func is
// always non-nil.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (car.Store, func(), error) {
	noop := func() {}

	switch cfg.Driver {
	case config.DriverFile, "":
		logger.Info("using file car store", zap.String("path", cfg.FilePath))
		return NewFileStore(cfg.FilePath), noop, nil
	case config.DriverMemory:
		logger.Warn("using in-memory car store, data is lost on exit")
		return car.NewMemoryStore(nil), noop, nil
	case config.DriverPostgres:
		store, err := OpenPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown car store driver %q", cfg.Driver)
	}
}
