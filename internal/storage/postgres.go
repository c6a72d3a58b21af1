package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/zhouzirui/hypercar-hub/backend/internal/model/car"
)

const createCarsTable = `CREATE TABLE IF NOT EXISTS cars (
	position    INTEGER PRIMARY KEY,
	id          TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	brand       TEXT NOT NULL,
	price       DOUBLE PRECISION NOT NULL,
	image_url   TEXT NOT NULL
)`

var carColumns = []string{"position", "id", "name", "description", "brand", "price", "image_url"}

// PostgresStore keeps the collection in a single table, one row per car, with
// an explicit position column carrying insertion order.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore wraps an existing pool. Call Migrate before first use.
func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{pool: pool, logger: logger}
}

// OpenPostgres dials databaseURL, verifies the connection and ensures the
// cars table exists.
func OpenPostgres(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := NewPostgresStore(pool, logger)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	store.logger.Info("postgres car store ready", zap.Int32("max_connections", cfg.MaxConns))
	return store, nil
}

// Migrate creates the cars table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createCarsTable); err != nil {
		return fmt.Errorf("failed to create cars table: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Load returns every row ordered by position.
func (s *PostgresStore) Load(ctx context.Context) ([]car.Car, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, description, brand, price, image_url FROM cars ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("query cars: %w", err)
	}

	cars, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (car.Car, error) {
		var c car.Car
		err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Brand, &c.Price, &c.ImageURL)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan cars: %w", err)
	}
	if cars == nil {
		cars = []car.Car{}
	}
	return cars, nil
}

// Save swaps the table contents for cars inside a single transaction.
func (s *PostgresStore) Save(ctx context.Context, cars []car.Car) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin car snapshot: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, "DELETE FROM cars"); err != nil {
		return fmt.Errorf("clear cars: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"cars"}, carColumns,
		pgx.CopyFromSlice(len(cars), func(i int) ([]any, error) {
			c := cars[i]
			return []any{i, c.ID, c.Name, c.Description, c.Brand, c.Price, c.ImageURL}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy cars: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit car snapshot: %w", err)
	}
	s.logger.Debug("car snapshot saved", zap.Int("count", len(cars)))
	return nil
}
