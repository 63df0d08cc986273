package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/config"
)

// DB wraps the pooled mongo client and the gateway database handle.
// Established once per process and passed into the services; the driver
// handles its own internal synchronization and reconnects.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
	logger   *zap.Logger
}

// NewDB creates a new connection pool and verifies it with a ping.
func NewDB(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*DB, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(uint64(cfg.MaxPoolSize)).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("mongodb connection established",
		zap.String("database", cfg.Database))

	return &DB{
		client:   client,
		database: client.Database(cfg.Database),
		logger:   logger,
	}, nil
}

// Collection returns a handle to a named collection.
func (db *DB) Collection(name string) *mongo.Collection {
	return db.database.Collection(name)
}

// Close disconnects the underlying client.
func (db *DB) Close(ctx context.Context) error {
	db.logger.Info("closing mongodb connection")
	return db.client.Disconnect(ctx)
}

// HealthCheck performs a health check on the store.
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}
