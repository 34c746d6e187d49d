package database

import (
	"context"
	"fmt"
	"time"

	"jogapp-api/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoConnection connects to the document store with exponential
// backoff, so the service survives the database coming up after it
func NewMongoConnection(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(time.Duration(cfg.ConnectTimeout) * time.Second)

	var client *mongo.Client

	connect := func() error {
		connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnectTimeout)*time.Second)
		defer cancel()

		c, err := mongo.Connect(connectCtx, opts)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := c.Ping(connectCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(connectCtx)
			return fmt.Errorf("failed to ping database: %w", err)
		}
		client = c
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = time.Duration(cfg.MaxConnectRetryTime) * time.Second

	if err := backoff.Retry(connect, backoff.WithContext(strategy, ctx)); err != nil {
		return nil, err
	}
	return client, nil
}

// HealthCheck verifies the connection is alive
func HealthCheck(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return fmt.Errorf("database client is nil")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Collections resolves the configured collection handles
func Collections(client *mongo.Client, cfg config.DatabaseConfig) (jogs, stats *mongo.Collection) {
	db := client.Database(cfg.Name)
	return db.Collection(cfg.JogCollection), db.Collection(cfg.StatsCollection)
}
