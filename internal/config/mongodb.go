package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
	// TestMode swaps MongoDB for the in-memory room store.
	TestMode bool
}

func NewMongoConfig() MongoConfig {
	return MongoConfig{
		URI:        getEnv("MONGODB_URI", ""),
		Database:   getEnv("MONGODB_DATABASE", "indoors"),
		Collection: getEnv("MONGODB_COLLECTION", "room"),
		Timeout:    getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		TestMode:   getEnvAsBool("TEST_MODE", false),
	}
}

func ConnectMongoDB(cfg MongoConfig, logger zerolog.Logger) (*mongo.Database, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("MongoDB URI not provided")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info().Str("database", cfg.Database).Msg("Connecting to MongoDB")

	clientOptions := options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info().Str("database", cfg.Database).Msg("Successfully connected to MongoDB")
	return client.Database(cfg.Database), nil
}
