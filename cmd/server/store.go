package main

import (
	"context"

	"feedback-backend/internal/config"
	"feedback-backend/internal/database"
	"feedback-backend/internal/repository"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// openStore builds the configured backend without touching the network.
func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(database.PostgresOptions{
			Host:         cfg.Postgres.Host,
			Port:         cfg.Postgres.Port,
			User:         cfg.Postgres.User,
			Password:     cfg.Postgres.Password,
			Name:         cfg.Postgres.Name,
			SSLMode:      cfg.Postgres.SSLMode,
			LogLevel:     cfg.Postgres.LogLevel,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
			MaxIdleConns: cfg.Postgres.MaxIdleConns,
		})
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresStore(db, cfg.QueryTimeout), nil

	case config.DriverMongo:
		db, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.MaxPoolSize)
		if err != nil {
			return nil, err
		}
		return repository.NewMongoStore(db, cfg.QueryTimeout), nil

	case config.DriverMemory:
		log.Warn("using the in-memory store; feedback will not survive a restart")
		return repository.NewMemoryStore(), nil
	}
	return nil, errors.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// prepareStore waits for storage and ensures its schema. Any failure is a
// *database.FatalBootError.
func prepareStore(ctx context.Context, cfg *config.Config, store repository.Store) error {
	if err := database.EnsureReady(ctx, store, cfg.ReadyAttempts, cfg.ReadyDelay); err != nil {
		return err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return &database.FatalBootError{Stage: "schema", Err: err}
	}
	log.WithField("driver", cfg.StoreDriver).Info("storage schema is ready")
	return nil
}
