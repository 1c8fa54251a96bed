package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anonto42/nano-gallery/internal/store"
	"github.com/anonto42/nano-gallery/pkg/firebase"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverFirestore = "firestore"
	DriverMongo     = "mongo"
	DriverPostgres  = "postgres"
	DriverMemory    = "memory"
)

// InitStore connects the live-query store selected by STORE_DRIVER.
func InitStore(ctx context.Context, cfg *Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case DriverMemory:
		logger.Warn("using the in-memory store, interactions are not shared or kept")
		return store.NewMemoryStore(store.WithMemoryLogger(logger)), nil

	case DriverFirestore:
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID, logger)
		if err != nil {
			return nil, err
		}
		return store.NewFirestoreStore(app.Firestore, logger), nil

	case DriverMongo:
		client, err := initMongo(cfg.MongoURI, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		s := store.NewMongoStore(client.Database(cfg.MongoDatabase), logger)
		if err := s.EnsureIndexes(ctx); err != nil {
			closeQuietly(s, logger)
			return nil, err
		}
		return s, nil

	case DriverPostgres:
		db, err := initPostgres(cfg.PostgresUrl, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		s := store.NewPostgresStore(db, cfg.StorePollInterval, logger)
		if err := s.Migrate(ctx); err != nil {
			closeQuietly(s, logger)
			return nil, fmt.Errorf("failed to migrate PostgreSQL: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q (want firestore, mongo, postgres or memory)", cfg.StoreDriver)
}

// closeQuietly releases a store that failed to finish initializing.
func closeQuietly(s store.Store, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		logger.Warn("failed to close store after init error", "error", err)
	}
}

// initPostgres opens the PostgreSQL connection using GORM
func initPostgres(connStr string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Info("connected to PostgreSQL")
	return db, nil
}

// initMongo opens the MongoDB connection
func initMongo(uri string, logger *slog.Logger) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("connected to MongoDB")
	return client, nil
}
