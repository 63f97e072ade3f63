package main

import (
	"context"
	"os"
	"time"

	mongoMigration "officehub/internal/migrations/mongo"
	"officehub/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		return err
	}
	cfg.Log.Info("Migration completed successfully")
	return nil
}
