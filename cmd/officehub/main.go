package main

import (
	"context"
	"os"

	"officehub/internal/server"
	"officehub/pkg/config"
)

const ServiceName = "officehub"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load(ServiceName)
	if cfg.StorageDriver == config.StorageMongo {
		cfg.SetMongo()
	}
	if cfg.LockBackend == config.LockRedis {
		cfg.SetRedis()
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting officehub service")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	srv, err := server.Build(ctx, cfg)
	cancel()
	if err != nil {
		cfg.Log.Error("Failed to initialize service", "error", err)
		return err
	}

	return srv.App.Run()
}
