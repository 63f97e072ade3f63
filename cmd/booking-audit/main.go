package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"officehub/internal/bookings/events"
	"officehub/pkg/config"
	"officehub/pkg/kafka"
	kafka_config "officehub/pkg/kafka/config"
	kafka_middleware "officehub/pkg/kafka/middleware"
	"officehub/pkg/metrics"
)

const (
	ServiceName = "booking-audit"
	GroupID     = "officehub-booking-audit"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load(ServiceName)
	if !cfg.KafkaEnabled() {
		err := errors.New("KAFKA_BROKERS must be set")
		cfg.Log.Error("Cannot start booking audit consumer", "error", err)
		return err
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Error("Invalid kafka configuration", "error", err)
		return err
	}
	kafkaCfg.LogConsumer(cfg.Log, cfg.KafkaBookingsTopic, GroupID)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.KafkaBookingsTopic, GroupID, events.AuditHandler(cfg.Log), cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to create kafka consumer", "error", err)
		return err
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	if cfg.MetricsEnabled {
		m := metrics.New()
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))
		stopMetrics := serveMetrics(cfg, m)
		defer stopMetrics()
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close kafka consumer", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Booking audit consumer started",
		"topic", cfg.KafkaBookingsTopic,
		"group_id", GroupID,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Booking audit consumer stopped", "error", err)
		return err
	}

	cfg.Log.Info("Booking audit consumer stopped")
	return nil
}

func serveMetrics(cfg *config.Config, m *metrics.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     mux,
		ReadTimeout: cfg.ReadTimeout,
		IdleTimeout: cfg.IdleTimeout,
	}

	go func() {
		cfg.Log.Info("Serving consumer metrics", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
