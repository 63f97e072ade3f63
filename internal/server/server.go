// Package server assembles the officehub HTTP service from configuration.
package server

import (
	"context"
	"fmt"
	"os"

	alerthandler "officehub/internal/alerts/handler"
	alertrepository "officehub/internal/alerts/repository"
	alertservice "officehub/internal/alerts/service"
	alertvalidator "officehub/internal/alerts/validator"
	"officehub/internal/bookings/events"
	bookinghandler "officehub/internal/bookings/handler"
	"officehub/internal/bookings/lock"
	bookingrepository "officehub/internal/bookings/repository"
	bookingservice "officehub/internal/bookings/service"
	bookingvalidator "officehub/internal/bookings/validator"
	roomhandler "officehub/internal/rooms/handler"
	roomrepository "officehub/internal/rooms/repository"
	roomservice "officehub/internal/rooms/service"
	"officehub/pkg/app"
	"officehub/pkg/config"
	"officehub/pkg/kafka"
	kafka_config "officehub/pkg/kafka/config"
	kafka_middleware "officehub/pkg/kafka/middleware"
	"officehub/pkg/metrics"
	"officehub/pkg/timeutil"
)

type Server struct {
	App      *app.Application
	Rooms    roomservice.RoomService
	Bookings bookingservice.BookingService
	Alerts   alertservice.AlertService
	Metrics  *metrics.Metrics
}

type options struct {
	clock     timeutil.Clock
	publisher events.Publisher
}

type Option func(*options)

// WithClock replaces the wall clock of every service.
func WithClock(clock timeutil.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithPublisher bypasses the Kafka producer that KAFKA_BROKERS would create.
func WithPublisher(p events.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

type repositories struct {
	rooms    roomrepository.RoomRepository
	bookings bookingrepository.BookingRepository
	alerts   alertrepository.AlertRepository
}

// Build wires repositories, services and handlers. Backend connections must
// already be open on cfg.Client for the configured drivers.
func Build(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	o := &options{clock: timeutil.SystemClock{}}
	for _, opt := range opts {
		opt(o)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	repos, err := initRepositories(cfg)
	if err != nil {
		return nil, err
	}

	locker, err := initLocker(cfg)
	if err != nil {
		return nil, err
	}

	application := app.NewApplication(cfg, m)

	publisher := o.publisher
	if publisher == nil {
		publisher, err = initPublisher(cfg, m, application)
		if err != nil {
			return nil, err
		}
	}

	rooms := roomservice.NewRoomService(repos.rooms, repos.bookings, cfg, roomservice.WithClock(o.clock))
	bookings := bookingservice.NewBookingService(
		repos.bookings,
		rooms,
		locker,
		bookingvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
		bookingservice.WithClock(o.clock),
		bookingservice.WithMetrics(m),
	)
	alerts := alertservice.NewAlertService(
		repos.alerts,
		alertvalidator.NewAlertValidator(cfg.Log),
		cfg,
		alertservice.WithClock(o.clock),
	)
	cfg.Log.Info("Services initialized",
		"storage_driver", cfg.StorageDriver,
		"lock_backend", cfg.LockBackend,
		"events_enabled", cfg.KafkaEnabled() || o.publisher != nil,
	)

	if cfg.SeedRooms {
		if err := rooms.EnsureSeeded(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed meeting rooms: %w", err)
		}
	}

	if cfg.UploadsDir != "" {
		if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create uploads directory: %w", err)
		}
	}

	if err := application.SetApp(
		roomhandler.NewRoomHandler(rooms, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
		alerthandler.NewAlertHandler(alerts, cfg.Log),
	); err != nil {
		return nil, err
	}

	return &Server{
		App:      application,
		Rooms:    rooms,
		Bookings: bookings,
		Alerts:   alerts,
		Metrics:  m,
	}, nil
}

func initRepositories(cfg *config.Config) (*repositories, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		cfg.Log.Warn("Using in-memory storage, data is lost on restart")
		return &repositories{
			rooms:    roomrepository.NewMemoryRoomRepository(),
			bookings: bookingrepository.NewMemoryBookingRepository(),
			alerts:   alertrepository.NewMemoryAlertRepository(),
		}, nil
	case config.StorageMongo:
		if cfg.Client.Mongo == nil {
			return nil, fmt.Errorf("storage driver %q requires an open MongoDB connection", cfg.StorageDriver)
		}
		return &repositories{
			rooms:    roomrepository.NewMongoRoomRepository(cfg),
			bookings: bookingrepository.NewMongoBookingRepository(cfg),
			alerts:   alertrepository.NewMongoAlertRepository(cfg),
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// initLocker always serializes in process first. The distributed layer only
// matters when several instances share one store.
func initLocker(cfg *config.Config) (lock.RoomLocker, error) {
	local := lock.NewLocalLocker()

	switch cfg.LockBackend {
	case config.LockLocal:
		return local, nil
	case config.LockMongo:
		if cfg.Client.Mongo == nil {
			return nil, fmt.Errorf("lock backend %q requires an open MongoDB connection", cfg.LockBackend)
		}
		db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
		return lock.Chain(local, lock.NewMongoLocker(db, cfg.LockTTL, cfg.LockRetryInterval, cfg.Log)), nil
	case config.LockRedis:
		if cfg.Client.Redis == nil {
			return nil, fmt.Errorf("lock backend %q requires an open Redis connection", cfg.LockBackend)
		}
		return lock.Chain(local, lock.NewRedisLocker(cfg.Client.Redis, cfg.LockTTL, cfg.LockRetryInterval, cfg.Log)), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}

func initPublisher(cfg *config.Config, m *metrics.Metrics, application *app.Application) (events.Publisher, error) {
	if !cfg.KafkaEnabled() {
		cfg.Log.Info("Kafka disabled, booking events are not published")
		return events.NoopPublisher{}, nil
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		return nil, fmt.Errorf("invalid kafka configuration: %w", err)
	}
	kafkaCfg.LogProducer(cfg.Log, cfg.KafkaBookingsTopic)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.KafkaBookingsDLQ, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(m))

	application.OnShutdown(func(context.Context) {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close kafka producer", "error", err)
		}
	})

	publisher := events.NewKafkaPublisher(producer, cfg.Log,
		events.WithPublishTimeout(kafkaCfg.PublishTimeout),
		events.WithQueueSize(kafkaCfg.PublishQueueSize),
	)
	// Hooks run in reverse, so queued events are flushed before the producer closes.
	application.OnShutdown(func(ctx context.Context) {
		if err := publisher.Close(ctx); err != nil {
			cfg.Log.Error("Booking events still queued at shutdown", "error", err)
		}
	})
	return publisher, nil
}
