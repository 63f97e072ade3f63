package config

import "time"

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	LockLocal = "local"
	LockMongo = "mongo"
	LockRedis = "redis"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "office_facility"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultStorageDriver     = StorageMongo

	DefaultPort      = "8001"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLockBackend       = LockLocal
	DefaultLockTTL           = 45 * time.Second
	DefaultLockRetryInterval = 25 * time.Millisecond

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaBookingsTopic = "meeting-room-bookings"
	DefaultUploadsDir         = "uploads"
	DefaultCORSAllowedOrigins = "*"
	DefaultSeedRooms          = true
	DefaultMetricsEnabled     = true
)
