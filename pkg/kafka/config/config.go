package kafka_config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"officehub/pkg/logger"
)

// Config tunes the booking event producer and the audit consumer. Brokers
// come from the service configuration; everything else is read from
// KAFKA_* variables.
type Config struct {
	Brokers []string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int    // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string // none, gzip, snappy, lz4, zstd
	ProducerAsync        bool

	// PublishTimeout bounds one booking event send; PublishQueueSize is how
	// many events may wait for the broker before new ones are dropped.
	PublishTimeout   time.Duration
	PublishQueueSize int

	ConsumerStartOffset       int64 // -1 = newest, -2 = oldest
	ConsumerMinBytes          int
	ConsumerMaxBytes          int
	ConsumerMaxWait           time.Duration
	ConsumerCommitInterval    time.Duration
	ConsumerHeartbeatInterval time.Duration
	ConsumerSessionTimeout    time.Duration
	ConsumerRebalanceTimeout  time.Duration
	ConsumerMaxRetries        int
}

var (
	validCompressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}
	validAcks         = []int{-1, 0, 1}
)

// Load reads the tuning variables for the given brokers and validates the result.
func Load(brokers []string) (*Config, error) {
	cfg := &Config{
		Brokers: brokers,

		ProducerMaxAttempts:  envInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: envDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
		ProducerRequireAcks:  envInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
		ProducerCompression:  strings.ToLower(envStr(EnvKafkaProducerCompression, DefaultProducerCompression)),
		ProducerAsync:        envBool(EnvKafkaProducerAsync, DefaultProducerAsync),

		PublishTimeout:   envDuration(EnvKafkaPublishTimeout, DefaultPublishTimeout),
		PublishQueueSize: envInt(EnvKafkaPublishQueueSize, DefaultPublishQueueSize),

		ConsumerStartOffset:       int64(envInt(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset)),
		ConsumerMinBytes:          envInt(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
		ConsumerMaxBytes:          envInt(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
		ConsumerMaxWait:           envDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
		ConsumerCommitInterval:    envDuration(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval),
		ConsumerHeartbeatInterval: envDuration(EnvKafkaConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval),
		ConsumerSessionTimeout:    envDuration(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout),
		ConsumerRebalanceTimeout:  envDuration(EnvKafkaConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout),
		ConsumerMaxRetries:        envInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(len(cfg.Brokers) > 0, "at least one broker is required")
	for i, broker := range cfg.Brokers {
		check(broker != "", "broker %d is empty", i)
	}

	check(cfg.ProducerMaxAttempts > 0, "ProducerMaxAttempts must be positive, got: %d", cfg.ProducerMaxAttempts)
	check(cfg.ProducerBatchTimeout > 0, "ProducerBatchTimeout must be positive, got: %s", cfg.ProducerBatchTimeout)
	check(contains(validCompressions, cfg.ProducerCompression),
		"ProducerCompression must be one of %v, got: %s", validCompressions, cfg.ProducerCompression)
	check(contains(validAcks, cfg.ProducerRequireAcks),
		"ProducerRequireAcks must be one of %v, got: %d", validAcks, cfg.ProducerRequireAcks)
	check(cfg.PublishTimeout > 0, "PublishTimeout must be positive, got: %s", cfg.PublishTimeout)
	check(cfg.PublishQueueSize > 0, "PublishQueueSize must be positive, got: %d", cfg.PublishQueueSize)

	check(cfg.ConsumerStartOffset >= -2, "ConsumerStartOffset must be -1 (newest), -2 (oldest) or >= 0, got: %d", cfg.ConsumerStartOffset)
	check(cfg.ConsumerMinBytes > 0, "ConsumerMinBytes must be positive, got: %d", cfg.ConsumerMinBytes)
	check(cfg.ConsumerMaxBytes >= cfg.ConsumerMinBytes,
		"ConsumerMaxBytes must be at least ConsumerMinBytes (%d), got: %d", cfg.ConsumerMinBytes, cfg.ConsumerMaxBytes)
	for name, d := range map[string]time.Duration{
		"ConsumerMaxWait":           cfg.ConsumerMaxWait,
		"ConsumerCommitInterval":    cfg.ConsumerCommitInterval,
		"ConsumerHeartbeatInterval": cfg.ConsumerHeartbeatInterval,
		"ConsumerSessionTimeout":    cfg.ConsumerSessionTimeout,
		"ConsumerRebalanceTimeout":  cfg.ConsumerRebalanceTimeout,
	} {
		check(d > 0, "%s must be positive, got: %s", name, d)
	}
	check(cfg.ConsumerMaxRetries >= 0, "ConsumerMaxRetries cannot be negative, got: %d", cfg.ConsumerMaxRetries)

	if len(problems) == 0 {
		return nil
	}
	return errors.New("kafka configuration: " + strings.Join(problems, "; "))
}

// LogProducer logs the settings the booking event publisher runs with.
func (cfg *Config) LogProducer(log *logger.Logger, topic string) {
	log.Info("Kafka producer configured",
		"brokers", cfg.Brokers,
		"topic", topic,
		"max_attempts", cfg.ProducerMaxAttempts,
		"batch_timeout", cfg.ProducerBatchTimeout,
		"require_acks", cfg.ProducerRequireAcks,
		"compression", cfg.ProducerCompression,
		"async", cfg.ProducerAsync,
		"publish_timeout", cfg.PublishTimeout,
		"publish_queue_size", cfg.PublishQueueSize,
	)
}

// LogConsumer logs the settings of a consumer group member.
func (cfg *Config) LogConsumer(log *logger.Logger, topic, groupID string) {
	log.Info("Kafka consumer configured",
		"brokers", cfg.Brokers,
		"topic", topic,
		"group_id", groupID,
		"start_offset", cfg.ConsumerStartOffset,
		"max_wait", cfg.ConsumerMaxWait,
		"commit_interval", cfg.ConsumerCommitInterval,
		"session_timeout", cfg.ConsumerSessionTimeout,
		"max_retries", cfg.ConsumerMaxRetries,
	)
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func envStr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// envParsed returns fallback when key is unset or does not parse.
func envParsed[T any](key string, fallback T, parse func(string) (T, error)) T {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := parse(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	return envParsed(key, fallback, strconv.Atoi)
}

func envBool(key string, fallback bool) bool {
	return envParsed(key, fallback, strconv.ParseBool)
}

func envDuration(key string, fallback time.Duration) time.Duration {
	return envParsed(key, fallback, time.ParseDuration)
}
