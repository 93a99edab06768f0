// Package config provides configuration structures and validation for the
// settlement engine. It handles environment-based configuration for all major
// components including the event feed, databases, worker pool and the economy
// tuning parameters.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field represents a
// major subsystem's configuration and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Archive     ArchiveConfig
	WorkerPool  WorkerPoolConfig
	Economy     EconomyConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration for the economy gateway
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig contains configuration for the inbound event-batch feed
type KafkaConfig struct {
	Brokers       string
	BatchTopic    string
	ConsumerGroup string
	MinBytes      int
	MaxBytes      int
	MaxWait       time.Duration
	StartOffset   int64
	DLQTopic      string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig contains configuration for the journal archive store
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// ArchiveConfig contains journal archive poller configuration
type ArchiveConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig contains the per-actor settlement pool configuration
type WorkerPoolConfig struct {
	Size int
}

// EconomyConfig contains the tuning parameters of the settlement economy.
// Monetary values are in minor currency units.
type EconomyConfig struct {
	// ReferenceTreasury is the treasury level at which percentage subsidies
	// pay their full configured rate. Below it, rates are throttled
	// proportionally to treasury health.
	ReferenceTreasury int64
	// PointToleranceRadius is the match radius, in world units, around a
	// registered point zone.
	PointToleranceRadius float64
	// ShortcutWindow is how far back restricted-zone usage disqualifies an
	// actor from subsidies.
	ShortcutWindow time.Duration
	// MinRepaymentFraction floors the loan repayment taken out of every
	// settled payment; MaxRepaymentFraction is the share taken at full loan
	// utilization (utilization = outstanding / LoanReference).
	MinRepaymentFraction float64
	MaxRepaymentFraction float64
	LoanReference        int64
	// DefaultSavingsFraction routes the post-repayment remainder into the
	// actor's savings account unless the actor configured their own fraction.
	DefaultSavingsFraction float64
	CargoDumpPenalty       int64
	VehicleResetPenalty    int64
	// Passenger payment adjustments applied on comfort/urgency flags.
	ComfortBonusRate float64
	UrgencyBonusRate float64
	// Tow payment adjustments applied on heavy/offroad flags.
	TowHeavyRate   float64
	TowOffroadRate float64
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.BatchTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_BATCH_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Archive config
	if c.Archive.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "ARCHIVE_POLLING_INTERVAL must be greater than 0")
	}
	if c.Archive.BatchSize <= 0 {
		validationErrors = append(validationErrors, "ARCHIVE_BATCH_SIZE must be greater than 0")
	}
	if c.Archive.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "ARCHIVE_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Validate Economy config
	if c.Economy.ReferenceTreasury <= 0 {
		validationErrors = append(validationErrors, "ECONOMY_REFERENCE_TREASURY must be greater than 0")
	}
	if c.Economy.PointToleranceRadius <= 0 {
		validationErrors = append(validationErrors, "ECONOMY_POINT_TOLERANCE_RADIUS must be greater than 0")
	}
	if c.Economy.ShortcutWindow <= 0 {
		validationErrors = append(validationErrors, "ECONOMY_SHORTCUT_WINDOW must be greater than 0")
	}
	if c.Economy.MinRepaymentFraction < 0 || c.Economy.MinRepaymentFraction > 1 {
		validationErrors = append(validationErrors, "ECONOMY_MIN_REPAYMENT_FRACTION must be between 0 and 1")
	}
	if c.Economy.MaxRepaymentFraction < c.Economy.MinRepaymentFraction || c.Economy.MaxRepaymentFraction > 1 {
		validationErrors = append(validationErrors, "ECONOMY_MAX_REPAYMENT_FRACTION must be between ECONOMY_MIN_REPAYMENT_FRACTION and 1")
	}
	if c.Economy.LoanReference <= 0 {
		validationErrors = append(validationErrors, "ECONOMY_LOAN_REFERENCE must be greater than 0")
	}
	if c.Economy.DefaultSavingsFraction < 0 || c.Economy.DefaultSavingsFraction > 1 {
		validationErrors = append(validationErrors, "ECONOMY_DEFAULT_SAVINGS_FRACTION must be between 0 and 1")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
