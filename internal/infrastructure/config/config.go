package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/domain/service"
	"github.com/bibbank/breachrisk/pkg/auth"
	kafkapkg "github.com/bibbank/breachrisk/pkg/kafka"
	"github.com/bibbank/breachrisk/pkg/postgres"
	"github.com/bibbank/breachrisk/pkg/tlsutil"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Kafka     KafkaConfig     `koanf:"kafka"`
	Model     ModelConfig     `koanf:"model"`
	Training  TrainingConfig  `koanf:"training"`
	Log       LogConfig       `koanf:"log"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Auth      AuthConfig      `koanf:"auth"`
}

// ServerConfig configures the HTTP and gRPC listeners.
type ServerConfig struct {
	ServiceName     string         `koanf:"service_name"`
	CORSOrigins     []string       `koanf:"cors_origins"`
	TLS             tlsutil.Config `koanf:"tls"`
	HTTPPort        int            `koanf:"http_port"`
	GRPCPort        int            `koanf:"grpc_port"`
	RateLimit       int            `koanf:"rate_limit"`
	RateWindow      time.Duration  `koanf:"rate_window"`
	ShutdownTimeout time.Duration  `koanf:"shutdown_timeout"`
	Reflection      bool           `koanf:"reflection"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig selects and configures the incident record store.
type DatabaseConfig struct {
	Driver   string          `koanf:"driver"`
	URL      string          `koanf:"url"`
	Postgres postgres.Config `koanf:"postgres"`
	Migrate  bool            `koanf:"migrate"`
}

// DSN prefers an explicit URL over the discrete connection fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return c.Postgres.DSN()
}

// ArtifactsConfig configures where trained models are kept.
type ArtifactsConfig struct {
	Dir      string `koanf:"dir"`
	InMemory bool   `koanf:"in_memory"`
	// History is how many superseded versions to retain.
	History int `koanf:"history"`
}

// KafkaConfig configures event publication and streaming ingestion.
type KafkaConfig struct {
	Brokers       []string      `koanf:"brokers"`
	EventsTopic   string        `koanf:"events_topic"`
	IngestTopic   string        `koanf:"ingest_topic"`
	ConsumerGroup string        `koanf:"consumer_group"`
	SASLMechanism string        `koanf:"sasl_mechanism"`
	SASLUsername  string        `koanf:"sasl_username"`
	SASLPassword  string        `koanf:"sasl_password"`
	BreakerWindow time.Duration `koanf:"breaker_window"`
	Enabled       bool          `koanf:"enabled"`
	Ingest        bool          `koanf:"ingest"`
	TLS           bool          `koanf:"tls"`
}

// Client returns the connection settings for pkg/kafka.
func (c KafkaConfig) Client() kafkapkg.Config {
	return kafkapkg.Config{
		Brokers:       c.Brokers,
		ConsumerGroup: c.ConsumerGroup,
		TLS:           c.TLS,
		SASLEnabled:   c.SASLMechanism != "",
		SASLMechanism: c.SASLMechanism,
		SASLUsername:  c.SASLUsername,
		SASLPassword:  c.SASLPassword,
	}
}

// ModelConfig configures the magnitude model family and its hyperparameters.
type ModelConfig struct {
	Kind           string  `koanf:"kind"`
	Hidden         []int   `koanf:"hidden"`
	LearningRate   float64 `koanf:"learning_rate"`
	Seed           uint64  `koanf:"seed"`
	Trees          int     `koanf:"trees"`
	MaxDepth       int     `koanf:"max_depth"`
	MinSamplesLeaf int     `koanf:"min_samples_leaf"`
	Epochs         int     `koanf:"epochs"`
	BatchSize      int     `koanf:"batch_size"`
}

// TrainingConfig configures the training pipeline.
type TrainingConfig struct {
	MinRecords      int    `koanf:"min_records"`
	SyntheticSize   int    `koanf:"synthetic_size"`
	SyntheticSeed   uint64 `koanf:"synthetic_seed"`
	RetrainOnStart  bool   `koanf:"retrain_on_start"`
	RetrainOnIngest bool   `koanf:"retrain_on_ingest"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	Endpoint string `koanf:"endpoint"`
	Enabled  bool   `koanf:"enabled"`
	Insecure bool   `koanf:"insecure"`
}

// AuthConfig configures bearer token checks. With no secret and no public
// key, authentication is off.
type AuthConfig struct {
	JWT auth.JWTConfig `koanf:"jwt"`
}

// Enabled reports whether any verification key is configured.
func (c AuthConfig) Enabled() bool {
	return c.JWT.Secret != "" || c.JWT.PublicKeyPEM != "" || c.JWT.PublicKeyFile != ""
}

// Trainer converts the model and training sections into the domain
// trainer configuration.
func (c Config) Trainer() service.TrainerConfig {
	cfg := service.DefaultTrainerConfig()
	cfg.Model.Kind = model.ModelKind(c.Model.Kind)
	cfg.Model.Forest.Trees = c.Model.Trees
	cfg.Model.Forest.MaxDepth = c.Model.MaxDepth
	cfg.Model.Forest.MinSamplesLeaf = c.Model.MinSamplesLeaf
	cfg.Model.Forest.Seed = c.Model.Seed
	cfg.Model.MLP.Hidden = append([]int(nil), c.Model.Hidden...)
	cfg.Model.MLP.Epochs = c.Model.Epochs
	cfg.Model.MLP.BatchSize = c.Model.BatchSize
	cfg.Model.MLP.LearningRate = c.Model.LearningRate
	cfg.Model.MLP.Seed = c.Model.Seed
	cfg.MinRecords = c.Training.MinRecords
	cfg.SyntheticSize = c.Training.SyntheticSize
	cfg.SyntheticSeed = c.Training.SyntheticSeed
	return cfg
}

// Validate rejects configuration the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(validPort(c.Server.HTTPPort), "server.http_port %d is out of range", c.Server.HTTPPort)
	check(validPort(c.Server.GRPCPort), "server.grpc_port %d is out of range", c.Server.GRPCPort)
	check(c.Server.HTTPPort != c.Server.GRPCPort, "server.http_port and server.grpc_port must differ")
	check(c.Server.RateLimit >= 0, "server.rate_limit must not be negative")
	check(c.Server.RateLimit == 0 || c.Server.RateWindow > 0, "server.rate_window must be positive when rate limiting")

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		check(c.Database.URL != "" || c.Database.Postgres.Host != "", "database.url or database.postgres.host is required")
	default:
		errs = append(errs, fmt.Errorf("database.driver %q must be %s or %s", c.Database.Driver, DriverPostgres, DriverMemory))
	}

	check(c.Artifacts.InMemory || c.Artifacts.Dir != "", "artifacts.dir is required unless artifacts.in_memory is set")
	check(c.Artifacts.History >= 0, "artifacts.history must not be negative")

	if c.Kafka.Enabled || c.Kafka.Ingest {
		if err := c.Kafka.Client().Validate(); err != nil {
			errs = append(errs, err)
		}
		check(!c.Kafka.Enabled || c.Kafka.EventsTopic != "", "kafka.events_topic is required")
		check(!c.Kafka.Ingest || c.Kafka.IngestTopic != "", "kafka.ingest_topic is required for ingestion")
		check(!c.Kafka.Ingest || c.Kafka.ConsumerGroup != "", "kafka.consumer_group is required for ingestion")
	}

	check(model.ModelKind(c.Model.Kind).Valid(), "model.kind %q must be forest or mlp", c.Model.Kind)
	check(c.Model.Trees > 0, "model.trees must be positive")
	check(c.Model.MaxDepth >= 0, "model.max_depth must not be negative")
	check(c.Model.MinSamplesLeaf > 0, "model.min_samples_leaf must be positive")
	check(c.Model.Epochs > 0, "model.epochs must be positive")
	check(c.Model.BatchSize > 0, "model.batch_size must be positive")
	check(c.Model.LearningRate > 0, "model.learning_rate must be positive")
	for _, h := range c.Model.Hidden {
		check(h > 0, "model.hidden layer widths must be positive")
	}

	check(c.Training.MinRecords >= 0, "training.min_records must not be negative")
	check(c.Training.SyntheticSize > 0, "training.synthetic_size must be positive")

	check(!c.Tracing.Enabled || c.Tracing.Endpoint != "", "tracing.endpoint is required when tracing is enabled")

	return errors.Join(errs...)
}

func validPort(p int) bool { return p > 0 && p < 65536 }
