package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/bibbank/breachrisk/pkg/postgres"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

// DefaultPaths are searched in order when PathEnvVar is unset.
var DefaultPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/riskd/config.yaml",
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			ServiceName:     "riskd",
			HTTPPort:        8080,
			GRPCPort:        9090,
			CORSOrigins:     []string{"*"},
			RateLimit:       100,
			RateWindow:      time.Minute,
			ShutdownTimeout: 15 * time.Second,
			Reflection:      true,
		},
		Database: DatabaseConfig{
			Driver:   DriverMemory,
			Postgres: postgresDefaults(),
			Migrate:  true,
		},
		Artifacts: ArtifactsConfig{
			Dir:     "data/artifacts",
			History: 5,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			EventsTopic:   "risk.events",
			IngestTopic:   "risk.incidents",
			ConsumerGroup: "riskd",
			BreakerWindow: 30 * time.Second,
		},
		Model: ModelConfig{
			Kind:           "forest",
			Trees:          100,
			MinSamplesLeaf: 1,
			Seed:           42,
			Hidden:         []int{64, 32},
			Epochs:         20,
			BatchSize:      16,
			LearningRate:   0.001,
		},
		Training: TrainingConfig{
			MinRecords:    10,
			SyntheticSize: 100,
			SyntheticSeed: 42,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Endpoint: "localhost:4317",
			Insecure: true,
		},
		Auth: AuthConfig{},
	}
}

// envKeys maps environment variables to config paths. Unlisted variables
// are ignored.
var envKeys = map[string]string{
	"SERVICE_NAME":                "server.service_name",
	"HTTP_PORT":                   "server.http_port",
	"GRPC_PORT":                   "server.grpc_port",
	"CORS_ORIGINS":                "server.cors_origins",
	"RATE_LIMIT":                  "server.rate_limit",
	"RATE_WINDOW":                 "server.rate_window",
	"SHUTDOWN_TIMEOUT":            "server.shutdown_timeout",
	"GRPC_REFLECTION":             "server.reflection",
	"TLS_CERT_FILE":               "server.tls.cert_file",
	"TLS_KEY_FILE":                "server.tls.key_file",
	"TLS_CLIENT_CA_FILE":          "server.tls.client_ca_file",
	"DATABASE_DRIVER":             "database.driver",
	"DATABASE_URL":                "database.url",
	"DATABASE_MIGRATE":            "database.migrate",
	"DB_HOST":                     "database.postgres.host",
	"DB_PORT":                     "database.postgres.port",
	"DB_USER":                     "database.postgres.user",
	"DB_PASSWORD":                 "database.postgres.password",
	"DB_NAME":                     "database.postgres.database",
	"DB_SSLMODE":                  "database.postgres.sslmode",
	"DB_MAX_CONNS":                "database.postgres.max_conns",
	"DB_MIN_CONNS":                "database.postgres.min_conns",
	"ARTIFACTS_DIR":               "artifacts.dir",
	"ARTIFACTS_IN_MEMORY":         "artifacts.in_memory",
	"ARTIFACTS_HISTORY":           "artifacts.history",
	"KAFKA_ENABLED":               "kafka.enabled",
	"KAFKA_INGEST":                "kafka.ingest",
	"KAFKA_BROKERS":               "kafka.brokers",
	"KAFKA_EVENTS_TOPIC":          "kafka.events_topic",
	"KAFKA_INGEST_TOPIC":          "kafka.ingest_topic",
	"KAFKA_CONSUMER_GROUP":        "kafka.consumer_group",
	"KAFKA_TLS":                   "kafka.tls",
	"KAFKA_SASL_MECHANISM":        "kafka.sasl_mechanism",
	"KAFKA_SASL_USERNAME":         "kafka.sasl_username",
	"KAFKA_SASL_PASSWORD":         "kafka.sasl_password",
	"MODEL_KIND":                  "model.kind",
	"MODEL_TREES":                 "model.trees",
	"MODEL_MAX_DEPTH":             "model.max_depth",
	"MODEL_SEED":                  "model.seed",
	"MODEL_EPOCHS":                "model.epochs",
	"MODEL_BATCH_SIZE":            "model.batch_size",
	"MODEL_LEARNING_RATE":         "model.learning_rate",
	"TRAINING_MIN_RECORDS":        "training.min_records",
	"RETRAIN_ON_START":            "training.retrain_on_start",
	"RETRAIN_ON_INGEST":           "training.retrain_on_ingest",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"TRACING_ENABLED":             "tracing.enabled",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "tracing.endpoint",
	"JWT_SECRET":                  "auth.jwt.secret",
	"JWT_PUBLIC_KEY":              "auth.jwt.public_key_pem",
	"JWT_PUBLIC_KEY_FILE":         "auth.jwt.public_key_file",
	"JWT_ISSUER":                  "auth.jwt.issuer",
}

// listKeys arrive from the environment as comma-separated strings.
var listKeys = []string{"server.cors_origins", "kafka.brokers"}

// Load reads configuration in three layers: defaults, then an optional YAML
// file, then environment variables. The result is validated.
func Load() (*Config, error) {
	return load(findFile())
}

// LoadFile is Load with an explicit YAML file. An empty path skips the file
// layer.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := splitLists(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envKey(name string) string {
	return envKeys[name]
}

func splitLists(k *koanf.Koanf) error {
	for _, path := range listKeys {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func postgresDefaults() postgres.Config {
	return postgres.Config{
		Host:     "localhost",
		Port:     5432,
		User:     "riskd",
		Database: "breachrisk",
		SSLMode:  "require",
		MaxConns: 10,
		MinConns: 2,
	}
}
