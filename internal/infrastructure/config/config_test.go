package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/infrastructure/config"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := config.LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9090, cfg.Server.GRPCPort)
	assert.Equal(t, time.Minute, cfg.Server.RateWindow)
	assert.Equal(t, config.DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "forest", cfg.Model.Kind)
	assert.Equal(t, 100, cfg.Model.Trees)
	assert.Equal(t, []int{64, 32}, cfg.Model.Hidden)
	assert.Equal(t, 10, cfg.Training.MinRecords)
	assert.Equal(t, 100, cfg.Training.SyntheticSize)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Auth.Enabled())
}

func TestLoadFile_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: 8181
model:
  kind: mlp
  epochs: 5
kafka:
  enabled: true
  brokers: ["k1:9092"]
`), 0o600))

	t.Setenv("HTTP_PORT", "8282")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("RATE_WINDOW", "30s")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/risk")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("JWT_PUBLIC_KEY_FILE", "/etc/riskd/jwt.pub")

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8282, cfg.Server.HTTPPort)
	assert.Equal(t, "mlp", cfg.Model.Kind)
	assert.Equal(t, 5, cfg.Model.Epochs)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Server.RateWindow)
	assert.Equal(t, "postgres://u:p@db:5432/risk", cfg.Database.DSN())
	assert.Equal(t, "/etc/riskd/jwt.pub", cfg.Auth.JWT.PublicKeyFile)
	assert.True(t, cfg.Auth.Enabled())
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_UsesConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riskd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	t.Setenv(config.PathEnvVar, path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad model kind", env: map[string]string{"MODEL_KIND": "svm"}, wantErr: "model.kind"},
		{name: "bad driver", env: map[string]string{"DATABASE_DRIVER": "sqlite"}, wantErr: "database.driver"},
		{name: "port clash", env: map[string]string{"HTTP_PORT": "9090"}, wantErr: "must differ"},
		{name: "port range", env: map[string]string{"GRPC_PORT": "70000"}, wantErr: "grpc_port"},
		{name: "zero trees", env: map[string]string{"MODEL_TREES": "0"}, wantErr: "model.trees"},
		{name: "zero batch", env: map[string]string{"MODEL_BATCH_SIZE": "0"}, wantErr: "model.batch_size"},
		{name: "negative history", env: map[string]string{"ARTIFACTS_HISTORY": "-1"}, wantErr: "artifacts.history"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.LoadFile("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTrainerConfig(t *testing.T) {
	t.Setenv("MODEL_KIND", "mlp")
	t.Setenv("MODEL_SEED", "7")

	cfg, err := config.LoadFile("")
	require.NoError(t, err)

	tc := cfg.Trainer()
	assert.Equal(t, model.ModelKindMLP, tc.Model.Kind)
	assert.Equal(t, uint64(7), tc.Model.MLP.Seed)
	assert.Equal(t, uint64(7), tc.Model.Forest.Seed)
	assert.Equal(t, 10, tc.MinRecords)
	assert.Equal(t, 0.001, tc.Model.MLP.LearningRate)
}
