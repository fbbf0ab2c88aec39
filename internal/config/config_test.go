package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shop/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// テスト中は関係する環境変数を空にしておく
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GO_ENV", "DB_DRIVER", "DATABASE_URL", "MYSQL_DSN", "POSTGRES_DB", "POSTGRES_PORT",
		"JWT_SECRET", "REDIS_ADDR", "CACHE_TTL", "KAFKA_BROKERS", "ORDER_PLACED_TOPIC", "KAFKA_GROUP_ID",
		"INVENTORY_SERVICE_URL", "OTEL_EXPORTER_OTLP_ENDPOINT", "SEED_INVENTORY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(config.OrderServiceName)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Port)
	assert.Equal(t, config.EnvDev, cfg.GoEnv)
	assert.Equal(t, config.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "order_service", cfg.DB.PostgresDB)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, "order-placed", cfg.Kafka.OrderPlacedTopic)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "http://localhost:8082", cfg.InventoryServiceURL)
	assert.True(t, cfg.SeedInventory)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoad_InventoryServiceDefaultPort(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(config.InventoryServiceName)
	require.NoError(t, err)
	assert.Equal(t, ":8082", cfg.Port)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("INVENTORY_SERVICE_URL", "http://inventory:8082/")
	t.Setenv("SEED_INVENTORY", "false")
	t.Setenv("CACHE_TTL", "1m")

	cfg, err := config.Load(config.OrderServiceName)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "http://inventory:8082", cfg.InventoryServiceURL)
	assert.False(t, cfg.SeedInventory)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad driver", map[string]string{"DB_DRIVER": "sqlite"}, "DB_DRIVER"},
		{"mysql without dsn", map[string]string{"DB_DRIVER": "mysql"}, "MYSQL_DSN"},
		{"prod without secret", map[string]string{"GO_ENV": "prod"}, "JWT_SECRET"},
		{"bad port number", map[string]string{"POSTGRES_PORT": "abc"}, "POSTGRES_PORT"},
		{"bad bool", map[string]string{"SEED_INVENTORY": "maybe"}, "SEED_INVENTORY"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := config.Load(config.OrderServiceName)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadDotEnv_ReadsExistingFileOnly(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(p, []byte("REDIS_ADDR=redis:6379\n"), 0o600))

	// godotenvは既にある変数を上書きしない
	require.NoError(t, os.Unsetenv("REDIS_ADDR"))
	config.LoadDotEnv(filepath.Join(dir, "missing.env"), p)

	cfg, err := config.Load(config.InventoryServiceName)
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
}
