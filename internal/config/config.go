package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	OrderServiceName     = "order-service"
	InventoryServiceName = "inventory-service"

	EnvProd = "prod"
	EnvDev  = "dev"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	devJWTSecret = "dev_secret_change_me"
)

// DB接続設定
type Database struct {
	Driver string // postgres / mysql
	URL    string // DATABASE_URL（あれば最優先）

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MySQLDSN string
}

// Kafka設定。Brokersが空ならメッセージングは無効
type Kafka struct {
	Brokers          []string
	OrderPlacedTopic string
	GroupID          string
	BatchTimeout     time.Duration
}

// Configはサービス全体の設定
type Config struct {
	ServiceName string
	Port        string // ":8081" の形
	GoEnv       string // dev/prod

	DB Database

	JWTSecret string // 管理者APIのJWT検証用

	RedisAddr string // 空ならキャッシュ無効
	CacheTTL  time.Duration

	Kafka Kafka

	InventoryServiceURL string // order-serviceが在庫確認に使う
	InventoryTimeout    time.Duration

	OTLPEndpoint string // 空ならトレースはエクスポートしない

	SeedInventory bool
}

// .envがあれば読み込む（無くてもエラーにしない）
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Loadは環境変数から設定を組み立てる
func Load(serviceName string) (Config, error) {
	defaultPort := "8081"
	if serviceName == InventoryServiceName {
		defaultPort = "8082"
	}

	pgPort, err := atoiOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := durationOr("CACHE_TTL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	invTimeout, err := durationOr("INVENTORY_TIMEOUT", 3*time.Second)
	if err != nil {
		return Config{}, err
	}
	batchTimeout, err := durationOr("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	seed, err := boolOr("SEED_INVENTORY", true)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ServiceName: serviceName,
		Port:        normalizePort(getenv("PORT", defaultPort)),
		GoEnv:       getenv("GO_ENV", EnvDev),

		DB: Database{
			Driver: strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
			URL:    os.Getenv("DATABASE_URL"),

			PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
			PostgresPort:     pgPort,
			PostgresUser:     getenv("POSTGRES_USER", "postgres"),
			PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
			PostgresDB:       getenv("POSTGRES_DB", strings.ReplaceAll(serviceName, "-", "_")),
			PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

			MySQLDSN: os.Getenv("MYSQL_DSN"),
		},

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		CacheTTL:  cacheTTL,

		Kafka: Kafka{
			Brokers:          splitList(os.Getenv("KAFKA_BROKERS")),
			OrderPlacedTopic: getenv("ORDER_PLACED_TOPIC", "order-placed"),
			GroupID:          getenv("KAFKA_GROUP_ID", InventoryServiceName),
			BatchTimeout:     batchTimeout,
		},

		InventoryServiceURL: strings.TrimRight(getenv("INVENTORY_SERVICE_URL", "http://localhost:8082"), "/"),
		InventoryTimeout:    invTimeout,

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		SeedInventory: seed,
	}

	//必須チェック
	switch cfg.DB.Driver {
	case DriverPostgres, DriverMySQL:
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be %s or %s", DriverPostgres, DriverMySQL)
	}
	if cfg.DB.Driver == DriverMySQL && cfg.DB.URL == "" && cfg.DB.MySQLDSN == "" {
		return Config{}, fmt.Errorf("MYSQL_DSN is required when DB_DRIVER=mysql")
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProd() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

func (c Config) IsProd() bool {
	return c.GoEnv == EnvProd
}

func (c Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolOr(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// "8080" / ":8080" どちらでも ":8080" にする
func normalizePort(v string) string {
	if v != "" && v[0] != ':' {
		return ":" + v
	}
	return v
}
