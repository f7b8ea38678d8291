package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RateLimit       float64       `envconfig:"RATE_LIMIT" default:"10"`
	RateBurst       int           `envconfig:"RATE_BURST" default:"20"`

	CatalogDBPath string `envconfig:"CATALOG_DB_PATH" default:"swordshop.db"`

	StorageBackend string        `envconfig:"STORAGE_BACKEND" default:"sqlite"`
	StorageDBPath  string        `envconfig:"STORAGE_DB_PATH" default:"swordshop.db"`
	CartKey        string        `envconfig:"CART_KEY" default:"swordshop_cart"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RedisTTL       time.Duration `envconfig:"REDIS_TTL" default:"0"`
	MongoURI       string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName    string        `envconfig:"MONGO_DB_NAME" default:"swordshop"`

	ProcessingDelay time.Duration `envconfig:"PROCESSING_DELAY" default:"2s"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"30m"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"checkout-completed"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite, BackendRedis, BackendMongo, BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.CartKey == "" {
		return fmt.Errorf("CART_KEY must not be empty")
	}
	if c.ProcessingDelay < 0 {
		return fmt.Errorf("PROCESSING_DELAY must not be negative")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_BURST must be positive")
	}
	return nil
}
