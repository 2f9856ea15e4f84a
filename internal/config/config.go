package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"` // "development" or "production"
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// IsProduction reports whether diagnostics should be hidden from API responses.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Mode, "production")
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // "mysql" or "sqlite"
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	DSN             string `mapstructure:"dsn"` // sqlite file path, or a full mysql DSN overriding the fields above
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // minutes
	ConnectRetries  int    `mapstructure:"connect_retries"`
	MigrateRetries  int    `mapstructure:"migrate_retries"`
}

type RedisConfig struct {
	Addr           string        `mapstructure:"addr"` // empty disables idempotency keys
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"` // empty disables event publishing
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn", "error"
}

type RateLimitConfig struct {
	Rate      float64       `mapstructure:"rate"` // requests per second per client, 0 disables
	Burst     int           `mapstructure:"burst"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
}

// Load reads configuration from defaults, an optional config file and
// MARKETPLACE_* environment variables, in increasing priority.
func Load(configFile string) (*Config, error) {
	if os.Getenv("MARKETPLACE_SERVER_MODE") != "production" {
		_ = godotenv.Load() // optional .env for local
	}

	v := viper.New()

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.name", "BangZaky Portfolio API")
	v.SetDefault("server.version", "1.0.0")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "portfolio_db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.connect_retries", 10)
	v.SetDefault("database.migrate_retries", 3)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.idempotency_ttl", 24*time.Hour)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "marketplace-topic")
	v.SetDefault("log.level", "info")
	v.SetDefault("rate_limit.rate", 0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.expires_in", 3*time.Minute)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/marketplace-service/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("MARKETPLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
