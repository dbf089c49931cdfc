// Package config loads NearYou's configuration from environment
// variables (and an optional .env file), following the same
// viper-based pattern the rest of the corpus uses.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration surface from spec.md §6.
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`

	Kafka    KafkaConfig    `mapstructure:"kafka"`
	SSL      SSLConfig      `mapstructure:"ssl"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	LLM      LLMConfig      `mapstructure:"llm"`

	MessageGeneratorURL string `mapstructure:"message_generator_url"`

	GeneratorPort string `mapstructure:"generator_port"`
	QueryPort     string `mapstructure:"query_port"`
}

type KafkaConfig struct {
	Broker        string `mapstructure:"broker"`
	Topic         string `mapstructure:"topic"`
	ConsumerGroup string `mapstructure:"consumer_group"`
}

type SSLConfig struct {
	CAFile   string `mapstructure:"cafile"`
	CertFile string `mapstructure:"certfile"`
	KeyFile  string `mapstructure:"keyfile"`
}

type ClickHouseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type LLMConfig struct {
	Provider    string `mapstructure:"provider"`
	OpenAIKey   string `mapstructure:"openai_api_key"`
	OpenAIBase  string `mapstructure:"openai_api_base"`
	GeminiKey   string `mapstructure:"gemini_api_key"`
}

// Load reads configuration from the environment (and a .env file if
// present), applying the same defaults as the original Python services.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("kafka.broker", "localhost:9092")
	v.SetDefault("kafka.topic", "gps_events")
	v.SetDefault("kafka.consumer_group", "nearyou-enrichment")

	v.SetDefault("clickhouse.host", "localhost")
	v.SetDefault("clickhouse.port", "9000")
	v.SetDefault("clickhouse.user", "default")
	v.SetDefault("clickhouse.database", "nearyou")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.db", "nearyou_geo")

	v.SetDefault("redis.host", "redis-cache")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 86400*time.Second)

	v.SetDefault("llm.provider", "gemini")

	v.SetDefault("message_generator_url", "http://localhost:8081")
	v.SetDefault("generator_port", "8081")
	v.SetDefault("query_port", "8082")

	bind := func(key, env string) {
		_ = v.BindEnv(key, env)
	}
	bind("environment", "ENVIRONMENT")
	bind("log_level", "LOG_LEVEL")
	bind("log_format", "LOG_FORMAT")
	bind("kafka.broker", "KAFKA_BROKER")
	bind("kafka.topic", "KAFKA_TOPIC")
	bind("kafka.consumer_group", "CONSUMER_GROUP")
	bind("ssl.cafile", "SSL_CAFILE")
	bind("ssl.certfile", "SSL_CERTFILE")
	bind("ssl.keyfile", "SSL_KEYFILE")
	bind("clickhouse.host", "CLICKHOUSE_HOST")
	bind("clickhouse.port", "CLICKHOUSE_PORT")
	bind("clickhouse.user", "CLICKHOUSE_USER")
	bind("clickhouse.password", "CLICKHOUSE_PASSWORD")
	bind("clickhouse.database", "CLICKHOUSE_DATABASE")
	bind("postgres.host", "POSTGRES_HOST")
	bind("postgres.port", "POSTGRES_PORT")
	bind("postgres.user", "POSTGRES_USER")
	bind("postgres.password", "POSTGRES_PASSWORD")
	bind("postgres.db", "POSTGRES_DB")
	bind("redis.host", "REDIS_HOST")
	bind("redis.port", "REDIS_PORT")
	bind("redis.db", "REDIS_DB")
	bind("redis.password", "REDIS_PASSWORD")
	bind("cache.enabled", "CACHE_ENABLED")
	bind("cache.ttl", "CACHE_TTL")
	bind("llm.provider", "LLM_PROVIDER")
	bind("llm.openai_api_key", "OPENAI_API_KEY")
	bind("llm.openai_api_base", "OPENAI_API_BASE")
	bind("llm.gemini_api_key", "GOOGLE_GEMINI_API_KEY")
	bind("message_generator_url", "MESSAGE_GENERATOR_URL")

	// CACHE_TTL may arrive as a bare integer number of seconds (matching
	// the Python service's env var contract) rather than a Go duration
	// string; mapstructure's duration hook only parses the latter, so a
	// bare integer is converted to seconds here before unmarshalling.
	if secs, err := strconv.Atoi(v.GetString("cache.ttl")); err == nil {
		v.Set("cache.ttl", time.Duration(secs)*time.Second)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// PostgresConnString builds a libpq-style connection URL for pgxpool.
func (c *Config) PostgresConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable",
		c.Postgres.User, c.Postgres.Password, c.Postgres.Host, c.Postgres.Port, c.Postgres.DB)
}
