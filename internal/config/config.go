package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/movelaria/search-service/pkg/config"
	"github.com/movelaria/search-service/pkg/database"
)

// Config holds all configuration for the search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SEARCH_HTTP_PORT" envDefault:"8010"`

	// Search engine selection (postgres or memory)
	SearchEngine string `env:"SEARCH_ENGINE" envDefault:"postgres"`

	// PostgreSQL (hosts the functional.* search procedures)
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"movelaria"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"movelaria"`
	DBName     string `env:"DB_NAME" envDefault:"movelaria"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns int    `env:"DB_MAX_CONNS" envDefault:"10"`

	// Redis (session-scoped recent searches)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers      []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaSearchTopic  string   `env:"KAFKA_SEARCH_TOPIC" envDefault:"search.events"`
	KafkaEventsEnable bool     `env:"KAFKA_EVENTS_ENABLED" envDefault:"true"`

	// Auth: static bearer token for the internal API surface. The token maps
	// to an account with full SEARCH grants. Empty disables the internal routes.
	APIToken     string `env:"SEARCH_API_TOKEN" envDefault:""`
	APIAccountID int64  `env:"SEARCH_API_ACCOUNT_ID" envDefault:"1"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	TracingEnabled     bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint    string  `env:"TRACING_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRatio float64 `env:"TRACING_SAMPLE_RATIO" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.SearchEngine {
	case "postgres", "memory":
	default:
		return fmt.Errorf("invalid search engine: %q (must be postgres or memory)", c.SearchEngine)
	}
	return nil
}

// PostgresConfig builds the database pool configuration.
func (c *Config) PostgresConfig() database.PostgresConfig {
	return database.PostgresConfig{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,

		MaxConns:        int32(c.DBMaxConns),
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// RedisConfig builds the redis client configuration.
func (c *Config) RedisConfig() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
