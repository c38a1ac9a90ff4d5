package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.SearchEngine)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "movelaria", cfg.DBName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "search.events", cfg.KafkaSearchTopic)
	assert.True(t, cfg.KafkaEventsEnable)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("SEARCH_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidSearchEngine(t *testing.T) {
	t.Setenv("SEARCH_ENGINE", "elasticsearch")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid search engine")
}

func TestLoad_MemoryEngine(t *testing.T) {
	t.Setenv("SEARCH_ENGINE", "memory")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.SearchEngine)
}

func TestPostgresConfig(t *testing.T) {
	t.Setenv("DB_HOST", "db.prod")
	t.Setenv("DB_MAX_CONNS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.PostgresConfig()
	assert.Equal(t, "db.prod", pg.Host)
	assert.Equal(t, int32(25), pg.MaxConns)
	assert.Contains(t, pg.DSN(), "db.prod:5432")
}

func TestRedisConfig(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache.prod")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cache.prod:6380", cfg.RedisConfig().Addr())
}
