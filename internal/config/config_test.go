package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-ads/internal/config/configs"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, configs.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 0.5, cfg.Reach.MinRatio)
	assert.Equal(t, int64(100), cfg.Reach.MinViewers)
	assert.Equal(t, 24*time.Hour, cfg.Reach.Window)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "ads.events", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Telemetry.Endpoint)
	assert.Contains(t, cfg.Ads.Placements, "search_top")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/ads.db")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REACH_WINDOW", "6h")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADS_PLACEMENTS", "feed,checkout")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, configs.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/ads.db", cfg.SQLite.Path)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 6*time.Hour, cfg.Reach.Window)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"feed", "checkout"}, cfg.Ads.Placements)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}
