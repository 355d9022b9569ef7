package config

import (
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"

	"marketplace-ads/internal/config/configs"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library.
// The nested structs are tagged with envPrefix so their fields are parsed
// with the given prefix. See the individual types in the configs package
// for default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev). It is
	// attached to every log record.
	Env string `env:"ENV" envDefault:"prod"`

	HTTP      configs.HTTP      `envPrefix:"HTTP_"`
	Log       configs.Logger    `envPrefix:"LOG_"`
	Store     configs.Store     `envPrefix:"STORE_"`
	Psql      configs.Postgres  `envPrefix:"PSQL_"`
	SQLite    configs.SQLite    `envPrefix:"SQLITE_"`
	Redis     configs.Redis     `envPrefix:"REDIS_"`
	Kafka     configs.Kafka     `envPrefix:"KAFKA_"`
	Auth      configs.Auth      `envPrefix:"AUTH_"`
	Catalog   configs.Catalog   `envPrefix:"CATALOG_"`
	Reach     configs.Reach     `envPrefix:"REACH_"`
	Ads       configs.Ads       `envPrefix:"ADS_"`
	Telemetry configs.Telemetry `envPrefix:"OTEL_"`
}

// Load reads configuration from environment variables into a Config. If
// parsing fails, an error is returned. All fields are loaded with their
// specified defaults when no environment variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	drivers := []string{configs.DriverPostgres, configs.DriverSQLite, configs.DriverMemory}
	if !slices.Contains(drivers, c.Store.Driver) {
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == configs.DriverPostgres && c.Psql.ConnectTimeout <= 0 {
		return fmt.Errorf("postgres connect timeout must be positive")
	}
	if c.Reach.MinRatio < 0 || c.Reach.MinViewers < 0 || c.Reach.Window <= 0 {
		return fmt.Errorf("invalid reach policy settings")
	}
	return nil
}
