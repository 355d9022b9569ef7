package configs

// Store driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Store selects the Campaign Store backend.
type Store struct {
	Driver   string `env:"DRIVER" envDefault:"postgres"`
	SeedDemo bool   `env:"SEED_DEMO" envDefault:"false"`
}

// SQLite configures the embedded store used for development.
type SQLite struct {
	Path string `env:"PATH" envDefault:"ads.db"`
}
