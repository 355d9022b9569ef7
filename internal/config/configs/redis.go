package configs

// Redis configures the reach estimator backend. An empty Address keeps
// reach estimation in process memory.
type Redis struct {
	Address  string `env:"ADDRESS"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}
