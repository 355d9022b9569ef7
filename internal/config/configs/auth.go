package configs

// Auth configures verification of the bearer tokens issued by the
// marketplace identity service.
type Auth struct {
	JWTSecret string `env:"JWT_SECRET,notEmpty"`
	Issuer    string `env:"ISSUER"`
}
