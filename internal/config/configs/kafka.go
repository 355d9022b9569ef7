package configs

// Kafka configures the ad event stream. With no brokers events are
// dropped.
type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"ads.events"`
}

// Enabled reports whether at least one broker is configured.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }
