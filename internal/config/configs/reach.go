package configs

import "time"

// Reach tunes the policy deciding when an expandAudience campaign may be
// shown outside its strict audience.
type Reach struct {
	MinRatio   float64       `env:"MIN_RATIO" envDefault:"0.5"`
	MinViewers int64         `env:"MIN_VIEWERS" envDefault:"100"`
	Window     time.Duration `env:"WINDOW" envDefault:"24h"`
}
