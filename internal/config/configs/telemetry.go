package configs

// Telemetry configures OpenTelemetry tracing. Tracing is off while
// Endpoint is empty.
type Telemetry struct {
	Endpoint    string  `env:"ENDPOINT"`
	ServiceName string  `env:"SERVICE_NAME" envDefault:"marketplace-ads"`
	SampleRatio float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}
