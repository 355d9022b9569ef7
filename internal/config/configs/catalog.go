package configs

import "time"

// Catalog configures the item ownership lookup. An empty BaseURL accepts
// every item, which is only meant for local development.
type Catalog struct {
	BaseURL string        `env:"BASE_URL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"2s"`
	// PageBaseURL prefixes the item page a click redirects to.
	PageBaseURL string `env:"PAGE_BASE_URL"`
}
