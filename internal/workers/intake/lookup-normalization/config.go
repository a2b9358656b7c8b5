// internal/workers/intake/lookup-normalization/config.go
package lookupnormalization

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
