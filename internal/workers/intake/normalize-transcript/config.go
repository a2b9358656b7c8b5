// internal/workers/intake/normalize-transcript/config.go
package normalizetranscript

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
