package config

import "github.com/caarlos0/env/v11"

// LogConfig drives logging.Init. A LOG_FILE keeps at most one rotated
// copy next to it, each capped at LOG_MAX_MB.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`

	// HTTPRequests turns per-request access logs on the API routes on or off.
	HTTPRequests bool `env:"LOG_HTTP_REQUESTS" envDefault:"true"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
