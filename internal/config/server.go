package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN"`

	TurnSeconds int `env:"TURN_SECONDS" envDefault:"15"`

	// PostgresDSN enables result recording when set.
	PostgresDSN     string `env:"POSTGRES_DSN"`
	ResultTimeoutMS int    `env:"RESULT_TIMEOUT_MS" envDefault:"2000"`

	ShutdownTimeoutMS int `env:"SHUTDOWN_TIMEOUT_MS" envDefault:"10000"`
}

func (c ServerConfig) ResultTimeout() time.Duration {
	return time.Duration(c.ResultTimeoutMS) * time.Millisecond
}

func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
