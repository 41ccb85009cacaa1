package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
}

// LoadApp reads every section the server needs and rejects values the
// game loop cannot run with.
func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	if serverCfg.TurnSeconds < 1 {
		return AppConfig{}, fmt.Errorf("TURN_SECONDS must be positive, got %d", serverCfg.TurnSeconds)
	}
	if serverCfg.ResultTimeoutMS < 1 {
		return AppConfig{}, fmt.Errorf("RESULT_TIMEOUT_MS must be positive, got %d", serverCfg.ResultTimeoutMS)
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
	}, nil
}

// TestConfig points integration tests at a scratch database.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
