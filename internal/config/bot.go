package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	WSURL   string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	RoomID  string `env:"ROOM_ID"`
	ThinkMS int    `env:"BOT_THINK_MS" envDefault:"300"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
