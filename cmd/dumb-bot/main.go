package main

import (
	"encoding/json"
	"math/rand"
	"time"

	"uno-server/internal/config"
	"uno-server/internal/logging"
	"uno-server/internal/session"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type inFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if _, err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.WSURL).Msg("dial failed")
	}
	defer conn.Close()

	join := outFrame{Event: "join"}
	if cfg.RoomID != "" {
		join.Data = cfg.RoomID
	}
	if err := conn.WriteJSON(join); err != nil {
		log.Fatal().Err(err).Msg("join failed")
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	think := time.Duration(cfg.ThinkMS) * time.Millisecond
	for {
		var f inFrame
		if err := conn.ReadJSON(&f); err != nil {
			log.Info().Err(err).Msg("connection closed")
			return
		}
		switch f.Event {
		case session.EventJoined, session.EventError, session.EventGameOver:
			log.Info().Str("event", f.Event).RawJSON("data", f.Data).Msg("server")
			if f.Event != session.EventJoined {
				return
			}
		case session.EventState:
			var snap snapshot
			if err := json.Unmarshal(f.Data, &snap); err != nil {
				log.Warn().Err(err).Msg("bad state")
				continue
			}
			move, ok := decide(rnd, snap)
			if !ok {
				continue
			}
			time.Sleep(think)
			if err := conn.WriteJSON(move); err != nil {
				log.Warn().Err(err).Msg("send move failed")
				return
			}
		}
	}
}
