package main

import (
	"uno-server/internal/config"
	"uno-server/internal/session"
	"uno-server/internal/store"
	httptransport "uno-server/internal/transport/http"
	"uno-server/internal/ws"

	"github.com/go-chi/chi/v5"
)

type gameServer struct {
	dir    *session.Directory
	store  *store.Store
	router *chi.Mux
}

// newGameServer wires the room directory, websocket endpoint and HTTP
// routes. st may be nil.
func newGameServer(cfg config.AppConfig, st *store.Store) *gameServer {
	opts := session.Options{
		TurnSeconds:   cfg.Server.TurnSeconds,
		RecordTimeout: cfg.Server.ResultTimeout(),
	}
	deps := httptransport.Deps{LogRequests: cfg.Log.HTTPRequests}
	if st != nil {
		opts.Recorder = st
		deps.Results = st
		deps.DB = st
	}
	dir := session.NewDirectory(opts)
	deps.Directory = dir
	deps.WS = ws.NewServer(dir, cfg.Server.AllowedOrigin).HandleWS

	return &gameServer{dir: dir, store: st, router: httptransport.NewRouter(deps)}
}

// close stops every room, then waits for queued result writes before the
// pool goes away.
func (s *gameServer) close() {
	s.dir.Close()
	if s.store != nil {
		s.store.Close()
	}
}

func logRoutes(r chi.Router) {
	httptransport.LogRoutes(r)
}
