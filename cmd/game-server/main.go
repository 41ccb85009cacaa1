package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uno-server/internal/config"
	"uno-server/internal/logging"
	"uno-server/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logCloser, err := logging.Init(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}

	srv := newGameServer(cfg, st)
	logRoutes(srv.router)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Int("turn_seconds", cfg.Server.TurnSeconds).Bool("results", st != nil).Msg("http listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	srv.close()
}

// openStore connects only when a DSN is configured; a nil store turns
// result recording off.
func openStore(ctx context.Context, cfg config.ServerConfig) (*store.Store, error) {
	if cfg.PostgresDSN == "" {
		log.Info().Msg("POSTGRES_DSN unset; game results are not recorded")
		return nil, nil
	}
	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := st.Ping(ctx); err != nil {
		st.Close()
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
