package httptransport

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"uno-server/internal/session"
	"uno-server/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type ResultLister interface {
	ListResults(ctx context.Context, limit int) ([]store.GameResult, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the pieces the router serves. Results and DB may be nil when
// no database is configured.
type Deps struct {
	Directory   *session.Directory
	WS          http.HandlerFunc
	Results     ResultLister
	DB          Pinger
	LogRequests bool
}

func NewRouter(deps Deps) *chi.Mux {
	public := NewPublicHandlers(deps.Directory, deps.Results)
	apiLog := func(next http.Handler) http.Handler { return next }
	if deps.LogRequests {
		apiLog = APILogMiddleware()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLog).Get("/healthz", HealthHandler(deps.DB))
	r.Get("/ws", deps.WS)
	r.Get("/debug/vars", expvar.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLog)
		r.Get("/public/rooms", public.Rooms())
		r.Get("/public/results", public.Results())
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 8)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("%s %s; ", rt.Method, rt.Path))
	}
	log.Info().Int("count", len(routes)).Str("routes", strings.TrimSuffix(b.String(), "; ")).Msg("routes registered")
}
