package httptransport

import (
	"net/http"

	"uno-server/internal/session"
	"uno-server/internal/store"

	"github.com/rs/zerolog/log"
)

type PublicHandlers struct {
	dir     *session.Directory
	results ResultLister
}

func NewPublicHandlers(dir *session.Directory, results ResultLister) *PublicHandlers {
	return &PublicHandlers{dir: dir, results: results}
}

// Rooms lists live rooms so clients can pick one to join.
func (h *PublicHandlers) Rooms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricRoomsQueryTotal.Add(1)
		writeJSON(w, map[string]any{"items": h.dir.Rooms(r.Context())})
	}
}

func (h *PublicHandlers) Results() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricResultsQueryTotal.Add(1)
		if h.results == nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "results_disabled")
			return
		}
		limit := ParseLimit(r, store.DefaultResultsLimit, store.MaxResultsLimit)
		items, err := h.results.ListResults(r.Context(), limit)
		if err != nil {
			metricResultsQueryErrors.Add(1)
			log.Error().Err(err).Msg("list results failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{"items": items, "limit": limit})
	}
}

func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			writeJSON(w, map[string]any{"ok": true, "db": "disabled"})
			return
		}
		if err := db.Ping(r.Context()); err != nil {
			metricHealthCheckFailures.Add(1)
			writeJSONStatus(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, map[string]any{"ok": true, "db": "up"})
	}
}
