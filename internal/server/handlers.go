package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrshann/strhost/internal/core"
)

// HealthHandler reports daemon liveness; degraded apps don't fail it.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// AppsHandler serves the app registry: a summary list on /apps and a full
// descriptor on /apps/{id}.
func AppsHandler(apps []core.App) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/apps"), "/")

		if id == "" {
			writeJSON(w, core.Summaries(apps))
			return
		}

		desc := core.Describe(apps, id)
		if desc == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, desc)
	})
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(value)
}
