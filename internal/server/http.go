package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jrshann/strhost/internal/core"
)

// HTTPServer serves health, the app registry, metrics, and dashboards.
type HTTPServer struct {
	Server *http.Server
}

// NewMux assembles the daemon's HTTP surface.
func NewMux(apps []core.App, registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.Handle("/apps", AppsHandler(apps))
	mux.Handle("/apps/", AppsHandler(apps))
	mux.Handle("/metrics", MetricsHandler(registry))
	mux.Handle("/dashboards/", DashboardsHandler(core.DashboardsMap(apps)))
	return mux
}

func NewHTTPServer(addr string, handler http.Handler) *HTTPServer {
	return &HTTPServer{Server: &http.Server{Addr: addr, Handler: handler}}
}

func (s *HTTPServer) ListenAndServe() error {
	return s.Server.ListenAndServe()
}
