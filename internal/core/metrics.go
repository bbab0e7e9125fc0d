package core

import "github.com/prometheus/client_golang/prometheus"

// MetricsRegistry builds a registry from app collectors.
func MetricsRegistry(apps []App) *prometheus.Registry {
	registry := prometheus.NewRegistry()

	for _, app := range apps {
		for _, collector := range app.Collectors() {
			registry.MustRegister(collector)
		}
	}

	return registry
}
