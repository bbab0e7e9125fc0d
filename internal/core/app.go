// Package core defines the contract between the daemon and its apps.
package core

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// HealthStatus represents app health states for status reporting.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "HEALTHY"
	HealthDegraded HealthStatus = "DEGRADED"
	HealthError    HealthStatus = "ERROR"
)

// Dashboard is a Grafana dashboard asset embedded by the app.
type Dashboard struct {
	Name string
	JSON []byte
}

// Manifest describes an app for discovery and status metadata.
type Manifest struct {
	AppID       string
	DisplayName string
	Class       string
	Version     string
}

// App is the compile-time contract for all strhost apps.
type App interface {
	ID() string
	Manifest() Manifest
	Dashboards() []Dashboard
	Collectors() []prometheus.Collector
	Health() HealthStatus
	HealthMessage() string
}

// Runner is implemented by apps that drive their own periodic work.
type Runner interface {
	Run(ctx context.Context) error
}

// Terminator is implemented by apps that need shutdown cleanup.
type Terminator interface {
	Terminate()
}
