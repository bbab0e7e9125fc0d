// Package airbnbmgmt manages short-term-rental units through Home
// Assistant: thermostat control around checkin/checkout, daily checkin-time
// resets, and cleaner arrival checks.
package airbnbmgmt

import (
	"context"
	_ "embed"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jrshann/strhost/internal/core"
	"github.com/jrshann/strhost/internal/hamqtt"
	"github.com/jrshann/strhost/internal/hass"
	"github.com/jrshann/strhost/internal/statedb"
)

const (
	Class   = "AirbnbManagement"
	version = "0.2.0"
)

//go:embed dashboard.json
var dashboardJSON []byte

// HassAPI is the slice of the Home Assistant client the app needs.
type HassAPI interface {
	StateDatetime(ctx context.Context, entityID, attribute string) (time.Time, error)
	StateClock(ctx context.Context, entityID string) (hass.Clock, error)
	History(ctx context.Context, entityID string, days int) ([]hass.HistoryState, error)
	CallService(ctx context.Context, domain, service string, data map[string]any) error
}

// StatusPublisher publishes per-unit status over MQTT.
type StatusPublisher interface {
	PublishUnitDiscovery(appID string, unit hamqtt.UnitInfo) error
	PublishUnitState(appID, code string, state hamqtt.UnitState) error
}

// Deps are the host services handed to the app at construction.
type Deps struct {
	Hass   HassAPI
	State  *statedb.Store
	Status StatusPublisher // optional
	Log    zerolog.Logger
}

// App runs the management loop for a set of units.
type App struct {
	id     string
	cfg    Config
	hass   HassAPI
	db     *statedb.Store
	status StatusPublisher
	log    zerolog.Logger

	metrics *metrics
	now     func() time.Time

	// Health is written by the check loop and read by status handlers.
	healthMu      sync.Mutex
	health        core.HealthStatus
	healthMessage string
}

// New constructs the app from its decoded configuration.
func New(id string, cfg Config, deps Deps) *App {
	return &App{
		id:      id,
		cfg:     cfg,
		hass:    deps.Hass,
		db:      deps.State,
		status:  deps.Status,
		log:     deps.Log,
		metrics: newMetrics(),
		now:     time.Now,
		health:  core.HealthHealthy,
	}
}

func (a *App) ID() string { return a.id }

func (a *App) Manifest() core.Manifest {
	return core.Manifest{
		AppID:       a.id,
		DisplayName: "Airbnb Management",
		Class:       Class,
		Version:     version,
	}
}

func (a *App) Dashboards() []core.Dashboard {
	return []core.Dashboard{{Name: "str-overview", JSON: dashboardJSON}}
}

func (a *App) Collectors() []prometheus.Collector {
	return a.metrics.collectors()
}

func (a *App) Health() core.HealthStatus {
	a.healthMu.Lock()
	defer a.healthMu.Unlock()
	return a.health
}

func (a *App) HealthMessage() string {
	a.healthMu.Lock()
	defer a.healthMu.Unlock()
	return a.healthMessage
}

// Run executes the management checks immediately and then on every
// interval tick until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.status != nil {
		for _, unit := range a.cfg.Units {
			if err := a.status.PublishUnitDiscovery(a.id, hamqtt.UnitInfo{Name: unit.Name, Code: unit.Code}); err != nil {
				a.log.Warn().Err(err).Str("unit", unit.Code).Msg("discovery publish failed")
			}
		}
	}

	a.checkAll(ctx)

	ticker := time.NewTicker(a.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.checkAll(ctx)
		}
	}
}

// Terminate logs the final marker snapshot, mirroring what initialization
// logs on startup.
func (a *App) Terminate() {
	a.log.Info().Any("markers", a.db.Snapshot()).Msg("terminating")
}

func (a *App) setHealth(status core.HealthStatus, message string) {
	a.healthMu.Lock()
	defer a.healthMu.Unlock()
	a.health = status
	a.healthMessage = message
}
