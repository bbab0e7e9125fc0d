package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jrshann/strhost/internal/core"
)

type stubApp struct {
	id     string
	health core.HealthStatus
}

func (s stubApp) ID() string { return s.id }

func (s stubApp) Manifest() core.Manifest {
	return core.Manifest{AppID: s.id, DisplayName: "Stub", Class: "Stub", Version: "0.0.1"}
}

func (s stubApp) Dashboards() []core.Dashboard {
	return []core.Dashboard{{Name: "overview", JSON: []byte(`{"title":"stub"}`)}}
}

func (s stubApp) Collectors() []prometheus.Collector { return nil }

func (s stubApp) Health() core.HealthStatus { return s.health }

func (s stubApp) HealthMessage() string { return "" }

func TestHealthEndpoint(t *testing.T) {
	apps := []core.App{stubApp{id: "airbnb_mgmt", health: core.HealthHealthy}}
	mux := NewMux(apps, core.MetricsRegistry(apps))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 || rec.Body.String() != "ok" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestAppsList(t *testing.T) {
	apps := []core.App{
		stubApp{id: "airbnb_mgmt", health: core.HealthHealthy},
		stubApp{id: "another", health: core.HealthDegraded},
	}
	mux := NewMux(apps, core.MetricsRegistry(apps))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/apps", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []core.AppSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].AppID != "airbnb_mgmt" || got[1].Status != "DEGRADED" {
		t.Fatalf("unexpected summaries: %+v", got)
	}
}

func TestAppsDescribe(t *testing.T) {
	apps := []core.App{stubApp{id: "airbnb_mgmt", health: core.HealthHealthy}}
	mux := NewMux(apps, core.MetricsRegistry(apps))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/apps/airbnb_mgmt", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var got core.AppDescriptor
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AppID != "airbnb_mgmt" || len(got.Dashboards) != 1 {
		t.Fatalf("unexpected descriptor: %+v", got)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/apps/nope", nil))
	if rec.Code != 404 {
		t.Fatalf("missing app status = %d", rec.Code)
	}
}

func TestDashboardsEndpoint(t *testing.T) {
	apps := []core.App{stubApp{id: "airbnb_mgmt", health: core.HealthHealthy}}
	mux := NewMux(apps, core.MetricsRegistry(apps))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/dashboards/airbnb_mgmt/overview.json", nil))
	if rec.Code != 200 {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %s", rec.Header().Get("Content-Type"))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/dashboards/airbnb_mgmt/missing.json", nil))
	if rec.Code != 404 {
		t.Fatalf("missing dashboard status = %d", rec.Code)
	}
}
