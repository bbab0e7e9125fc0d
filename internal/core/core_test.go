package core

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

type stubApp struct {
	id            string
	name          string
	class         string
	version       string
	dashboards    []Dashboard
	health        HealthStatus
	healthMessage string
}

func (s stubApp) ID() string { return s.id }

func (s stubApp) Manifest() Manifest {
	return Manifest{
		AppID:       s.id,
		DisplayName: s.name,
		Class:       s.class,
		Version:     s.version,
	}
}

func (s stubApp) Dashboards() []Dashboard { return s.dashboards }

func (s stubApp) Collectors() []prometheus.Collector { return nil }

func (s stubApp) Health() HealthStatus { return s.health }

func (s stubApp) HealthMessage() string { return s.healthMessage }

func newStubApp(id string) stubApp {
	return stubApp{
		id:         id,
		name:       "Demo",
		class:      "Demo",
		version:    "0.1.0",
		health:     HealthHealthy,
		dashboards: []Dashboard{{Name: "demo", JSON: []byte("{}")}},
	}
}

func TestSummaries(t *testing.T) {
	apps := []App{newStubApp("demo")}

	rows := Summaries(apps)
	if len(rows) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(rows))
	}

	got := rows[0]
	if got.AppID != "demo" || got.DisplayName != "Demo" || got.Version != "0.1.0" {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got.Status != string(HealthHealthy) {
		t.Fatalf("unexpected health status: %s", got.Status)
	}
}

func TestDescribe(t *testing.T) {
	apps := []App{newStubApp("demo")}

	desc := Describe(apps, "demo")
	if desc == nil {
		t.Fatalf("expected descriptor")
	}
	if desc.AppID != "demo" {
		t.Fatalf("unexpected app id: %s", desc.AppID)
	}
	if len(desc.Dashboards) != 1 || desc.Dashboards[0] != "/dashboards/demo/demo.json" {
		t.Fatalf("unexpected dashboards: %v", desc.Dashboards)
	}

	if Describe(apps, "missing") != nil {
		t.Fatalf("expected nil for unknown app")
	}
}

func TestValidateApps(t *testing.T) {
	if err := ValidateApps([]App{newStubApp("demo"), newStubApp("extra")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateApps([]App{newStubApp("demo"), newStubApp("demo")}); err == nil {
		t.Fatalf("expected error for duplicate app id")
	}

	bad := newStubApp("Demo-App")
	if err := ValidateApps([]App{bad}); err == nil {
		t.Fatalf("expected error for invalid app id")
	}

	mismatch := newStubApp("demo")
	mismatch.id = "other"
	mismatch.name = "Demo"
	if err := ValidateApps([]App{appWithManifestID{mismatch}}); err == nil {
		t.Fatalf("expected error for manifest mismatch")
	}
}

// appWithManifestID reports a manifest id that disagrees with ID().
type appWithManifestID struct {
	stubApp
}

func (a appWithManifestID) Manifest() Manifest {
	m := a.stubApp.Manifest()
	m.AppID = "manifest_id"
	return m
}

func TestDashboardsMap(t *testing.T) {
	apps := []App{newStubApp("demo")}

	dashboards := DashboardsMap(apps)
	data, ok := dashboards["/dashboards/demo/demo.json"]
	if !ok {
		t.Fatalf("dashboard path missing: %v", dashboards)
	}
	if string(data) != "{}" {
		t.Fatalf("unexpected dashboard content: %s", data)
	}
}
