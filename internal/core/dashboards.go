package core

import (
	"fmt"
	"os"
	"path/filepath"
)

// DashboardsMap materializes dashboard content to URL paths.
func DashboardsMap(apps []App) map[string][]byte {
	result := make(map[string][]byte)
	for _, app := range apps {
		for _, dash := range app.Dashboards() {
			path := "/dashboards/" + app.ID() + "/" + dash.Name + ".json"
			result[path] = dash.JSON
		}
	}
	return result
}

// WriteDashboards writes dashboards to disk for Grafana provisioning.
func WriteDashboards(dir string, apps []App) error {
	if dir == "" {
		return nil
	}

	for _, app := range apps {
		for _, dash := range app.Dashboards() {
			appDir := filepath.Join(dir, app.ID())
			if err := os.MkdirAll(appDir, 0o755); err != nil {
				return fmt.Errorf("create dashboard dir: %w", err)
			}
			path := filepath.Join(appDir, dash.Name+".json")
			if err := os.WriteFile(path, dash.JSON, 0o644); err != nil {
				return fmt.Errorf("write dashboard %s: %w", path, err)
			}
		}
	}

	return nil
}
