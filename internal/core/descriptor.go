package core

// AppSummary is the status row reported for each running app.
type AppSummary struct {
	AppID       string `json:"app_id"`
	DisplayName string `json:"display_name"`
	Class       string `json:"class"`
	Version     string `json:"version"`
	Status      string `json:"status"`
}

// AppDescriptor is the full status report for one app.
type AppDescriptor struct {
	AppSummary
	HealthMessage string   `json:"health_message,omitempty"`
	Dashboards    []string `json:"dashboards,omitempty"`
}

// Summaries builds status rows for the status endpoint.
func Summaries(apps []App) []AppSummary {
	out := make([]AppSummary, 0, len(apps))
	for _, app := range apps {
		out = append(out, summarize(app))
	}
	return out
}

// Describe builds the full descriptor for one app, or nil if unknown.
func Describe(apps []App, id string) *AppDescriptor {
	for _, app := range apps {
		if app.ID() != id {
			continue
		}

		desc := &AppDescriptor{
			AppSummary:    summarize(app),
			HealthMessage: app.HealthMessage(),
		}
		for _, dash := range app.Dashboards() {
			desc.Dashboards = append(desc.Dashboards, "/dashboards/"+app.ID()+"/"+dash.Name+".json")
		}
		return desc
	}
	return nil
}

func summarize(app App) AppSummary {
	manifest := app.Manifest()
	return AppSummary{
		AppID:       manifest.AppID,
		DisplayName: manifest.DisplayName,
		Class:       manifest.Class,
		Version:     manifest.Version,
		Status:      string(app.Health()),
	}
}
