package apps

import (
	"context"

	"github.com/jrshann/strhost/apps/airbnbmgmt"
	"github.com/jrshann/strhost/internal/config"
	"github.com/jrshann/strhost/internal/core"
	"github.com/jrshann/strhost/internal/statedb"
)

func init() {
	Register(airbnbmgmt.Class, func(ctx context.Context, entry config.AppEntry, deps Deps) (core.App, error) {
		cfg, err := airbnbmgmt.ConfigFromApp(entry.Config)
		if err != nil {
			return nil, err
		}

		log := deps.Log.With().Str("app", entry.Name).Logger()
		store, err := statedb.Open(ctx, deps.StateDir, entry.Name, deps.Blob, log)
		if err != nil {
			return nil, err
		}

		appDeps := airbnbmgmt.Deps{
			Hass:  deps.Hass,
			State: store,
			Log:   log,
		}
		if deps.MQTT != nil {
			appDeps.Status = deps.MQTT
		}
		return airbnbmgmt.New(entry.Name, cfg, appDeps), nil
	})
}
