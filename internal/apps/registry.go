// Package apps maps configured app classes to their compiled-in
// implementations and constructs app instances with host services.
package apps

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jrshann/strhost/internal/config"
	"github.com/jrshann/strhost/internal/core"
	"github.com/jrshann/strhost/internal/hamqtt"
	"github.com/jrshann/strhost/internal/hass"
	"github.com/jrshann/strhost/internal/statedb"
)

// Deps are the host services available to app factories.
type Deps struct {
	Hass     *hass.Client
	StateDir string
	Blob     statedb.BlobStore
	MQTT     *hamqtt.Publisher // nil when MQTT is not configured
	Log      zerolog.Logger
}

// Factory builds an app instance from its configuration entry.
type Factory func(ctx context.Context, entry config.AppEntry, deps Deps) (core.App, error)

var registry = map[string]Factory{}

// Register adds a compiled-in app class to the registry.
func Register(class string, factory Factory) {
	if _, dup := registry[class]; dup {
		panic(fmt.Sprintf("apps: class %q registered twice", class))
	}
	registry[class] = factory
}

// Classes returns the registered class names, sorted.
func Classes() []string {
	out := make([]string, 0, len(registry))
	for class := range registry {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}

// Build constructs one app per config entry, in document order. An entry
// naming an unknown class is an error: a typo there means some automation
// silently never runs.
func Build(ctx context.Context, entries []config.AppEntry, deps Deps) ([]core.App, error) {
	out := make([]core.App, 0, len(entries))
	for _, entry := range entries {
		factory, ok := registry[entry.Config.Class]
		if !ok {
			return nil, fmt.Errorf("app %s: unknown class %q (have %v)", entry.Name, entry.Config.Class, Classes())
		}
		app, err := factory(ctx, entry, deps)
		if err != nil {
			return nil, fmt.Errorf("app %s: %w", entry.Name, err)
		}
		out = append(out, app)
	}
	return out, nil
}
