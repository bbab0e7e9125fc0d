package core

import (
	"fmt"
	"regexp"
)

var appIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]+$`)

// ValidateApps enforces basic app contract invariants at startup.
func ValidateApps(apps []App) error {
	seen := make(map[string]bool)
	for _, app := range apps {
		id := app.ID()
		manifest := app.Manifest()
		if id == "" {
			return fmt.Errorf("app id is empty")
		}
		if !appIDPattern.MatchString(id) {
			return fmt.Errorf("app id %q does not match %s", id, appIDPattern.String())
		}
		if manifest.AppID != id {
			return fmt.Errorf("app id mismatch: id=%q manifest=%q", id, manifest.AppID)
		}
		if seen[id] {
			return fmt.Errorf("duplicate app id: %s", id)
		}
		seen[id] = true
	}
	return nil
}
