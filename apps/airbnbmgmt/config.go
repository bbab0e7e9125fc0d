package airbnbmgmt

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jrshann/strhost/internal/config"
	"github.com/jrshann/strhost/internal/hass"
)

const (
	defaultCheckIntervalMins  = 15
	defaultDefaultCheckinTime = "16:00:00"
	defaultCheckoutTime       = "11:00:00"
	defaultCleanerCheckTime   = "14:00:00"

	// Front door operator log entries: cleaners are identified by name,
	// guests by their MM/DD door code label.
	defaultCleanerPattern = `(?i)^maria\s+reno\s+cleaning\s+fairies`
	defaultGuestPattern   = `^\d{2}/\d{2}`
)

// Config defines runtime configuration for the management app.
type Config struct {
	Units []Unit

	CheckInterval      time.Duration
	DefaultCheckinTime hass.Clock
	CheckoutTime       hass.Clock
	CleanerCheckTime   hass.Clock

	NotifyService string
	NotifyTargets []string

	CleanerPattern *regexp.Regexp
	GuestPattern   *regexp.Regexp
}

type rawArgs struct {
	Units              []Unit   `yaml:"units"`
	CheckIntervalMins  int      `yaml:"check_interval_mins"`
	DefaultCheckinTime string   `yaml:"default_checkin_time"`
	CheckoutTime       string   `yaml:"checkout_time"`
	CleanerCheckTime   string   `yaml:"cleaner_check_time"`
	NotifyService      string   `yaml:"notify_service"`
	NotifyTargets      []string `yaml:"notify_targets"`
	CleanerPattern     string   `yaml:"cleaner_pattern"`
	GuestPattern       string   `yaml:"guest_pattern"`
}

// ConfigFromApp decodes and validates the app's passthrough args.
func ConfigFromApp(app config.AppConfig) (Config, error) {
	var raw rawArgs
	if err := app.DecodeArgs(&raw); err != nil {
		return Config{}, err
	}

	if len(raw.Units) == 0 {
		return Config{}, fmt.Errorf("units is required")
	}

	seen := make(map[string]bool)
	for i, unit := range raw.Units {
		if unit.Name == "" {
			return Config{}, fmt.Errorf("units[%d]: name is required", i)
		}
		if unit.Code == "" {
			return Config{}, fmt.Errorf("units[%d]: code is required", i)
		}
		if unit.CalCode == "" {
			return Config{}, fmt.Errorf("units[%d]: cal_code is required", i)
		}
		if unit.ThermostatKey == "" {
			return Config{}, fmt.Errorf("units[%d]: thermostat_key is required", i)
		}
		if seen[unit.Code] {
			return Config{}, fmt.Errorf("duplicate unit code: %s", unit.Code)
		}
		seen[unit.Code] = true
	}

	intervalMins := raw.CheckIntervalMins
	if intervalMins == 0 {
		intervalMins = defaultCheckIntervalMins
	}
	if intervalMins < 0 {
		return Config{}, fmt.Errorf("check_interval_mins must be positive")
	}

	defaultCheckin, err := parseClockOr(raw.DefaultCheckinTime, defaultDefaultCheckinTime)
	if err != nil {
		return Config{}, fmt.Errorf("default_checkin_time: %w", err)
	}
	checkout, err := parseClockOr(raw.CheckoutTime, defaultCheckoutTime)
	if err != nil {
		return Config{}, fmt.Errorf("checkout_time: %w", err)
	}
	cleanerCheck, err := parseClockOr(raw.CleanerCheckTime, defaultCleanerCheckTime)
	if err != nil {
		return Config{}, fmt.Errorf("cleaner_check_time: %w", err)
	}

	cleanerRe, err := compileOr(raw.CleanerPattern, defaultCleanerPattern)
	if err != nil {
		return Config{}, fmt.Errorf("cleaner_pattern: %w", err)
	}
	guestRe, err := compileOr(raw.GuestPattern, defaultGuestPattern)
	if err != nil {
		return Config{}, fmt.Errorf("guest_pattern: %w", err)
	}

	return Config{
		Units:              raw.Units,
		CheckInterval:      time.Duration(intervalMins) * time.Minute,
		DefaultCheckinTime: defaultCheckin,
		CheckoutTime:       checkout,
		CleanerCheckTime:   cleanerCheck,
		NotifyService:      raw.NotifyService,
		NotifyTargets:      raw.NotifyTargets,
		CleanerPattern:     cleanerRe,
		GuestPattern:       guestRe,
	}, nil
}

func parseClockOr(value, fallback string) (hass.Clock, error) {
	if value == "" {
		value = fallback
	}
	return hass.ParseClock(value)
}

func compileOr(pattern, fallback string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = fallback
	}
	return regexp.Compile(pattern)
}
