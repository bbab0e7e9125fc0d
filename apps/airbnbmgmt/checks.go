package airbnbmgmt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrshann/strhost/internal/core"
	"github.com/jrshann/strhost/internal/hamqtt"
	"github.com/jrshann/strhost/internal/hass"
)

const (
	historyDays = 15

	// Start pre-cooling this close to the checkin time.
	hvacLeadMinutes = 30

	hvacMode        = "cool"
	hvacTemperature = 23
)

// checkAll runs the management activities for every unit.
func (a *App) checkAll(ctx context.Context) {
	a.log.Info().Msg("executing STR management activities")
	now := a.now()

	var failed []string
	for _, unit := range a.cfg.Units {
		if err := a.checkUnit(ctx, unit, now); err != nil {
			failed = append(failed, unit.Code)
			a.metrics.checkErrors.Inc()
			a.log.Error().Err(err).Str("unit", unit.Code).Msg("unit check failed")
		}
	}

	if len(failed) > 0 {
		a.metrics.checkSuccess.Set(0)
		a.setHealth(core.HealthDegraded, fmt.Sprintf("check failed for units: %v", failed))
		return
	}
	a.metrics.checkSuccess.Set(1)
	a.metrics.lastSuccess.Set(float64(now.Unix()))
	a.setHealth(core.HealthHealthy, "")
}

func (a *App) checkUnit(ctx context.Context, unit Unit, now time.Time) error {
	events, err := a.rentalEventsFor(ctx, unit.CalCode, now)
	if err != nil {
		return fmt.Errorf("rental events: %w", err)
	}

	var errs []error

	if err := a.resetCheckinTime(ctx, unit, now); err != nil {
		errs = append(errs, fmt.Errorf("reset checkin time: %w", err))
	}

	if events.checkoutToday != "" {
		if err := a.hvacOff(ctx, unit, now); err != nil {
			errs = append(errs, fmt.Errorf("hvac off: %w", err))
		}
	}

	if events.checkinToday != "" {
		if err := a.cleanerAlert(ctx, unit, now); err != nil {
			errs = append(errs, fmt.Errorf("cleaner alert: %w", err))
		}
		if err := a.hvacOn(ctx, unit, now); err != nil {
			errs = append(errs, fmt.Errorf("hvac on: %w", err))
		}
	}

	a.metrics.setUnitState(unit, events)

	if a.status != nil {
		state := hamqtt.UnitState{
			Occupied:      events.checkinActive != "",
			CheckinToday:  events.checkinToday != "",
			CheckoutToday: events.checkoutToday != "",
			CheckedAt:     now,
		}
		if err := a.status.PublishUnitState(a.id, unit.Code, state); err != nil {
			a.log.Warn().Err(err).Str("unit", unit.Code).Msg("status publish failed")
		}
	}

	return errors.Join(errs...)
}

// resetCheckinTime resets the unit's checkin time input right after
// midnight so a custom checkin time never persists across days.
func (a *App) resetCheckinTime(ctx context.Context, unit Unit, now time.Time) error {
	key := unit.Code + "_last_checkin_reset"
	if a.db.IsToday(key, now) {
		return nil
	}

	a.log.Info().Str("unit", unit.Name).Stringer("checkin_time", a.cfg.DefaultCheckinTime).
		Msg("resetting checkin time")

	err := a.hass.CallService(ctx, "input_datetime", "set_datetime", map[string]any{
		"entity_id": checkinTimeEntity(unit),
		"time":      a.cfg.DefaultCheckinTime.String(),
	})
	if err != nil {
		return err
	}

	a.metrics.actions.WithLabelValues(unit.Code, "checkin_reset").Inc()
	return a.db.SetToday(ctx, key, now)
}

// hvacOff turns off the thermostat after checkout time on checkout day.
func (a *App) hvacOff(ctx context.Context, unit Unit, now time.Time) error {
	key := unit.Code + "_last_hvac_off"
	if !hass.ClockOf(now).After(a.cfg.CheckoutTime) || a.db.IsToday(key, now) {
		return nil
	}

	a.log.Info().Str("unit", unit.Name).Msg("turning off thermostat")

	err := a.hass.CallService(ctx, "climate", "turn_off", map[string]any{
		"entity_id": unit.ThermostatKey,
	})
	if err != nil {
		return err
	}

	a.metrics.actions.WithLabelValues(unit.Code, "hvac_off").Inc()
	return a.db.SetToday(ctx, key, now)
}

// hvacOn pre-conditions the unit shortly before the guest's checkin time.
func (a *App) hvacOn(ctx context.Context, unit Unit, now time.Time) error {
	key := unit.Code + "_last_hvac_on"
	if a.db.IsToday(key, now) {
		return nil
	}

	checkin, err := a.hass.StateClock(ctx, checkinTimeEntity(unit))
	if err != nil {
		return err
	}

	if hass.ClockOf(now).MinutesUntil(checkin) >= hvacLeadMinutes {
		return nil
	}

	a.log.Info().Str("unit", unit.Name).Msg("turning on thermostat")

	err = a.hass.CallService(ctx, "climate", "set_temperature", map[string]any{
		"entity_id":   unit.ThermostatKey,
		"hvac_mode":   hvacMode,
		"temperature": hvacTemperature,
	})
	if err != nil {
		return err
	}

	a.metrics.actions.WithLabelValues(unit.Code, "hvac_on").Inc()
	return a.db.SetToday(ctx, key, now)
}

// cleanerAlert checks whether the cleaners have arrived on checkin day and
// sends notifications when the last door unlock was a guest.
func (a *App) cleanerAlert(ctx context.Context, unit Unit, now time.Time) error {
	key := unit.Code + "_last_cleaner_check"
	if !hass.ClockOf(now).After(a.cfg.CleanerCheckTime) || a.db.IsToday(key, now) {
		return nil
	}

	cleanerUnlock, guestUnlock, err := a.lastUnlocks(ctx, unit)
	if err != nil {
		// Unlikely, and probably means something is wrong. The marker is
		// left unset so the next pass retries.
		return err
	}

	if guestUnlock.After(cleanerUnlock) {
		a.log.Warn().Str("unit", unit.Name).
			Time("cleaner_unlock", cleanerUnlock).
			Time("guest_unlock", guestUnlock).
			Msg("ALERT - no recent cleaning before guest arrival")
		a.metrics.actions.WithLabelValues(unit.Code, "cleaner_alert").Inc()
		a.notifyCleanerAlert(ctx, unit)
	} else {
		a.log.Info().Str("unit", unit.Name).
			Time("cleaner_unlock", cleanerUnlock).
			Time("guest_unlock", guestUnlock).
			Msg("OK - checked for recent cleaning")
	}

	return a.db.SetToday(ctx, key, now)
}

// lastUnlocks finds the most recent front-door unlocks by the cleaners and
// by a guest from the door operator history.
func (a *App) lastUnlocks(ctx context.Context, unit Unit) (cleaner, guest time.Time, err error) {
	entity := fmt.Sprintf("sensor.%s_front_door_operator", unit.Code)
	unlocks, err := a.hass.History(ctx, entity, historyDays)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	// Work backwards to find the most recent of each.
	for i := len(unlocks) - 1; i >= 0; i-- {
		entry := unlocks[i]
		if cleaner.IsZero() && a.cfg.CleanerPattern.MatchString(entry.State) {
			if cleaner, err = entry.ChangedAt(); err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		if guest.IsZero() && a.cfg.GuestPattern.MatchString(entry.State) {
			if guest, err = entry.ChangedAt(); err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		if !cleaner.IsZero() && !guest.IsZero() {
			break
		}
	}

	if cleaner.IsZero() || guest.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("could not determine last unlock times for %s", entity)
	}
	return cleaner, guest, nil
}

func (a *App) notifyCleanerAlert(ctx context.Context, unit Unit) {
	if a.cfg.NotifyService == "" {
		a.log.Warn().Str("unit", unit.Name).Msg("no notify service configured; alert not sent")
		return
	}

	for _, target := range a.cfg.NotifyTargets {
		err := a.hass.CallService(ctx, "notify", a.cfg.NotifyService, map[string]any{
			"target":  target,
			"title":   fmt.Sprintf("[%s] Check Cleaners", unit.Name),
			"message": fmt.Sprintf("Check cleaners for %s", unit.Name),
		})
		if err != nil {
			a.log.Error().Err(err).Str("target", target).Msg("cleaner alert notification failed")
		}
	}
}

func checkinTimeEntity(unit Unit) string {
	return fmt.Sprintf("input_datetime.str_%s_checkin_time", unit.Code)
}
