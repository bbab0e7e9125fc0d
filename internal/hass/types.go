package hass

import (
	"fmt"
	"time"
)

// Entity is the REST API representation of an entity state.
type Entity struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged string         `json:"last_changed"`
	LastUpdated string         `json:"last_updated"`
}

// HistoryState is one recorded state change from the history API.
type HistoryState struct {
	State       string `json:"state"`
	LastChanged string `json:"last_changed"`
}

// ChangedAt parses the recorded change timestamp.
func (h HistoryState) ChangedAt() (time.Time, error) {
	return ParseTimestamp(h.LastChanged)
}

// ParseTimestamp parses the ISO timestamps the API emits
// ("2023-12-27T15:28:26.287133+00:00").
func ParseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts, nil
}

// ParseDatetime parses entity datetime values, which appear either as ISO
// timestamps or as naive "2006-01-02 15:04:05" strings (input_datetime).
func ParseDatetime(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse datetime %q: %w", value, err)
	}
	return ts, nil
}

// Clock is a time of day without a date, as reported by input_datetime
// entities configured without a date ("16:00:00").
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock parses an "HH:MM:SS" or "HH:MM" value.
func ParseClock(value string) (Clock, error) {
	var c Clock
	if _, err := fmt.Sscanf(value, "%d:%d:%d", &c.Hour, &c.Minute, &c.Second); err != nil {
		if _, err := fmt.Sscanf(value, "%d:%d", &c.Hour, &c.Minute); err != nil {
			return Clock{}, fmt.Errorf("parse clock %q", value)
		}
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 || c.Second < 0 || c.Second > 59 {
		return Clock{}, fmt.Errorf("clock %q out of range", value)
	}
	return c, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Minutes returns the clock position in minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// ClockOf extracts the time-of-day component of t.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// MinutesUntil returns the whole minutes from c until other. Negative when
// other is earlier in the day than c.
func (c Clock) MinutesUntil(other Clock) int {
	return other.Minutes() - c.Minutes()
}

// After reports whether c is later in the day than other.
func (c Clock) After(other Clock) bool {
	if c.Hour != other.Hour {
		return c.Hour > other.Hour
	}
	if c.Minute != other.Minute {
		return c.Minute > other.Minute
	}
	return c.Second > other.Second
}
