package hass

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrshann/strhost/internal/rate"
)

func assertAuth(t *testing.T, r *http.Request) {
	t.Helper()
	if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
		t.Fatalf("unexpected authorization header: %q", got)
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Token: "test-token"})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return client
}

func TestState(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assertAuth(t, r)
		if r.URL.Path != "/api/states/sensor.rental_control_airbnb_event_0" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"entity_id":"sensor.rental_control_airbnb_event_0","state":"Reserved","attributes":{"start":"2026-08-30T16:00:00-07:00","end":"2026-09-02T11:00:00-07:00"},"last_changed":"2026-08-30T00:05:00+00:00"}`)
	}))

	entity, err := client.State(context.Background(), "sensor.rental_control_airbnb_event_0")
	if err != nil {
		t.Fatalf("State error: %v", err)
	}
	if entity.State != "Reserved" {
		t.Errorf("state = %q", entity.State)
	}

	value, err := client.StateValue(context.Background(), "sensor.rental_control_airbnb_event_0", "start")
	if err != nil {
		t.Fatalf("StateValue error: %v", err)
	}
	if value != "2026-08-30T16:00:00-07:00" {
		t.Errorf("start = %q", value)
	}

	ts, err := client.StateDatetime(context.Background(), "sensor.rental_control_airbnb_event_0", "end")
	if err != nil {
		t.Fatalf("StateDatetime error: %v", err)
	}
	if ts.Day() != 2 || ts.Hour() != 11 {
		t.Errorf("unexpected end datetime: %s", ts)
	}
}

func TestStateNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Entity not found."}`, http.StatusNotFound)
	}))

	_, err := client.State(context.Background(), "sensor.missing")
	if !errors.Is(err, ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestStateClock(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"entity_id":"input_datetime.str_main_checkin_time","state":"16:00:00","attributes":{}}`)
	}))

	clock, err := client.StateClock(context.Background(), "input_datetime.str_main_checkin_time")
	if err != nil {
		t.Fatalf("StateClock error: %v", err)
	}
	if clock.Hour != 16 || clock.Minute != 0 {
		t.Errorf("unexpected clock: %+v", clock)
	}
}

func TestHistory(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assertAuth(t, r)
		if r.URL.Query().Get("filter_entity_id") != "sensor.main_front_door_operator" {
			t.Fatalf("unexpected filter: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("no_attributes") != "true" {
			t.Fatalf("expected no_attributes=true: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[[{"state":"Maria Reno cleaning fairies","last_changed":"2026-08-29T12:30:00+00:00"},{"state":"08/30 Guest","last_changed":"2026-08-30T16:05:00+00:00"}]]`)
	}))

	states, err := client.History(context.Background(), "sensor.main_front_door_operator", 15)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	changed, err := states[1].ChangedAt()
	if err != nil {
		t.Fatalf("ChangedAt error: %v", err)
	}
	if changed.UTC().Hour() != 16 {
		t.Errorf("unexpected change time: %s", changed)
	}
}

func TestCallService(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assertAuth(t, r)
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/services/climate/set_temperature" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	err := client.CallService(context.Background(), "climate", "set_temperature", map[string]any{
		"entity_id":   "climate.t9_thermostat",
		"hvac_mode":   "cool",
		"temperature": 23,
	})
	if err != nil {
		t.Fatalf("CallService error: %v", err)
	}
	if gotBody["entity_id"] != "climate.t9_thermostat" || gotBody["hvac_mode"] != "cool" {
		t.Errorf("unexpected body: %v", gotBody)
	}
}

func TestCallServiceError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad service", http.StatusBadRequest)
	}))

	err := client.CallService(context.Background(), "climate", "nope", nil)
	var statusErr HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if statusErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", statusErr.Status)
	}
}

func TestCallBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"entity_id":"sensor.x","state":"ok"}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Token: "test-token", PerMinute: 1})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	if _, err := client.State(context.Background(), "sensor.x"); err != nil {
		t.Fatalf("first call error: %v", err)
	}

	_, err = client.State(context.Background(), "sensor.x")
	var limitErr rate.RateLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if limitErr.Provider != "hass" {
		t.Errorf("provider = %s", limitErr.Provider)
	}
}

func TestParseDatetime(t *testing.T) {
	iso, err := ParseDatetime("2026-09-01T16:00:00-07:00")
	if err != nil {
		t.Fatalf("iso parse: %v", err)
	}
	if iso.Day() != 1 {
		t.Errorf("unexpected day: %d", iso.Day())
	}

	naive, err := ParseDatetime("2026-09-01 16:00:00")
	if err != nil {
		t.Fatalf("naive parse: %v", err)
	}
	if naive.Hour() != 16 {
		t.Errorf("unexpected hour: %d", naive.Hour())
	}

	if _, err := ParseDatetime("not-a-time"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestClockHelpers(t *testing.T) {
	checkin, err := ParseClock("16:00:00")
	if err != nil {
		t.Fatalf("ParseClock error: %v", err)
	}

	now := ClockOf(time.Date(2026, 9, 1, 15, 40, 0, 0, time.UTC))
	if got := now.MinutesUntil(checkin); got != 20 {
		t.Errorf("MinutesUntil = %d, want 20", got)
	}
	if !now.After(Clock{Hour: 11}) {
		t.Errorf("expected %v after 11:00", now)
	}
	if _, err := ParseClock("25:00:00"); err == nil {
		t.Fatalf("expected range error")
	}
}
