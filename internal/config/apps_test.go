package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const appsDoc = `
airbnb_mgmt:
  module: airbnb_mgmt
  class: AirbnbManagement
  units:
    - name: Main
      code: main
      cal_code: airbnb
      thermostat_key: climate.t9_thermostat
    - name: ADU
      code: adu
      cal_code: adu_unit
      thermostat_key: climate.adu_heat_pump_heat_pump
`

func TestParseApps(t *testing.T) {
	entries, err := ParseApps([]byte(appsDoc))
	if err != nil {
		t.Fatalf("ParseApps error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 app, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Name != "airbnb_mgmt" {
		t.Errorf("name = %q", entry.Name)
	}
	if entry.Config.Module != "airbnb_mgmt" || entry.Config.Class != "AirbnbManagement" {
		t.Errorf("unexpected binding: module=%q class=%q", entry.Config.Module, entry.Config.Class)
	}

	units, ok := entry.Config.Args["units"].([]any)
	if !ok {
		t.Fatalf("units missing from args: %#v", entry.Config.Args)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}

	first, ok := units[0].(map[string]any)
	if !ok {
		t.Fatalf("unit 0 is not a mapping: %#v", units[0])
	}
	want := map[string]any{
		"name":           "Main",
		"code":           "main",
		"cal_code":       "airbnb",
		"thermostat_key": "climate.t9_thermostat",
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("unit 0 mismatch (-want +got):\n%s", diff)
	}

	second, ok := units[1].(map[string]any)
	if !ok {
		t.Fatalf("unit 1 is not a mapping: %#v", units[1])
	}
	if second["code"] != "adu" || second["thermostat_key"] != "climate.adu_heat_pump_heat_pump" {
		t.Errorf("unit 1 mismatch: %#v", second)
	}
}

func TestParseAppsPreservesOrder(t *testing.T) {
	doc := `
first_app:
  module: a
  class: A
second_app:
  module: b
  class: B
`
	entries, err := ParseApps([]byte(doc))
	if err != nil {
		t.Fatalf("ParseApps error: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "first_app" || entries[1].Name != "second_app" {
		t.Fatalf("unexpected order: %+v", entries)
	}
}

func TestParseAppsRoundTrip(t *testing.T) {
	entries, err := ParseApps([]byte(appsDoc))
	if err != nil {
		t.Fatalf("ParseApps error: %v", err)
	}

	data, err := MarshalApps(entries)
	if err != nil {
		t.Fatalf("MarshalApps error: %v", err)
	}

	again, err := ParseApps(data)
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	if diff := cmp.Diff(entries, again); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestParseAppsErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"missing module", "demo_app:\n  class: Demo\n"},
		{"missing class", "demo_app:\n  module: demo\n"},
		{"bad app name", "Demo-App:\n  module: demo\n  class: Demo\n"},
		{"duplicate app", "demo_app:\n  module: a\n  class: A\ndemo_app:\n  module: b\n  class: B\n"},
		{"top level sequence", "- module: a\n  class: A\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseApps([]byte(tc.doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDecodeArgs(t *testing.T) {
	entries, err := ParseApps([]byte(appsDoc))
	if err != nil {
		t.Fatalf("ParseApps error: %v", err)
	}

	var args struct {
		Units []struct {
			Name          string `yaml:"name"`
			Code          string `yaml:"code"`
			CalCode       string `yaml:"cal_code"`
			ThermostatKey string `yaml:"thermostat_key"`
		} `yaml:"units"`
	}
	if err := entries[0].Config.DecodeArgs(&args); err != nil {
		t.Fatalf("DecodeArgs error: %v", err)
	}
	if len(args.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(args.Units))
	}
	if args.Units[0].CalCode != "airbnb" || args.Units[1].Name != "ADU" {
		t.Errorf("unexpected units: %+v", args.Units)
	}
}
