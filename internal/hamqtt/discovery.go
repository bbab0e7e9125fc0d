package hamqtt

import (
	"fmt"
	"time"
)

// UnitInfo identifies one managed unit in discovery payloads.
type UnitInfo struct {
	Name string
	Code string
}

// UnitState is the retained per-unit status document.
type UnitState struct {
	Occupied      bool      `json:"occupied"`
	CheckinToday  bool      `json:"checkin_today"`
	CheckoutToday bool      `json:"checkout_today"`
	CheckedAt     time.Time `json:"checked_at"`
}

// Autoconfig is a Home Assistant MQTT discovery payload.
type Autoconfig struct {
	Name              string           `json:"name"`
	UniqueID          string           `json:"uniq_id"`
	StateTopic        string           `json:"stat_t"`
	AvailabilityTopic string           `json:"avty_t"`
	ValueTemplate     string           `json:"val_tpl"`
	DeviceClass       string           `json:"dev_cla,omitempty"`
	Device            AutoconfigDevice `json:"dev"`
}

// AutoconfigDevice groups the unit's sensors under one device entry.
type AutoconfigDevice struct {
	IDs          string `json:"ids"`
	Name         string `json:"name"`
	Manufacturer string `json:"mf"`
}

// DiscoveryMessage pairs a discovery topic with its payload.
type DiscoveryMessage struct {
	Topic   string
	Payload Autoconfig
}

// StateTopic returns the retained state topic for a unit.
func StateTopic(base, appID, code string) string {
	return fmt.Sprintf("%s/%s/%s/state", base, appID, code)
}

// DiscoveryMessages builds the binary_sensor autoconfig set for one unit:
// occupied, checkin today, and checkout today.
func DiscoveryMessages(prefix, base, appID string, unit UnitInfo) []DiscoveryMessage {
	stateTopic := StateTopic(base, appID, unit.Code)
	availability := base + "/status"
	device := AutoconfigDevice{
		IDs:          fmt.Sprintf("strhost_%s_%s", appID, unit.Code),
		Name:         unit.Name,
		Manufacturer: "strhost",
	}

	sensors := []struct {
		field       string
		label       string
		deviceClass string
	}{
		{"occupied", "Occupied", "occupancy"},
		{"checkin_today", "Checkin Today", ""},
		{"checkout_today", "Checkout Today", ""},
	}

	messages := make([]DiscoveryMessage, 0, len(sensors))
	for _, sensor := range sensors {
		objectID := fmt.Sprintf("strhost_%s_%s", unit.Code, sensor.field)
		messages = append(messages, DiscoveryMessage{
			Topic: fmt.Sprintf("%s/binary_sensor/%s/config", prefix, objectID),
			Payload: Autoconfig{
				Name:              fmt.Sprintf("%s %s", unit.Name, sensor.label),
				UniqueID:          objectID,
				StateTopic:        stateTopic,
				AvailabilityTopic: availability,
				ValueTemplate:     fmt.Sprintf("{{ 'ON' if value_json.%s else 'OFF' }}", sensor.field),
				DeviceClass:       sensor.deviceClass,
				Device:            device,
			},
		})
	}
	return messages
}
