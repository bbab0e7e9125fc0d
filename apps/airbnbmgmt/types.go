package airbnbmgmt

import "time"

// Unit is one manageable physical space.
type Unit struct {
	Name          string `yaml:"name"`
	Code          string `yaml:"code"`
	CalCode       string `yaml:"cal_code"`
	ThermostatKey string `yaml:"thermostat_key"`
}

// calendarEvent holds reservation dates for one Rental Control event slot.
type calendarEvent struct {
	name      string
	startDate time.Time
	endDate   time.Time
}

// rentalEvents names the Rental Control calendar events relevant to a unit.
// Values are calendar event entity names; empty means no applicable event.
type rentalEvents struct {
	checkinToday  string
	checkoutToday string
	checkinActive string
}
