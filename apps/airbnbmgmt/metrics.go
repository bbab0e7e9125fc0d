package airbnbmgmt

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	occupied      *prometheus.GaugeVec
	checkinToday  *prometheus.GaugeVec
	checkoutToday *prometheus.GaugeVec
	actions       *prometheus.CounterVec
	checkErrors   prometheus.Counter
	lastSuccess   prometheus.Gauge
	checkSuccess  prometheus.Gauge
}

func newMetrics() *metrics {
	labels := []string{"unit_code", "unit_name"}
	return &metrics{
		occupied: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "strhost_airbnb_unit_occupied_bool",
			Help: "Active reservation per unit (1=occupied, 0=vacant)",
		}, labels),
		checkinToday: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "strhost_airbnb_unit_checkin_today_bool",
			Help: "Checkin scheduled today per unit",
		}, labels),
		checkoutToday: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "strhost_airbnb_unit_checkout_today_bool",
			Help: "Checkout scheduled today per unit",
		}, labels),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strhost_airbnb_actions_total",
			Help: "Management actions taken per unit",
		}, []string{"unit_code", "action"}),
		checkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strhost_airbnb_check_errors_total",
			Help: "Unit checks that failed",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "strhost_airbnb_last_success_timestamp_seconds",
			Help: "Last fully successful check pass (epoch seconds)",
		}),
		checkSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "strhost_airbnb_check_success",
			Help: "Last check pass success (1=ok, 0=error)",
		}),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.occupied,
		m.checkinToday,
		m.checkoutToday,
		m.actions,
		m.checkErrors,
		m.lastSuccess,
		m.checkSuccess,
	}
}

func (m *metrics) setUnitState(unit Unit, events rentalEvents) {
	labels := prometheus.Labels{"unit_code": unit.Code, "unit_name": unit.Name}
	m.occupied.With(labels).Set(boolToFloat(events.checkinActive != ""))
	m.checkinToday.With(labels).Set(boolToFloat(events.checkinToday != ""))
	m.checkoutToday.With(labels).Set(boolToFloat(events.checkoutToday != ""))
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
