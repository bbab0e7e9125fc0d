package rate

import "github.com/prometheus/client_golang/prometheus"

var (
	lastStatusGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "strhost_rate_last_status",
		Help: "Last HTTP status observed per provider",
	}, []string{"provider"})
	cooldownGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "strhost_rate_cooldown_until_timestamp_seconds",
		Help: "Cooldown expiry per provider (epoch seconds)",
	}, []string{"provider"})
	blockedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "strhost_rate_blocked_total",
		Help: "Calls blocked by the rate guard per provider",
	}, []string{"provider"})
)

// Collectors returns the guard metrics for registry registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{lastStatusGauge, cooldownGauge, blockedCounter}
}
