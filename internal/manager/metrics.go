package manager

import (
	"github.com/prometheus/client_golang/prometheus"

	"wifihal/internal/hal"
)

var (
	ifaceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifihal",
			Subsystem: "manager",
			Name:      "iface_requests_total",
			Help:      "Interface creation requests by type and result",
		},
		[]string{"type", "result"},
	)

	ifacesDestroyedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifihal",
			Subsystem: "manager",
			Name:      "ifaces_destroyed_total",
			Help:      "Interfaces destroyed by type and reason",
		},
		[]string{"type", "reason"},
	)

	chipModeChangesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wifihal",
			Subsystem: "manager",
			Name:      "chip_mode_changes_total",
			Help:      "Chip reconfigurations issued by the allocator",
		},
	)

	resyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifihal",
			Subsystem: "manager",
			Name:      "resyncs_total",
			Help:      "Forced stop-and-resync cycles by reason",
		},
		[]string{"reason"},
	)

	liveIfaces = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wifihal",
			Subsystem: "manager",
			Name:      "live_ifaces",
			Help:      "Live interfaces by type",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(ifaceRequestsTotal, ifacesDestroyedTotal, chipModeChangesTotal, resyncsTotal, liveIfaces)
}

func (m *Manager) updateLiveGaugeLocked() {
	var c hal.IfaceCounts
	for _, e := range m.reg.ifaces {
		c[e.iface.typ]++
	}
	for _, t := range hal.IfaceTypes {
		liveIfaces.WithLabelValues(t.String()).Set(float64(c[t]))
	}
}
