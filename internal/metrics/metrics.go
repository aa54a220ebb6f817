package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_scans_accepted_total",
		Help: "Scans that passed deduplication and produced a transition.",
	})

	ScansSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_scans_suppressed_total",
		Help: "Scans suppressed by the per-device cooldown window.",
	})

	ScanErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_scan_errors_total",
		Help: "Scans rejected by the engine, by error kind.",
	}, []string{"kind"})

	HeartbeatsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_heartbeats_total",
		Help: "Heartbeat messages accepted from devices.",
	})

	DevicesOffline = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_devices_offline_total",
		Help: "Devices marked offline by the staleness sweep.",
	})
)
