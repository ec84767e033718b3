package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wsOpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_open_connections",
		Help: "Number of currently open websocket sessions.",
	})

	wsDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_notifications_delivered_total",
		Help: "Total number of notification events pushed to sessions.",
	})

	wsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_notifications_dropped_total",
		Help: "Total number of pushes dropped because a session's outbound buffer was full.",
	})
)
