// Package metrics holds the prometheus instruments of the engagement core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engage_open_connections",
		Help: "Currently open websocket connections.",
	})

	EventsIn = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engage_events_in_total",
		Help: "Inbound client events by type.",
	}, []string{"type"})

	DroppedSends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engage_dropped_sends_total",
		Help: "Outbound frames dropped because a member's buffer was full.",
	})

	Broadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engage_broadcasts_total",
		Help: "Room broadcast fan-outs performed.",
	})
)
