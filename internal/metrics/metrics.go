// Package metrics holds the process-wide prometheus instruments. Everything
// registers against the default registry and is served from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveSessions counts currently connected canvas sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "canvas_active_sessions",
		Help: "Number of connected canvas sessions.",
	})

	// ActionsProcessed counts actions applied by the coordinator, by kind.
	ActionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_actions_processed_total",
		Help: "Canvas actions applied by the coordinator.",
	}, []string{"kind"})

	// NotificationsDropped counts broadcast notifications evicted from the
	// buffers of lagging subscribers.
	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canvas_notifications_dropped_total",
		Help: "Broadcast notifications dropped because a subscriber lagged.",
	})

	// ConnectionsRejected counts upgrade requests refused before a session
	// was established, by reason.
	ConnectionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_connections_rejected_total",
		Help: "WebSocket upgrade requests rejected before session start.",
	}, []string{"reason"})
)
