package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackboard_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hackboard_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Realtime metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hackboard_ws_connections_active",
			Help: "Currently open websocket connections",
		},
	)

	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hackboard_ws_rooms_active",
			Help: "Rooms with at least one member",
		},
	)

	EventsBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackboard_ws_events_broadcast_total",
			Help: "Events fanned out to room members",
		},
		[]string{"type"},
	)

	DeliveriesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hackboard_ws_deliveries_dropped_total",
			Help: "Single-peer deliveries dropped because the send buffer was full",
		},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hackboard_users_registered_total",
			Help: "Total users registered",
		},
	)

	TasksMutated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackboard_tasks_mutated_total",
			Help: "Task writes through the REST API",
		},
		[]string{"action"}, // "created", "updated", "deleted", "moved"
	)

	DMsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hackboard_dms_sent_total",
			Help: "Total direct messages sent",
		},
	)
)
