package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications persisted, by type",
		},
		[]string{"type"},
	)

	PushDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_deliveries_total",
			Help: "Push delivery attempts, by result",
		},
		[]string{"result"},
	)

	SSEDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_deliveries_total",
			Help: "Event-stream delivery attempts, by result",
		},
		[]string{"result"},
	)

	CallResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_responses_total",
			Help: "Call-style notification responses, by action",
		},
		[]string{"action"},
	)

	NotificationsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_expired_total",
			Help: "Notifications reclassified to EXPIRED by the sweep",
		},
	)
)
