package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	UpdatesApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_updates_applied_total",
			Help: "number of lifecycle updates applied",
		},
		[]string{"resource_type"},
	)

	FieldsChanged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_fields_changed_total",
			Help: "number of fields changed by lifecycle updates",
		},
		[]string{"resource_type"},
	)

	AuditAppendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "admin_audit_append_failures_total",
			Help: "number of failed audit appends",
		},
	)

	NotificationsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "admin_notifications_sent_total",
			Help: "number of push notifications handed to the pusher",
		},
	)

	NotificationsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "admin_notifications_skipped_total",
			Help: "number of notifications skipped (no token on file)",
		},
	)

	NotificationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "admin_notifications_failed_total",
			Help: "number of notifications the pusher failed to deliver",
		},
	)

	BulkItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_bulk_items_total",
			Help: "number of bulk items processed by outcome",
		},
		[]string{"outcome"},
	)
)

func Init() {
	prometheus.MustRegister(
		UpdatesApplied,
		FieldsChanged,
		AuditAppendFailures,
		NotificationsSent,
		NotificationsSkipped,
		NotificationsFailed,
		BulkItems,
	)
}
