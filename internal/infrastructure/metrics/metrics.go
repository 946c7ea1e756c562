package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counter labels.
const (
	RequestsTotal      = "app_requests_total"
	RecordCreated      = "record_created_total"
	RecordUpdated      = "record_updated_total"
	RecordSoftDeleted  = "record_soft_deleted_total"
	RecordRestored     = "record_restored_total"
	RecordHardDeleted  = "record_hard_deleted_total"
	RecordRejected     = "record_rejected_total"
	NotificationSent   = "notification_sent_total"
	NotificationFailed = "notification_failed_total"
	EventDropped       = "event_dropped_total"
	RateLimited        = "rate_limited_total"
	LoginSucceeded     = "login_succeeded_total"
	LoginFailed        = "login_failed_total"
)

func NewCounter() *prometheus.CounterVec {
	return NewCounterWith(prometheus.DefaultRegisterer)
}

// NewCounterWith registers the counter on reg, tests pass a fresh registry.
func NewCounterWith(reg prometheus.Registerer) *prometheus.CounterVec {
	return promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usercrud",
			Name:      "general_counters",
			Help:      "Domain and request counters partitioned by result.",
		},
		[]string{"result"})
}
