package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	SlotComputations   prometheus.Counter
	SlotCacheHits      prometheus.Counter
	SlotCacheMisses    prometheus.Counter
	BookingsCommitted  prometheus.Counter
	BookingsRejected   *prometheus.CounterVec
	BookingLatency     prometheus.Histogram
	ScheduleSaves      prometheus.Counter
	NotificationErrors prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SlotComputations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_computations_total",
			Help:      "Total number of slot list computations",
		}),
		SlotCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_cache_hits_total",
			Help:      "Slot computations served from cache",
		}),
		SlotCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_cache_misses_total",
			Help:      "Slot computations that missed the cache",
		}),
		BookingsCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_committed_total",
			Help:      "Total number of committed bookings",
		}),
		BookingsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_rejected_total",
			Help:      "Rejected bookings by reason",
		}, []string{"reason"}),
		BookingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_duration_seconds",
			Help:      "Time spent validating and committing a booking",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		ScheduleSaves: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_saves_total",
			Help:      "Total number of weekly schedule replacements",
		}),
		NotificationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_errors_total",
			Help:      "Booking notifications that failed to send",
		}),
	}
}
