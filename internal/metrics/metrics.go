package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "api_requests_total",
			Help:      "Count of remote API requests by endpoint and HTTP status.",
		},
		[]string{"endpoint", "status"},
	)

	apiCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "api_cache_hits_total",
			Help:      "Count of remote API reads served from cache.",
		},
		[]string{"endpoint"},
	)

	bookingsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "bookings_submitted_total",
			Help:      "Count of booking submissions by result.",
		},
		[]string{"result"},
	)

	selectionRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "selection_rejected_total",
			Help:      "Count of rejected calendar taps by reason.",
		},
		[]string{"reason"},
	)

	venueActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "venue_actions_total",
			Help:      "Count of venue manager actions by action and result.",
		},
		[]string{"action", "result"},
	)

	remindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "holidaze",
			Name:      "reminders_sent_total",
			Help:      "Count of check-in reminders by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(apiRequests, apiCacheHits, bookingsSubmitted, selectionRejected, venueActions, remindersSent)
	})
}

// ObserveAPIRequest counts a request; status 0 means a transport failure.
func ObserveAPIRequest(endpoint string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	apiRequests.WithLabelValues(endpoint, label).Inc()
}

func IncCacheHit(endpoint string) {
	apiCacheHits.WithLabelValues(endpoint).Inc()
}

func IncBookingSubmitted(result string) {
	bookingsSubmitted.WithLabelValues(result).Inc()
}

func IncSelectionRejected(reason string) {
	selectionRejected.WithLabelValues(reason).Inc()
}

func IncVenueAction(action, result string) {
	venueActions.WithLabelValues(action, result).Inc()
}

func IncReminder(result string) {
	remindersSent.WithLabelValues(result).Inc()
}
